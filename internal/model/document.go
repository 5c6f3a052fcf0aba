package model

import (
	"encoding/json"
	"fmt"
)

// DocumentFileName is the gist file that holds the shared document
const DocumentFileName = "spider-league.json"

// Spider is an owned collectible. Its attributes belong to the combat and
// admin tools, so it is carried as an opaque JSON object.
type Spider map[string]any

// ID returns the spider's "id" field, or "" if absent
func (s Spider) ID() string {
	return stringField(s, "id")
}

// Owner returns the spider's "owner" field, or "" if absent
func (s Spider) Owner() string {
	return stringField(s, "owner")
}

// TradeRequest is an offer between two accounts, carried without interpretation
type TradeRequest map[string]any

// GameBalance holds the reward constants read by combat and shop logic
type GameBalance struct {
	BattleWinCoins    int `json:"battleWinCoins"`
	BattleWinXP       int `json:"battleWinXP"`
	SpiderSubmitCoins int `json:"spiderSubmitCoins"`
	XPPerLevel        int `json:"xpPerLevel"`
}

// DefaultGameBalance returns the constants used until a document is loaded
func DefaultGameBalance() GameBalance {
	return GameBalance{
		BattleWinCoins:    25,
		BattleWinXP:       50,
		SpiderSubmitCoins: 50,
		XPPerLevel:        100,
	}
}

// SharedDocument is the entire persisted state. It is always read and
// written as one unit.
type SharedDocument struct {
	Spiders       []Spider       `json:"spiders"`
	Users         []Account      `json:"users"`
	TradeRequests []TradeRequest `json:"tradeRequests"`
	GameBalance   GameBalance    `json:"gameBalance"`
}

// NewSharedDocument returns an empty document with default balance
func NewSharedDocument() SharedDocument {
	return SharedDocument{
		Spiders:       []Spider{},
		Users:         []Account{},
		TradeRequests: []TradeRequest{},
		GameBalance:   DefaultGameBalance(),
	}
}

// documentWire is the decode shape; pointers distinguish missing from zero
type documentWire struct {
	Spiders       []Spider         `json:"spiders"`
	Users         []Account        `json:"users"`
	TradeRequests []TradeRequest   `json:"tradeRequests"`
	GameBalance   *gameBalanceWire `json:"gameBalance"`
}

type gameBalanceWire struct {
	BattleWinCoins    *int `json:"battleWinCoins"`
	BattleWinXP       *int `json:"battleWinXP"`
	SpiderSubmitCoins *int `json:"spiderSubmitCoins"`
	XPPerLevel        *int `json:"xpPerLevel"`
}

// ParseDocument decodes a shared document. Each top-level field that is
// missing or null takes its default, as does each missing balance constant.
// Content that is not a JSON object of the expected shape is reported as
// ErrMalformedDocument, including a bare null.
func ParseDocument(data []byte) (SharedDocument, error) {
	var wire *documentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return SharedDocument{}, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if wire == nil {
		return SharedDocument{}, fmt.Errorf("%w: document is null", ErrMalformedDocument)
	}

	doc := NewSharedDocument()
	if wire.Spiders != nil {
		doc.Spiders = wire.Spiders
	}
	if wire.Users != nil {
		doc.Users = wire.Users
	}
	if wire.TradeRequests != nil {
		doc.TradeRequests = wire.TradeRequests
	}
	if gb := wire.GameBalance; gb != nil {
		if gb.BattleWinCoins != nil {
			doc.GameBalance.BattleWinCoins = *gb.BattleWinCoins
		}
		if gb.BattleWinXP != nil {
			doc.GameBalance.BattleWinXP = *gb.BattleWinXP
		}
		if gb.SpiderSubmitCoins != nil {
			doc.GameBalance.SpiderSubmitCoins = *gb.SpiderSubmitCoins
		}
		if gb.XPPerLevel != nil {
			doc.GameBalance.XPPerLevel = *gb.XPPerLevel
		}
	}
	return doc, nil
}

// Encode serializes the document with two-space indentation. Nil sequences
// are written as empty arrays.
func (d SharedDocument) Encode() ([]byte, error) {
	out := d
	if out.Spiders == nil {
		out.Spiders = []Spider{}
	}
	if out.Users == nil {
		out.Users = []Account{}
	}
	if out.TradeRequests == nil {
		out.TradeRequests = []TradeRequest{}
	}
	return json.MarshalIndent(out, "", "  ")
}

// Clone returns a deep copy of the document
func (d SharedDocument) Clone() SharedDocument {
	c := SharedDocument{
		Spiders:       make([]Spider, len(d.Spiders)),
		Users:         make([]Account, len(d.Users)),
		TradeRequests: make([]TradeRequest, len(d.TradeRequests)),
		GameBalance:   d.GameBalance,
	}
	for i, s := range d.Spiders {
		c.Spiders[i] = cloneObject(s)
	}
	for i, u := range d.Users {
		c.Users[i] = u.Clone()
	}
	for i, t := range d.TradeRequests {
		c.TradeRequests[i] = cloneObject(t)
	}
	return c
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}

func cloneObject[M ~map[string]any](m M) M {
	if m == nil {
		return nil
	}
	c := make(M, len(m))
	for k, v := range m {
		c[k] = cloneValue(v)
	}
	return c
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneObject(val)
	case []any:
		c := make([]any, len(val))
		for i, item := range val {
			c[i] = cloneValue(item)
		}
		return c
	default:
		return val
	}
}
