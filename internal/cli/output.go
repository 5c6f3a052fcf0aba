package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/spiderleague/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

func newOutput(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		code, _ := errorCode(err)
		data, _ := json.Marshal(ErrorResponse{Error: CLIError{Code: code, Message: err.Error()}})
		_, _ = fmt.Fprintln(o.errOut, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.out, string(data))
	} else {
		_, _ = fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case ConfigView:
		o.printConfig(v)
	case AccountView:
		o.printAccount(v)
	case SessionView:
		o.printSession(v)
	case CoinsView:
		o.printCoins(v)
	case DocumentSummary:
		o.printSummary(v)
	case model.GameBalance:
		o.printBalance(v)
	case []SpiderView:
		o.printSpiders(v)
	case []model.TradeRequest:
		o.printTrades(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// ConfigView is the stored gist configuration with the token masked
type ConfigView struct {
	GistID     string `json:"gist_id"`
	Token      string `json:"token"`
	Configured bool   `json:"configured"`
}

// AccountView is an account without its password
type AccountView struct {
	Username  string     `json:"username"`
	Coins     int        `json:"coins"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// SessionView describes the current login
type SessionView struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username,omitempty"`
	Admin    bool   `json:"admin"`
	Coins    int    `json:"coins"`
}

// CoinsView is a coin balance
type CoinsView struct {
	Username string `json:"username"`
	Coins    int    `json:"coins"`
}

// DocumentSummary counts what a loaded document holds
type DocumentSummary struct {
	Loaded        bool              `json:"loaded"`
	Users         int               `json:"users"`
	Spiders       int               `json:"spiders"`
	TradeRequests int               `json:"trade_requests"`
	GameBalance   model.GameBalance `json:"game_balance"`
}

// SpiderView is the part of a spider the CLI lists
type SpiderView struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Name  string `json:"name,omitempty"`
}

func newAccountView(acc *model.Account) AccountView {
	v := AccountView{Username: acc.Username, Coins: acc.Coins}
	if !acc.CreatedAt.IsZero() {
		created := acc.CreatedAt
		v.CreatedAt = &created
	}
	return v
}

func summarize(doc model.SharedDocument, loaded bool) DocumentSummary {
	return DocumentSummary{
		Loaded:        loaded,
		Users:         len(doc.Users),
		Spiders:       len(doc.Spiders),
		TradeRequests: len(doc.TradeRequests),
		GameBalance:   doc.GameBalance,
	}
}

func (o *Output) printConfig(c ConfigView) {
	if !c.Configured {
		_, _ = fmt.Fprintln(o.out, "Not configured")
	}
	_, _ = fmt.Fprintf(o.out, "Gist: %s\n", c.GistID)
	_, _ = fmt.Fprintf(o.out, "Token: %s\n", c.Token)
}

func (o *Output) printAccount(a AccountView) {
	_, _ = fmt.Fprintf(o.out, "Account: %s\n", a.Username)
	_, _ = fmt.Fprintf(o.out, "Coins: %d\n", a.Coins)
	if a.CreatedAt != nil {
		_, _ = fmt.Fprintf(o.out, "Created: %s\n", a.CreatedAt.Format(time.RFC3339))
	}
}

func (o *Output) printSession(s SessionView) {
	if !s.LoggedIn {
		_, _ = fmt.Fprintln(o.out, "Not logged in")
		return
	}
	role := ""
	if s.Admin {
		role = " [admin]"
	}
	_, _ = fmt.Fprintf(o.out, "Logged in as %s%s\n", s.Username, role)
	_, _ = fmt.Fprintf(o.out, "Coins: %d\n", s.Coins)
}

func (o *Output) printCoins(c CoinsView) {
	_, _ = fmt.Fprintf(o.out, "%s has %d coins\n", c.Username, c.Coins)
}

func (o *Output) printSummary(d DocumentSummary) {
	if !d.Loaded {
		_, _ = fmt.Fprintln(o.out, "Document not loaded")
		return
	}
	_, _ = fmt.Fprintf(o.out, "Users: %d\n", d.Users)
	_, _ = fmt.Fprintf(o.out, "Spiders: %d\n", d.Spiders)
	_, _ = fmt.Fprintf(o.out, "Trade requests: %d\n", d.TradeRequests)
}

func (o *Output) printBalance(b model.GameBalance) {
	_, _ = fmt.Fprintf(o.out, "Battle win: %d coins, %d XP\n", b.BattleWinCoins, b.BattleWinXP)
	_, _ = fmt.Fprintf(o.out, "Spider submission: %d coins\n", b.SpiderSubmitCoins)
	_, _ = fmt.Fprintf(o.out, "XP per level: %d\n", b.XPPerLevel)
}

func (o *Output) printSpiders(spiders []SpiderView) {
	if len(spiders) == 0 {
		_, _ = fmt.Fprintln(o.out, "No spiders")
		return
	}
	for _, s := range spiders {
		name := s.Name
		if name == "" {
			name = "(unnamed)"
		}
		_, _ = fmt.Fprintf(o.out, "  - %s %s owned by %s\n", s.ID, name, s.Owner)
	}
}

func (o *Output) printTrades(trades []model.TradeRequest) {
	if len(trades) == 0 {
		_, _ = fmt.Fprintln(o.out, "No trade requests")
		return
	}
	for _, t := range trades {
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		_, _ = fmt.Fprint(o.out, "  -")
		for _, k := range keys {
			_, _ = fmt.Fprintf(o.out, " %s=%v", k, t[k])
		}
		_, _ = fmt.Fprintln(o.out)
	}
}
