// Package state holds the in-memory mirror of the shared document.
//
// The cache is filled only by a remote load and published only by a remote
// save; it has no persistence of its own. Mutators change the mirror and
// leave it to their caller to decide when to save.
package state

import (
	"sync"

	"github.com/mcoot/spiderleague/internal/model"
)

// Cache is the in-memory SharedDocument
type Cache struct {
	mu  sync.RWMutex
	doc model.SharedDocument
}

// New creates an empty cache with the default game balance
func New() *Cache {
	return &Cache{doc: model.NewSharedDocument()}
}

// Replace swaps in a whole document, as a load does
func (c *Cache) Replace(doc model.SharedDocument) {
	doc = doc.Clone()
	c.mu.Lock()
	c.doc = doc
	c.mu.Unlock()
}

// Snapshot returns a deep copy of the whole document, as a save needs
func (c *Cache) Snapshot() model.SharedDocument {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doc.Clone()
}

// Account returns a copy of the account with exactly this username
func (c *Cache) Account(username string) (model.Account, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(username); i >= 0 {
		return c.doc.Users[i].Clone(), true
	}
	return model.Account{}, false
}

// HasAccount reports whether the username is taken in the mirror
func (c *Cache) HasAccount(username string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexOf(username) >= 0
}

// AddAccount appends an account. Uniqueness is the caller's concern.
func (c *Cache) AddAccount(acc model.Account) {
	acc = acc.Clone()
	c.mu.Lock()
	c.doc.Users = append(c.doc.Users, acc)
	c.mu.Unlock()
}

// UpdateAccount applies fn to the stored account and reports whether it exists
func (c *Cache) UpdateAccount(username string, fn func(*model.Account)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(username)
	if i < 0 {
		return false
	}
	fn(&c.doc.Users[i])
	return true
}

// Accounts returns a copy of every account
func (c *Cache) Accounts() []model.Account {
	return c.Snapshot().Users
}

// Spiders returns a copy of the spider sequence
func (c *Cache) Spiders() []model.Spider {
	return c.Snapshot().Spiders
}

// SetSpiders replaces the spider sequence
func (c *Cache) SetSpiders(spiders []model.Spider) {
	doc := model.SharedDocument{Spiders: spiders}.Clone()
	c.mu.Lock()
	c.doc.Spiders = doc.Spiders
	c.mu.Unlock()
}

// TradeRequests returns a copy of the trade request sequence
func (c *Cache) TradeRequests() []model.TradeRequest {
	return c.Snapshot().TradeRequests
}

// SetTradeRequests replaces the trade request sequence
func (c *Cache) SetTradeRequests(requests []model.TradeRequest) {
	doc := model.SharedDocument{TradeRequests: requests}.Clone()
	c.mu.Lock()
	c.doc.TradeRequests = doc.TradeRequests
	c.mu.Unlock()
}

// GameBalance returns the current reward constants
func (c *Cache) GameBalance() model.GameBalance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doc.GameBalance
}

// SetGameBalance replaces the reward constants
func (c *Cache) SetGameBalance(gb model.GameBalance) {
	c.mu.Lock()
	c.doc.GameBalance = gb
	c.mu.Unlock()
}

// indexOf finds a username; callers hold c.mu
func (c *Cache) indexOf(username string) int {
	for i := range c.doc.Users {
		if c.doc.Users[i].Username == username {
			return i
		}
	}
	return -1
}
