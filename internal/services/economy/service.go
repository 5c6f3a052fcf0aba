// Package economy reads and changes the coin balance of the logged-in account.
//
// Changes apply to the state cache only; callers save the document when they
// want the change published.
package economy

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/spiderleague/internal/hooks"
	"github.com/mcoot/spiderleague/internal/model"
	"github.com/mcoot/spiderleague/internal/state"
)

// CurrentUser reports the logged-in username
type CurrentUser interface {
	CurrentUsername() (string, bool)
}

// Service handles coin balances
type Service struct {
	cache   *state.Cache
	session CurrentUser
	hooks   *hooks.Registry
	logger  *slog.Logger
}

// New creates a new economy Service
func New(cache *state.Cache, session CurrentUser, hooks *hooks.Registry, logger *slog.Logger) *Service {
	return &Service{
		cache:   cache,
		session: session,
		hooks:   hooks,
		logger:  logger.With(slog.String("component", "economy")),
	}
}

// Coins returns the balance of the logged-in account, or 0 without one
func (s *Service) Coins() int {
	username, ok := s.session.CurrentUsername()
	if !ok {
		return 0
	}
	acc, ok := s.cache.Account(username)
	if !ok {
		return 0
	}
	return acc.Coins
}

// SetCoins sets the balance of the logged-in account. Without a session or
// a matching account it does nothing.
func (s *Service) SetCoins(amount int) error {
	if amount < 0 {
		return model.NewValidationError("coins", "must not be negative")
	}
	username, ok := s.session.CurrentUsername()
	if !ok {
		return nil
	}

	if !s.cache.UpdateAccount(username, func(a *model.Account) { a.Coins = amount }) {
		s.logger.Debug("no account for session", slog.String("username", username))
		return nil
	}

	s.hooks.Fire(hooks.CoinDisplay)
	return nil
}

// AddCoins credits delta coins, such as a battle reward
func (s *Service) AddCoins(delta int) (int, error) {
	if delta < 0 {
		return 0, model.NewValidationError("amount", "must not be negative")
	}
	return s.adjust(delta)
}

// SpendCoins debits cost coins, failing without change if the balance is
// too low
func (s *Service) SpendCoins(cost int) (int, error) {
	if cost < 0 {
		return 0, model.NewValidationError("cost", "must not be negative")
	}
	return s.adjust(-cost)
}

// Balance returns the game balance constants of the loaded document
func (s *Service) Balance() model.GameBalance {
	return s.cache.GameBalance()
}

// LevelForXP returns the level reached with xp experience points
func (s *Service) LevelForXP(xp int) int {
	perLevel := s.cache.GameBalance().XPPerLevel
	if perLevel <= 0 {
		perLevel = model.DefaultGameBalance().XPPerLevel
	}
	if xp < 0 {
		xp = 0
	}
	return xp/perLevel + 1
}

func (s *Service) adjust(delta int) (int, error) {
	username, ok := s.session.CurrentUsername()
	if !ok {
		return 0, model.ErrNotLoggedIn
	}

	var (
		balance int
		shortBy int
	)
	found := s.cache.UpdateAccount(username, func(a *model.Account) {
		if a.Coins+delta < 0 {
			shortBy = -(a.Coins + delta)
			balance = a.Coins
			return
		}
		a.Coins += delta
		balance = a.Coins
	})
	if !found {
		return 0, fmt.Errorf("%w: %s", model.ErrAccountNotFound, username)
	}
	if shortBy > 0 {
		return balance, fmt.Errorf("%w: need %d more", model.ErrInsufficientCoins, shortBy)
	}

	s.logger.Debug("coins changed",
		slog.String("username", username),
		slog.Int("delta", delta),
		slog.Int("balance", balance))
	s.hooks.Fire(hooks.CoinDisplay)
	return balance, nil
}
