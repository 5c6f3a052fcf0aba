// Package session tracks which account, if any, this client is logged in as.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/spiderleague/internal/hooks"
	"github.com/mcoot/spiderleague/internal/model"
	"github.com/mcoot/spiderleague/internal/storage"
)

// Manager holds the current username and persists it locally so the
// session survives a restart. It never reads or writes the state cache.
type Manager struct {
	storage storage.Storage
	hooks   *hooks.Registry
	logger  *slog.Logger

	mu       sync.RWMutex
	username string
}

// New creates a new Manager with no session
func New(storage storage.Storage, hooks *hooks.Registry, logger *slog.Logger) *Manager {
	return &Manager{
		storage: storage,
		hooks:   hooks,
		logger:  logger.With(slog.String("component", "session")),
	}
}

// Restore reads the persisted username. A missing entry means no session.
func (m *Manager) Restore(ctx context.Context) error {
	data, err := m.storage.Get(ctx, storage.SessionKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		m.swap("")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	m.swap(string(data))
	if len(data) > 0 {
		m.logger.Debug("session restored", slog.String("username", string(data)))
	}
	return nil
}

// Login records username as the current session
func (m *Manager) Login(ctx context.Context, username string) error {
	if err := m.storage.Set(ctx, storage.SessionKey, []byte(username)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	m.swap(username)
	m.logger.Info("logged in", slog.String("username", username))

	m.hooks.Fire(hooks.SessionPanel, hooks.CoinDisplay)
	return nil
}

// Logout clears the current session
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.storage.Delete(ctx, storage.SessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	previous := m.swap("")
	if previous != "" {
		m.logger.Info("logged out", slog.String("username", previous))
	}

	m.hooks.Fire(hooks.SessionPanel, hooks.SpiderList)
	return nil
}

// CurrentUsername returns the logged-in username, if any
func (m *Manager) CurrentUsername() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.username, m.username != ""
}

// IsAdmin reports whether the admin account is logged in
func (m *Manager) IsAdmin() bool {
	username, ok := m.CurrentUsername()
	return ok && username == model.AdminUsername
}

// swap replaces the current username and returns the previous one
func (m *Manager) swap(username string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	previous := m.username
	m.username = username
	return previous
}
