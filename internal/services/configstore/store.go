package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/spiderleague/internal/model"
	"github.com/mcoot/spiderleague/internal/storage"
)

// ConfiguredFunc runs after a Set that leaves both fields non-empty
type ConfiguredFunc func(ctx context.Context, cfg model.RemoteConfig)

// Store persists the remote document id and access token locally
type Store struct {
	storage storage.Storage
	logger  *slog.Logger

	mu           sync.RWMutex
	onConfigured []ConfiguredFunc
}

// New creates a new Store
func New(storage storage.Storage, logger *slog.Logger) *Store {
	return &Store{
		storage: storage,
		logger:  logger.With(slog.String("component", "config-store")),
	}
}

// OnConfigured registers fn to run after every Set that completes the configuration
func (s *Store) OnConfigured(fn ConfiguredFunc) {
	s.mu.Lock()
	s.onConfigured = append(s.onConfigured, fn)
	s.mu.Unlock()
}

// Get returns the stored configuration. Missing or unreadable entries read
// as the empty configuration.
func (s *Store) Get(ctx context.Context) model.RemoteConfig {
	data, err := s.storage.Get(ctx, storage.ConfigKey)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			s.logger.Warn("could not read config", slog.Any("error", err))
		}
		return model.RemoteConfig{}
	}

	var cfg model.RemoteConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		s.logger.Warn("stored config is not valid json", slog.Any("error", err))
		return model.RemoteConfig{}
	}
	return cfg
}

// Set trims and stores cfg. The token format is not checked. When both
// fields are non-empty the OnConfigured callbacks run before Set returns.
func (s *Store) Set(ctx context.Context, cfg model.RemoteConfig) error {
	cfg = cfg.Trimmed()

	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, storage.ConfigKey, data); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	s.logger.Info("config saved",
		slog.String("gist_id", cfg.GistID),
		slog.Bool("configured", cfg.IsConfigured()))

	if !cfg.IsConfigured() {
		return nil
	}

	s.mu.RLock()
	callbacks := append([]ConfiguredFunc(nil), s.onConfigured...)
	s.mu.RUnlock()

	for _, fn := range callbacks {
		fn(ctx, cfg)
	}
	return nil
}

// Clear removes the stored configuration
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, storage.ConfigKey); err != nil {
		return fmt.Errorf("failed to clear config: %w", err)
	}
	return nil
}
