// Package remote synchronizes the state cache with the shared document
// stored in a gist.
//
// There is no versioning: Load replaces the whole cache with whatever the
// gist holds and Save overwrites the whole file with the cache. Two clients
// that save in turn lose each other's concurrent changes.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/spiderleague/internal/gist"
	"github.com/mcoot/spiderleague/internal/hooks"
	"github.com/mcoot/spiderleague/internal/model"
	"github.com/mcoot/spiderleague/internal/state"
)

// API is the part of the gist client the state client needs
type API interface {
	Get(ctx context.Context, token, gistID string) (*gist.Gist, error)
	UpdateFile(ctx context.Context, token, gistID, filename, content string) error
	FileContent(ctx context.Context, token string, f gist.File) (string, error)
}

// ConfigSource supplies the current credentials
type ConfigSource interface {
	Get(ctx context.Context) model.RemoteConfig
}

// Config holds configuration for the state client
type Config struct {
	FileName string
}

// DefaultConfig returns default state client configuration
func DefaultConfig() Config {
	return Config{
		FileName: model.DocumentFileName,
	}
}

// StateClient loads and saves the shared document
type StateClient struct {
	api      API
	config   ConfigSource
	cache    *state.Cache
	hooks    *hooks.Registry
	fileName string
	logger   *slog.Logger
}

// New creates a new StateClient
func New(api API, config ConfigSource, cache *state.Cache, hooks *hooks.Registry, cfg Config, logger *slog.Logger) *StateClient {
	if cfg.FileName == "" {
		cfg.FileName = DefaultConfig().FileName
	}
	return &StateClient{
		api:      api,
		config:   config,
		cache:    cache,
		hooks:    hooks,
		fileName: cfg.FileName,
		logger:   logger.With(slog.String("component", "remote-state")),
	}
}

// Fetch reads and parses the shared document without touching the cache
func (c *StateClient) Fetch(ctx context.Context) (model.SharedDocument, error) {
	cfg := c.config.Get(ctx)
	if !cfg.IsConfigured() {
		return model.SharedDocument{}, model.ErrConfigurationMissing
	}

	g, err := c.api.Get(ctx, cfg.Token, cfg.GistID)
	if err != nil {
		return model.SharedDocument{}, fmt.Errorf("failed to fetch gist: %w", err)
	}

	f, ok := g.Files[c.fileName]
	if !ok {
		return model.SharedDocument{}, fmt.Errorf("%w: gist has no file %s", model.ErrMalformedDocument, c.fileName)
	}

	content, err := c.api.FileContent(ctx, cfg.Token, f)
	if err != nil {
		return model.SharedDocument{}, fmt.Errorf("failed to fetch %s: %w", c.fileName, err)
	}

	return model.ParseDocument([]byte(content))
}

// Load replaces the cache with the remote document and fires the refresh
// hooks. It reports whether the cache was replaced; failures are logged and
// leave the cache as it was.
func (c *StateClient) Load(ctx context.Context) bool {
	doc, err := c.Fetch(ctx)
	if err != nil {
		if errors.Is(err, model.ErrConfigurationMissing) {
			c.logger.Info("skipping load", slog.Any("error", err))
		} else {
			c.logger.Error("load failed", slog.Any("error", err))
		}
		return false
	}

	c.cache.Replace(doc)
	c.logger.Debug("document loaded",
		slog.Int("users", len(doc.Users)),
		slog.Int("spiders", len(doc.Spiders)),
		slog.Int("trade_requests", len(doc.TradeRequests)))

	c.hooks.Fire(hooks.SpiderList, hooks.BattleList, hooks.AdminPanel, hooks.CoinDisplay)
	return true
}

// Save overwrites the remote document with the whole cache. There is no
// retry and the cache is not rolled back on failure.
func (c *StateClient) Save(ctx context.Context) error {
	cfg := c.config.Get(ctx)
	if !cfg.IsConfigured() {
		return model.ErrConfigurationMissing
	}

	data, err := c.cache.Snapshot().Encode()
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if err := c.api.UpdateFile(ctx, cfg.Token, cfg.GistID, c.fileName, string(data)); err != nil {
		c.logger.Error("save failed", slog.Any("error", err))
		return fmt.Errorf("failed to save document: %w", err)
	}

	c.logger.Debug("document saved", slog.Int("bytes", len(data)))
	return nil
}
