package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/spiderleague/internal/dependencies/clock"
	"github.com/mcoot/spiderleague/internal/gist"
	"github.com/mcoot/spiderleague/internal/hooks"
	"github.com/mcoot/spiderleague/internal/middleware"
	"github.com/mcoot/spiderleague/internal/model"
	"github.com/mcoot/spiderleague/internal/services/auth"
	"github.com/mcoot/spiderleague/internal/services/configstore"
	"github.com/mcoot/spiderleague/internal/services/economy"
	"github.com/mcoot/spiderleague/internal/services/remote"
	"github.com/mcoot/spiderleague/internal/services/session"
	"github.com/mcoot/spiderleague/internal/state"
	"github.com/mcoot/spiderleague/internal/storage"
	"github.com/mcoot/spiderleague/internal/storage/file"
	"github.com/mcoot/spiderleague/internal/storage/memory"
	redisstorage "github.com/mcoot/spiderleague/internal/storage/redis"
	"github.com/mcoot/spiderleague/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeSQLite = "sqlite"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Local storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Core
	Hooks       *hooks.Registry
	Cache       *state.Cache
	ConfigStore *configstore.Store
	Session     *session.Manager
	Remote      *remote.StateClient

	// Services
	Auth    *auth.Service
	Economy *economy.Service
}

// Config holds configuration for the application factory
type Config struct {
	// StorageType selects the local storage backend ("memory", "file",
	// "sqlite" or "redis"). If empty, defaults to "memory"
	StorageType string
	// StorePath is the file for the "file" and "sqlite" backends.
	// If empty, the file backend uses file.DefaultPath()
	StorePath string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// APIBaseURL is the Gist API root. If empty, gist.DefaultBaseURL
	APIBaseURL string
	// HTTPTimeout bounds each Gist API request. If zero, gist.DefaultTimeout
	HTTPTimeout time.Duration
	// FileName is the gist file holding the document (optional)
	FileName string
	// Verifier encodes and checks passwords. If nil, auth.PlaintextVerifier
	Verifier auth.CredentialVerifier
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = gist.DefaultTimeout
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: middleware.Logging(logger, http.DefaultTransport),
	}
	api := gist.NewClient(cfg.APIBaseURL, httpClient)

	return newWithDependencies(store, clock.New(), api, cfg, logger), nil
}

func openStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeFile:
		path := cfg.StorePath
		if path == "" {
			path = file.DefaultPath()
		}
		return file.New(path), nil
	case StorageTypeSQLite:
		if cfg.StorePath == "" {
			return nil, errors.New("StorePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.Open(context.Background(), cfg.StorePath)
		if err != nil {
			return nil, err
		}
		return sqliteStore, nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return redisStore, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'file', 'sqlite' or 'redis'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, api remote.API, cfg Config, logger *slog.Logger) *App {
	registry := hooks.New(logger)
	cache := state.New()
	configStore := configstore.New(store, logger)
	sessions := session.New(store, registry, logger)
	remoteClient := remote.New(api, configStore, cache, registry, remote.Config{FileName: cfg.FileName}, logger)
	authService := auth.New(cache, remoteClient, sessions, registry, clk, cfg.Verifier, logger)
	economyService := economy.New(cache, sessions, registry, logger)

	// Completing the configuration loads the document straight away
	configStore.OnConfigured(func(ctx context.Context, _ model.RemoteConfig) {
		remoteClient.Load(ctx)
	})

	return &App{
		Storage:     store,
		Clock:       clk,
		Hooks:       registry,
		Cache:       cache,
		ConfigStore: configStore,
		Session:     sessions,
		Remote:      remoteClient,
		Auth:        authService,
		Economy:     economyService,
	}
}

// Init restores the persisted session, as a client does at start-up
func (a *App) Init(ctx context.Context) error {
	return a.Session.Restore(ctx)
}

// Close releases the local storage
func (a *App) Close() error {
	return a.Storage.Close()
}
