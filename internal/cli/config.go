package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/spiderleague/internal/factory"
	"github.com/mcoot/spiderleague/internal/gist"
	"github.com/mcoot/spiderleague/internal/services/auth"
	redisstorage "github.com/mcoot/spiderleague/internal/storage/redis"
)

// Verifier names accepted by --verifier
const (
	VerifierPlaintext = "plaintext"
	VerifierBcrypt    = "bcrypt"
)

// Config holds CLI configuration. Defaults come from the struct tags, then
// the environment, then flags.
type Config struct {
	Store        string `env:"SPIDERLEAGUE_STORE" envDefault:"file"`
	StorePath    string `env:"SPIDERLEAGUE_STORE_PATH"`
	RedisURL     string `env:"SPIDERLEAGUE_REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisProfile string `env:"SPIDERLEAGUE_REDIS_PROFILE" envDefault:"default"`
	APIURL       string `env:"SPIDERLEAGUE_API_URL" envDefault:"https://api.github.com"`
	Output       string `env:"SPIDERLEAGUE_OUTPUT" envDefault:"text"`
	Verifier     string `env:"SPIDERLEAGUE_VERIFIER" envDefault:"plaintext"`
	Verbose      bool   `env:"SPIDERLEAGUE_VERBOSE"`
}

// LoadConfig returns a Config filled from defaults and the environment
func LoadConfig() (*Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &c, nil
}

// Logger returns the diagnostic logger; it writes to stderr so that command
// output on stdout stays parseable
func (c *Config) Logger() *slog.Logger {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// FactoryConfig validates the settings and converts them for the factory
func (c *Config) FactoryConfig(logger *slog.Logger) (factory.Config, error) {
	if c.Output != "text" && c.Output != "json" {
		return factory.Config{}, fmt.Errorf("invalid output format %q: must be 'text' or 'json'", c.Output)
	}

	fc := factory.Config{
		StorageType: c.Store,
		StorePath:   c.StorePath,
		APIBaseURL:  c.APIURL,
		HTTPTimeout: gist.DefaultTimeout,
		Logger:      logger,
	}

	switch c.Verifier {
	case VerifierPlaintext, "":
		fc.Verifier = auth.PlaintextVerifier{}
	case VerifierBcrypt:
		fc.Verifier = auth.BcryptVerifier{}
	default:
		return factory.Config{}, fmt.Errorf("invalid verifier %q: must be 'plaintext' or 'bcrypt'", c.Verifier)
	}

	switch c.Store {
	case factory.StorageTypeSQLite:
		if fc.StorePath == "" {
			fc.StorePath = defaultStateFile("local.db")
		}
		if err := os.MkdirAll(filepath.Dir(fc.StorePath), 0700); err != nil {
			return factory.Config{}, err
		}
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		if c.RedisProfile != "" {
			redisCfg.Profile = c.RedisProfile
		}
		fc.RedisConfig = &redisCfg
	}

	return fc, nil
}

func defaultStateFile(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".spiderleague", name)
	}
	return filepath.Join(home, ".spiderleague", name)
}
