package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/spiderleague/internal/factory"
)

var (
	cfg *Config
	app *factory.App
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	loaded, cfgErr := LoadConfig()
	if loaded == nil {
		loaded = &Config{}
	}
	cfg = loaded

	rootCmd := &cobra.Command{
		Use:   "spiderleague",
		Short: "Command line client for Spider League",
		Long: `spiderleague reads and updates the Spider League shared document kept
in a GitHub gist.

Configure the gist once with "config set"; the token, gist id and your
login are remembered in the local store between runs.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return cfgErr
			}

			logger := cfg.Logger()
			fc, err := cfg.FactoryConfig(logger)
			if err != nil {
				return err
			}

			app, err = factory.New(fc)
			if err != nil {
				return err
			}
			return app.Init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.Store, "store", cfg.Store, "Local store: memory, file, sqlite, redis (env: SPIDERLEAGUE_STORE)")
	rootCmd.PersistentFlags().StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "File for the file and sqlite stores (env: SPIDERLEAGUE_STORE_PATH)")
	rootCmd.PersistentFlags().StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for the redis store (env: SPIDERLEAGUE_REDIS_URL)")
	rootCmd.PersistentFlags().StringVar(&cfg.RedisProfile, "redis-profile", cfg.RedisProfile, "Namespace for this client's entries in redis (env: SPIDERLEAGUE_REDIS_PROFILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "GitHub API URL (env: SPIDERLEAGUE_API_URL)")
	rootCmd.PersistentFlags().StringVar(&cfg.Verifier, "verifier", cfg.Verifier, "Password storage: plaintext, bcrypt (env: SPIDERLEAGUE_VERIFIER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json (env: SPIDERLEAGUE_OUTPUT)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newCoinsCmd())
	rootCmd.AddCommand(newBalanceCmd())
	rootCmd.AddCommand(newSpidersCmd())
	rootCmd.AddCommand(newTradesCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := run(); err != nil {
		_, status := errorCode(err)
		os.Exit(status)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		NewOutput(cfg.Output, rootCmd.OutOrStdout(), rootCmd.ErrOrStderr()).PrintError(err)
	}
	return err
}
