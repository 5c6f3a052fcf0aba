package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/spiderleague/internal/model"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Gist configuration commands",
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigClearCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	var token, gistID string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the GitHub token and gist id, then load the document",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setting a complete configuration triggers a load
			if err := app.ConfigStore.Set(cmd.Context(), model.RemoteConfig{Token: token, GistID: gistID}); err != nil {
				return err
			}

			saved := app.ConfigStore.Get(cmd.Context())
			out := newOutput(cmd)
			if !saved.IsConfigured() {
				out.PrintMessage("Configuration saved (incomplete: both --token and --gist are needed)")
				return nil
			}
			out.PrintMessage(fmt.Sprintf("Configuration saved; %d accounts in the league", len(app.Cache.Accounts())))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "GitHub token with gist scope")
	cmd.Flags().StringVar(&gistID, "gist", "", "Gist id")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.ConfigStore.Get(cmd.Context())
			newOutput(cmd).Print(ConfigView{
				GistID:     c.GistID,
				Token:      c.MaskedToken(),
				Configured: c.IsConfigured(),
			})
			return nil
		},
	}
}

func newConfigClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ConfigStore.Clear(cmd.Context()); err != nil {
				return err
			}
			newOutput(cmd).PrintMessage("Configuration cleared")
			return nil
		},
	}
}
