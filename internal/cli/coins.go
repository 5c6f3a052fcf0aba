package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/spiderleague/internal/model"
)

func newCoinsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coins",
		Short: "Show or change the logged-in account's coins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := currentAccount(cmd)
			if err != nil {
				return err
			}
			newOutput(cmd).Print(CoinsView{Username: username, Coins: app.Economy.Coins()})
			return nil
		},
	}

	cmd.AddCommand(newCoinsChangeCmd("set", "Set the balance", func(n int) error {
		return app.Economy.SetCoins(n)
	}))
	cmd.AddCommand(newCoinsChangeCmd("add", "Add coins", func(n int) error {
		_, err := app.Economy.AddCoins(n)
		return err
	}))
	cmd.AddCommand(newCoinsChangeCmd("spend", "Spend coins", func(n int) error {
		_, err := app.Economy.SpendCoins(n)
		return err
	}))

	return cmd
}

// newCoinsChangeCmd builds a subcommand that loads the document, applies
// change to the logged-in account and saves
func newCoinsChangeCmd(use, short string, change func(n int) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <amount>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return model.NewValidationError("amount", fmt.Sprintf("%q is not a whole number", args[0]))
			}

			username, err := currentAccount(cmd)
			if err != nil {
				return err
			}
			if err := change(n); err != nil {
				return err
			}
			if err := app.Remote.Save(cmd.Context()); err != nil {
				return err
			}

			newOutput(cmd).Print(CoinsView{Username: username, Coins: app.Economy.Coins()})
			return nil
		},
	}
}

// currentAccount loads the document and returns the logged-in username,
// failing if nobody is logged in or the account is gone
func currentAccount(cmd *cobra.Command) (string, error) {
	username, ok := app.Session.CurrentUsername()
	if !ok {
		return "", model.ErrNotLoggedIn
	}
	if err := loadDocument(cmd); err != nil {
		return "", err
	}
	if !app.Cache.HasAccount(username) {
		return "", fmt.Errorf("%w: %s", model.ErrAccountNotFound, username)
	}
	return username, nil
}
