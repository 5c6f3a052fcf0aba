package cli

import (
	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The save publishes the whole cache, so it must hold the remote document
			if err := loadDocument(cmd); err != nil {
				return err
			}
			acc, err := app.Auth.Register(cmd.Context(), user, pass)
			if err != nil {
				return err
			}
			newOutput(cmd).Print(newAccountView(acc))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := app.Auth.Login(cmd.Context(), user, pass)
			if err != nil {
				return err
			}
			newOutput(cmd).Print(newAccountView(acc))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current login",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			newOutput(cmd).PrintMessage("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current login",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, ok := app.Session.CurrentUsername()
			if ok {
				// Coins come from the document; without it they read as 0
				app.Remote.Load(cmd.Context())
			}
			newOutput(cmd).Print(SessionView{
				LoggedIn: ok,
				Username: username,
				Admin:    app.Session.IsAdmin(),
				Coins:    app.Economy.Coins(),
			})
			return nil
		},
	}
}
