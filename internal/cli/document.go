package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mcoot/spiderleague/internal/model"
)

var errNotLoaded = errors.New("the shared document could not be loaded (run with -v for details)")

// loadDocument fills the cache for commands that read or change it
func loadDocument(cmd *cobra.Command) error {
	if !app.ConfigStore.Get(cmd.Context()).IsConfigured() {
		return model.ErrConfigurationMissing
	}
	if !app.Remote.Load(cmd.Context()) {
		return errNotLoaded
	}
	return nil
}

func newPullCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Load the shared document and summarize it",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newOutput(cmd)

			if strict {
				doc, err := app.Remote.Fetch(cmd.Context())
				if err != nil {
					return err
				}
				app.Cache.Replace(doc)
				out.Print(summarize(doc, true))
				return nil
			}

			loaded := app.Remote.Load(cmd.Context())
			out.Print(summarize(app.Cache.Snapshot(), loaded))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail with the underlying error if the document cannot be loaded")

	return cmd
}

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Load the shared document and write it back in canonical form",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Never publish the empty startup cache
			if err := loadDocument(cmd); err != nil {
				return err
			}
			if err := app.Remote.Save(cmd.Context()); err != nil {
				return err
			}
			newOutput(cmd).PrintMessage("Document saved")
			return nil
		},
	}
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the game balance constants",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadDocument(cmd); err != nil {
				return err
			}
			newOutput(cmd).Print(app.Economy.Balance())
			return nil
		},
	}
}

func newSpidersCmd() *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:   "spiders",
		Short: "List spiders",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadDocument(cmd); err != nil {
				return err
			}

			owner := ""
			if mine {
				username, ok := app.Session.CurrentUsername()
				if !ok {
					return model.ErrNotLoggedIn
				}
				owner = username
			}

			views := []SpiderView{}
			for _, s := range app.Cache.Spiders() {
				if owner != "" && s.Owner() != owner {
					continue
				}
				name, _ := s["name"].(string)
				views = append(views, SpiderView{ID: s.ID(), Owner: s.Owner(), Name: name})
			}
			newOutput(cmd).Print(views)
			return nil
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "Only spiders owned by the logged-in account")

	return cmd
}

func newTradesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trades",
		Short: "List trade requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadDocument(cmd); err != nil {
				return err
			}
			newOutput(cmd).Print(app.Cache.TradeRequests())
			return nil
		},
	}
}
