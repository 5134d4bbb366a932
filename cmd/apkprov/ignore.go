package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	repo "github.com/slobbe/apk-provenance/internal/repository"
	models "github.com/slobbe/apk-provenance/internal/types"
)

func createIgnoreCommand(st *cliState, ignore bool) *cobra.Command {
	var all bool

	use, short := "ignore ID", "Stop offering the current update (or all updates with --all)"
	if !ignore {
		use, short = "unignore ID", "Offer updates for an app again"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return fmt.Errorf("missing required argument <id>")
			}

			store, err := st.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			app, changed, err := setIgnoreState(cmd.Context(), store, id, ignore, all)
			if err != nil {
				return err
			}

			scope := "the current update"
			if all {
				scope = "all updates"
			}
			verb := "Ignoring"
			if !ignore {
				verb = "No longer ignoring"
			}

			if changed {
				st.println(cmd, colorGreen, fmt.Sprintf("%s %s of %s", verb, scope, app.ID))
				return nil
			}
			st.println(cmd, colorYellow, fmt.Sprintf("%s: nothing to change", app.ID))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "apply to every future update")
	return cmd
}

// setIgnoreState updates the suppression flags of id. Without all, ignoring
// suppresses updates up to the currently suggested version code.
func setIgnoreState(ctx context.Context, store repo.Store, id string, ignore, all bool) (*models.App, bool, error) {
	app, err := store.GetApp(ctx, id)
	if err != nil {
		return nil, false, err
	}

	changed := false
	switch {
	case all:
		if app.IgnoreAllUpdates != ignore {
			app.IgnoreAllUpdates = ignore
			changed = true
		}
	case ignore:
		if app.SuggestedVercode > 0 && app.IgnoreThisUpdate != app.SuggestedVercode {
			app.IgnoreThisUpdate = app.SuggestedVercode
			changed = true
		}
	default:
		if app.IgnoreThisUpdate != 0 {
			app.IgnoreThisUpdate = 0
			changed = true
		}
	}

	if !changed {
		return app, false, nil
	}
	if err := store.SaveApp(ctx, app); err != nil {
		return nil, false, err
	}
	return app, true, nil
}
