package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/slobbe/apk-provenance/internal/policy"
	models "github.com/slobbe/apk-provenance/internal/types"
)

func createListCommand(st *cliState) *cobra.Command {
	var installedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored apps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := st.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			apps, err := store.ListApps(cmd.Context())
			if err != nil {
				return err
			}

			color := st.useColor(cmd)
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, colorize(color, colorHeader, fmt.Sprintf("%-32s %-24s %-14s %s", "ID", "Name", "Installed", "Suggested")))
			for _, app := range apps {
				if !policy.IsInstalled(app) {
					if installedOnly {
						continue
					}
					line := fmt.Sprintf("%-32s %-24s %-14s %s", app.ID, app.Name, "-", suggestedLabel(app))
					fmt.Fprintln(w, colorize(color, "\033[2m", line))
					continue
				}
				printRow(w, app.ID, app.Name, app.InstalledVersionName, suggestedLabel(app))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&installedOnly, "installed", false, "only show installed apps")
	return cmd
}

func createUpdatesCommand(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "updates",
		Short: "List installed apps with an update worth installing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := st.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			apps, err := store.ListApps(cmd.Context())
			if err != nil {
				return err
			}

			var pending []*models.App
			for _, app := range apps {
				if policy.CanAndWantToUpdate(app, st.settings.Filter.Filtered) {
					pending = append(pending, app)
				}
			}

			if len(pending) == 0 {
				st.println(cmd, colorGreen, "All apps are up to date")
				return nil
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, colorize(st.useColor(cmd), colorHeader, fmt.Sprintf("%-32s %-24s %-14s %s", "ID", "Name", "Installed", "Available")))
			for _, app := range pending {
				printRow(w, app.ID, app.Name, app.InstalledVersionName, suggestedLabel(app))
			}
			return nil
		},
	}
}

func suggestedLabel(app *models.App) string {
	if app.SuggestedVercode <= 0 {
		return "-"
	}
	if v := app.SuggestedVersion(); v != "" {
		return v + " (" + strconv.Itoa(app.SuggestedVercode) + ")"
	}
	return strconv.Itoa(app.SuggestedVercode)
}
