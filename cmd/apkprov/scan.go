package main

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	models "github.com/slobbe/apk-provenance/internal/types"
)

func createScanCommand(st *cliState) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Inspect every package in the device snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := st.openRegistry()
			if err != nil {
				return err
			}
			ids := reg.IDs()
			inspector := st.inspector(reg)

			bar := progressbar.NewOptions(len(ids),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("inspecting"),
				progressbar.OptionShowDescriptionAtLineEnd(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)

			var apps []*models.App
			failed := 0
			for _, id := range ids {
				bar.Describe(id)
				app, err := inspector.Inspect(id)
				if err != nil {
					st.log.Warnw("inspection failed", "id", id, "error", err)
					failed++
				} else {
					apps = append(apps, app)
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			if save && len(apps) > 0 {
				store, err := st.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer store.Close()
				for _, app := range apps {
					if err := saveInspected(cmd.Context(), store, app); err != nil {
						return err
					}
				}
			}

			color := st.useColor(cmd)
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, colorize(color, colorHeader, fmt.Sprintf("%-32s %-24s %-14s %s", "ID", "Name", "Version", "Signature")))
			for _, app := range apps {
				apk := app.InstalledApk
				printRow(w, app.ID, app.Name, fmt.Sprintf("%s (%d)", apk.Version, apk.Vercode), apk.Sig)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d packages could not be inspected", failed, len(ids))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "record the installed state in the store")
	return cmd
}
