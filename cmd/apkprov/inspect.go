package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	repo "github.com/slobbe/apk-provenance/internal/repository"
	models "github.com/slobbe/apk-provenance/internal/types"
)

func createInspectCommand(st *cliState) *cobra.Command {
	var (
		save   bool
		format = outputFormat("text")
	)

	cmd := &cobra.Command{
		Use:   "inspect ID",
		Short: "Describe an installed package and fingerprint its signer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])

			reg, err := st.openRegistry()
			if err != nil {
				return err
			}
			app, err := st.inspector(reg).Inspect(id)
			if err != nil {
				return err
			}

			if save {
				store, err := st.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer store.Close()
				if err := saveInspected(cmd.Context(), store, app); err != nil {
					return err
				}
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(app)
			}
			writeApp(cmd.OutOrStdout(), app)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "record the installed state in the store")
	cmd.Flags().Var(&format, "format", "output format: text or json")
	return cmd
}

// saveInspected records the installed aspect of app. Catalog data already
// stored for the app is kept; unknown apps are added as-is.
func saveInspected(ctx context.Context, store repo.Store, app *models.App) error {
	if _, err := store.GetApp(ctx, app.ID); err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		if err := store.SaveApp(ctx, app); err != nil {
			return err
		}
	}
	return store.SaveInstalled(ctx, app)
}

func writeApp(w io.Writer, app *models.App) {
	fmt.Fprintf(w, "ID:          %s\n", app.ID)
	fmt.Fprintf(w, "Name:        %s\n", app.Name)
	fmt.Fprintf(w, "Summary:     %s\n", app.Summary)
	if apk := app.InstalledApk; apk != nil {
		fmt.Fprintf(w, "Version:     %s (%d)\n", apk.Version, apk.Vercode)
		fmt.Fprintf(w, "Signature:   %s\n", apk.Sig)
		fmt.Fprintf(w, "Hash:        %s:%s\n", apk.HashType, apk.Hash)
		fmt.Fprintf(w, "Min SDK:     %d\n", apk.MinSdkVersion)
		fmt.Fprintf(w, "File:        %s\n", apk.InstalledFile)
		if apk.Permissions != nil {
			fmt.Fprintf(w, "Permissions: %s\n", strings.Join(apk.Permissions, ", "))
		}
		if apk.Features != nil {
			fmt.Fprintf(w, "Features:    %s\n", strings.Join(apk.Features, ", "))
		}
	}
	fmt.Fprintf(w, "Installed:   %s\n", app.Added.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Updated:     %s\n", app.LastUpdated.Format("2006-01-02 15:04"))
}
