package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slobbe/apk-provenance/internal/catalog"
	"github.com/slobbe/apk-provenance/internal/policy"
)

func createCatalogCommand(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Work with repository catalogs",
	}
	cmd.AddCommand(createCatalogImportCommand(st))
	return cmd
}

func createCatalogImportCommand(st *cliState) *cobra.Command {
	var sdk int

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load an index-v1 catalog into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			c.Resolve(sdk)

			store, err := st.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := catalog.Apply(cmd.Context(), store, c, st.log)
			if err != nil {
				return err
			}

			name := c.Name
			if name == "" {
				name = args[0]
			}
			st.println(cmd, colorGreen, fmt.Sprintf("Imported %d apps from %s", n, name))
			return nil
		},
	}

	cmd.Flags().IntVar(&sdk, "sdk", 0, "device SDK level used to decide compatibility (0 accepts all)")
	return cmd
}

func createVerifyCommand(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "verify ID",
		Short: "Check that an installed app was signed by the catalog's key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])

			store, err := st.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			app, err := store.GetApp(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !policy.IsInstalled(app) || app.InstalledApk == nil {
				return fmt.Errorf("%s has no recorded installation, run inspect --save first", id)
			}
			if !policy.IsValid(app) {
				st.log.Warnw("installed artifact is no longer readable", "id", id, "file", app.InstalledApk.InstalledFile)
			}

			releases, err := store.Releases(cmd.Context(), id)
			if err != nil {
				return err
			}

			release, err := catalog.Match(app.InstalledApk, releases)
			switch {
			case err == nil:
				st.println(cmd, colorGreen, fmt.Sprintf("%s %s matches catalog release %s", id, app.InstalledVersionName, release.ApkName))
				return nil
			case errors.Is(err, catalog.ErrSignatureMismatch):
				st.println(cmd, colorRed, fmt.Sprintf("%s: installed sig %s, catalog sig %s", id, app.InstalledApk.Sig, release.Sig))
				return err
			default:
				return err
			}
		},
	}
}
