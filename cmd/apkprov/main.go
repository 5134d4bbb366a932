package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/slobbe/apk-provenance/internal/config"
	"github.com/slobbe/apk-provenance/internal/core"
	"github.com/slobbe/apk-provenance/internal/device"
	util "github.com/slobbe/apk-provenance/internal/helpers"
	"github.com/slobbe/apk-provenance/internal/logger"
	repo "github.com/slobbe/apk-provenance/internal/repository"
)

var version = "dev"

// cliState carries the resolved settings between the root command and its
// subcommands.
type cliState struct {
	configPath   string
	registryPath string
	logLevel     string
	noColor      bool

	settings *config.Settings
	log      *zap.SugaredLogger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := createRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func createRootCommand() *cobra.Command {
	st := &cliState{}

	root := &cobra.Command{
		Use:           "apkprov",
		Short:         "Inspect installed APKs and check where they came from",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.setup()
		},
	}

	root.PersistentFlags().StringVar(&st.configPath, "config", config.ConfigSrc, "path of the YAML config file")
	root.PersistentFlags().StringVar(&st.registryPath, "registry", "", "device snapshot to read installed packages from")
	root.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().BoolVar(&st.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		createInspectCommand(st),
		createScanCommand(st),
		createFingerprintCommand(st),
		createListCommand(st),
		createUpdatesCommand(st),
		createIgnoreCommand(st, true),
		createIgnoreCommand(st, false),
		createCatalogCommand(st),
		createVerifyCommand(st),
	)
	return root
}

func (st *cliState) setup() error {
	s, err := config.Load(st.configPath)
	if err != nil {
		return err
	}
	if st.registryPath != "" {
		s.Registry = st.registryPath
	}
	if st.logLevel != "" {
		s.Log.Level = st.logLevel
	}
	st.settings = s

	l, err := logger.New(logger.Config{Level: s.Log.Level, Development: s.Log.Development})
	if err != nil {
		return fmt.Errorf("invalid log settings: %w", err)
	}
	st.log = l.Sugar()
	logger.Init(st.log)
	return nil
}

func (st *cliState) openStore(ctx context.Context) (repo.Store, error) {
	if st.settings.Storage.Backend == config.BackendJSON && st.settings.Storage.Database == config.DbSrc {
		if err := config.EnsureDirsExist(); err != nil {
			st.log.Debugw("could not create state directories", "error", err)
		}
	}
	return repo.Open(ctx, st.settings)
}

func (st *cliState) openRegistry() (*device.Registry, error) {
	src, err := util.MakeAbsolute(st.settings.Registry)
	if err != nil {
		return nil, err
	}
	return device.Load(src)
}

func (st *cliState) inspector(reg *device.Registry) *core.Inspector {
	return core.NewInspector(reg,
		core.WithHashType(st.settings.HashType),
		core.WithLogger(st.log),
	)
}
