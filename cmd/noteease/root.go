package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/noteease"
	"github.com/aretw0/noteease/internal/config"
	"github.com/aretw0/noteease/pkg/core"
)

// app carries the state shared by every command of one invocation.
type app struct {
	verbose bool
	envFile string

	adapter string
	path    string
	key     string
	format  string

	logger *slog.Logger
	cfg    *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "noteease",
		Short: "Create, edit, list and delete short rich-text notes",
		Long: `noteease keeps a small collection of rich-text notes.
The whole collection is stored as one blob under a single key of the
configured backend (a directory, SQLite, S3 or Redis).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&a.envFile, "env-file", "", "Read settings from this .env file")
	flags.StringVar(&a.adapter, "adapter", "", "Storage backend (fs, memory, sqlite, s3, redis)")
	flags.StringVar(&a.path, "path", "", "Backend location: directory, database file, bucket or address")
	flags.StringVar(&a.key, "key", "", "Key the collection is stored under (default \"notes\")")
	flags.StringVar(&a.format, "format", "", "Blob encoding (json, yaml)")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newServeCmd(a),
		newStatusCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	var files []string
	if a.envFile != "" {
		files = append(files, a.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("adapter") {
		cfg.Adapter = a.adapter
	}
	if flags.Changed("path") {
		cfg.Path = a.path
	}
	if flags.Changed("key") {
		cfg.Key = a.key
	}
	if flags.Changed("format") {
		cfg.Format = a.format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// openStore opens the configured backend. Callers must Close the store so
// background writes finish before the process exits.
func (a *app) openStore(ctx context.Context, extra ...noteease.Option) (*noteease.Store, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	opts := append(a.cfg.Options(a.logger), extra...)
	store, err := noteease.New(ctx, a.cfg.URI(wd), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", a.cfg.Adapter, err)
	}
	return store, nil
}

// closeStore flushes pending writes and reports the last write failure.
func closeStore(ctx context.Context, store *noteease.Store) error {
	if err := store.Close(ctx); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	if state, ok := store.State().(core.StoreState); ok && state.LastWriteError != "" {
		return fmt.Errorf("failed to save notes: %s", state.LastWriteError)
	}
	return nil
}
