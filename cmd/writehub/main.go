package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/pbaille/writehub/internal/archive"
	"github.com/pbaille/writehub/internal/config"
	"github.com/pbaille/writehub/internal/journal"
	"github.com/pbaille/writehub/internal/logging"
	"github.com/pbaille/writehub/internal/stats"
	"github.com/pbaille/writehub/internal/store"
)

var (
	dbPath     string
	configFile string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "writehub",
		Short:         "Journal of viewpoints with writing statistics and streaks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default <data_dir>/writehub.db)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.yaml or ~/.writehub/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(categoryCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(backupCmd())
	rootCmd.AddCommand(restoreCmd())
	rootCmd.AddCommand(clipCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app holds everything a command needs
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	loc     *time.Location
	store   *store.Store
	stats   *stats.Engine
	journal *journal.Journal
	archive *archive.Archive
}

// openApp loads config, opens the store and seeds the default categories
// on first use
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(config.Options{ConfigFile: configFile})
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	engine := stats.New(logging.Component(log, "stats"), loc, time.Now)
	a := &app{
		cfg:     cfg,
		log:     log,
		loc:     loc,
		store:   st,
		stats:   engine,
		journal: journal.New(st, engine, logging.Component(log, "journal"), time.Now),
		archive: archive.New(st, engine, cfg.ExportDir, logging.Component(log, "archive"), time.Now),
	}

	if cfg.Defaults.Categories {
		if _, err := a.journal.EnsureDefaultCategories(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

// Close releases the store and flushes the logger
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("close store", zap.Error(err))
	}
	_ = a.log.Sync()
}

// withApp runs fn with an open app and closes it afterwards
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// interactive reports whether prompts can be shown
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
