package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/steveyegge/pmc/internal/board"
	"github.com/steveyegge/pmc/internal/config"
	"github.com/steveyegge/pmc/internal/state"
	"github.com/steveyegge/pmc/internal/storage"
	"github.com/steveyegge/pmc/internal/types"
)

var (
	dbPath    string
	configDir string

	cfg    config.Config
	store  storage.Store
	app    *state.App
	logger *slog.Logger
)

// skipStore marks commands that run before a database exists
const skipStore = "skip-store"

var rootCmd = &cobra.Command{
	Use:   "pmc",
	Short: "PM Copilot - plan and track a project from the terminal",
	Long: `PM Copilot keeps your projects, tasks, risks and daily stand-ups in a
local database and walks you through setting up a new project step by step.

Start with 'pmc guide' for the guided setup, or 'pmc project new'.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Annotations[skipStore] == "true" {
			return
		}
		if err := setup(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: auto-discover .pmc/*.db)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding config.yaml (default: the database directory)")
}

// setup loads config, opens the store and restores application state
func setup(ctx context.Context) error {
	if dbPath == "" {
		found, err := storage.DiscoverDatabase()
		if err != nil {
			return err
		}
		dbPath = found
	}
	if configDir == "" {
		configDir = defaultConfigDir(dbPath)
	}

	var err error
	cfg, err = config.Load(configDir)
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	store, err = storage.NewStorage(ctx, &storage.Config{Path: dbPath})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	app, err = state.Load(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	logger.Debug("state loaded", "db", dbPath, "projects", len(app.Projects()))
	return nil
}

// defaultConfigDir places config.yaml next to the database
func defaultConfigDir(db string) string {
	if db == ":memory:" {
		return storage.Dir
	}
	return filepath.Dir(db)
}

// activeProject returns the active project or exits with a hint
func activeProject() types.Project {
	p := app.Active()
	if p == nil {
		fmt.Fprintf(os.Stderr, "Error: no active project\n")
		fmt.Fprintf(os.Stderr, "  Run 'pmc project new' or 'pmc project use <id>'\n")
		os.Exit(1)
	}
	return *p
}

// mustPatch applies a patch to the active project or exits
func mustPatch(ctx context.Context, pp types.ProjectPatch, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := app.PatchActive(ctx, pp); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save: %v\n", err)
		os.Exit(1)
	}
}

// mustDate validates a YYYY-MM-DD argument or exits
func mustDate(s string) string {
	d, err := board.ParseDate(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return d
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
