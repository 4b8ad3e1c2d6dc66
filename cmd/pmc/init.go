package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/pmc/internal/config"
	"github.com/steveyegge/pmc/internal/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a PM Copilot database in the current directory",
	Long: `Initialize PM Copilot by creating a .pmc/ directory.

This creates:
  - .pmc/pmc.db (SQLite database)
  - .pmc/config.yaml (example configuration)

Without init, pmc falls back to ~/.pmc/pmc.db.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to get current directory: %v\n", err)
			os.Exit(1)
		}

		path, err := storage.InitProject(cwd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// Create the schema by opening and closing the database
		db, err := storage.NewStorage(cmd.Context(), &storage.Config{Path: path})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to initialize database: %v\n", err)
			os.Exit(1)
		}
		_ = db.Close()

		cfgPath := filepath.Join(filepath.Dir(path), config.FileName)
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			if err := os.WriteFile(cfgPath, []byte(config.Example()), 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to write %s: %v\n", cfgPath, err)
			}
		}

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s Initialized PM Copilot\n\n", green("✓"))
		fmt.Printf("  Database: %s\n", cyan(path))
		fmt.Printf("  Config:   %s\n", cyan(cfgPath))
		fmt.Println()
		fmt.Printf("%s Next steps:\n", gray("→"))
		fmt.Printf("  %s\n", gray("pmc guide"))
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
