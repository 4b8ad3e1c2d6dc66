package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/pmc/internal/repl"
)

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Start the interactive guided setup",
	Long: `Walk the active project through eight setup steps: name and goals,
period, stakeholders, template tasks, due dates, a first risk, and a first
stand-up. A project is created if none is active.

Type 'help' in the guide for available commands.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		r, err := repl.New(&repl.Config{
			App:    app,
			Bridge: newBridge(),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create guide: %v\n", err)
			os.Exit(1)
		}

		if err := r.Run(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(guideCmd)
}
