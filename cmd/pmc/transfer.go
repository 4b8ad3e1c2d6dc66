package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/pmc/internal/transfer"
)

var (
	exportDir    string
	exportStdout bool
	importYes    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every project to a JSON file",
	Long: `Write all projects to pm-copilot-<date>.json in the given directory
(or to stdout with --stdout). Knowledge notes are not included.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		projects := app.Projects()
		if exportStdout {
			if err := transfer.Export(os.Stdout, projects); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		path, err := transfer.WriteFile(exportDir, projects, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Exported %d project(s) to %s\n", green("✓"), len(projects), path)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all projects with the contents of an export file",
	Long: `Load projects from an export file. The current projects are replaced
entirely and the first imported project becomes active. Knowledge notes are
kept. Nothing changes if the file is invalid.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		projects, err := transfer.ImportFile(args[0])
		if err != nil {
			var verr *transfer.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", verr)
			} else {
				fmt.Fprintf(os.Stderr, "Error: failed to read %s: %v\n", args[0], err)
			}
			os.Exit(1)
		}

		if current := len(app.Projects()); current > 0 && !importYes {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Fprintf(os.Stderr, "%s this replaces %d existing project(s); re-run with --yes to continue\n", yellow("Warning:"), current)
			os.Exit(1)
		}

		if err := app.ReplaceProjects(cmd.Context(), projects); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to save: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Imported %d project(s)\n", green("✓"), len(projects))
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", ".", "Directory to write the export file to")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write JSON to stdout instead of a file")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Replace existing projects without asking")

	rootCmd.AddCommand(exportCmd, importCmd)
}
