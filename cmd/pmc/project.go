package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/pmc/internal/board"
	"github.com/steveyegge/pmc/internal/types"
)

var (
	setName         string
	setGoals        string
	setStart        string
	setEnd          string
	setStakeholders string
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"p"},
	Short:   "Create, switch and edit projects",
}

var projectNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a project and make it active",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p, err := app.CreateProject(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Created %s (%s)\n", green("✓"), p.Name, p.ID)
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		projects := app.Projects()
		gray := color.New(color.FgHiBlack).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		if len(projects) == 0 {
			fmt.Printf("%s\n", gray("No projects. Run 'pmc project new'."))
			return
		}
		activeID := app.ActiveID()
		for _, p := range projects {
			marker := " "
			name := p.Name
			if p.ID == activeID {
				marker = green("●")
				name = green(name)
			}
			fmt.Printf("%s %s  %s  %s\n", marker, gray(p.ID), name, gray(fmt.Sprintf("%d%% done", board.Completion(p.Tasks))))
		}
	},
}

var projectUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Make a project active",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := app.SetActive(cmd.Context(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		p := activeProject()
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Active project: %s\n", green("✓"), p.Name)
	},
}

var projectRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if _, ok := app.Project(args[0]); !ok {
			fmt.Fprintf(os.Stderr, "Error: project %s not found\n", args[0])
			os.Exit(1)
		}
		if err := app.RemoveProject(cmd.Context(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Deleted %s\n", green("✓"), args[0])
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active project",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		fmt.Printf("\n%s %s\n\n", cyan(p.Name), p.ID)
		fmt.Printf("  Goals:        %s\n", p.Goals)
		fmt.Printf("  Period:       %s → %s\n", board.DateOrBlank(p.Start), board.DateOrBlank(p.End))
		fmt.Printf("  Stakeholders: %s\n", board.FormatStakeholders(p.Stakeholders))
		fmt.Printf("  Progress:     %d%% of %d tasks\n", board.Completion(p.Tasks), len(p.Tasks))
		fmt.Printf("  Risks:        %d (%d open)\n", len(p.Risks), openRisks(p.Risks))
		fmt.Printf("  Stand-ups:    %d\n", len(p.Standups))
		if p.Start != "" && p.End != "" && p.End < p.Start {
			fmt.Printf("\n%s end %s is before start %s\n", yellow("Warning:"), p.End, p.Start)
		}
		fmt.Println()
	},
}

var projectSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Edit the active project's name, goals, period or stakeholders",
	Long: `Edit fields of the active project. Only the flags you pass are changed.

Example:
  pmc project set --name "Launch" --goals "Ship v1"
  pmc project set --start 2025-01-01 --end 2025-03-31
  pmc project set --stakeholders "PM, Eng, Design"`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		activeProject()

		var pp types.ProjectPatch
		flags := cmd.Flags()
		if flags.Changed("name") {
			pp = pp.Merge(types.PatchName(setName))
		}
		if flags.Changed("goals") {
			pp = pp.Merge(types.PatchGoals(setGoals))
		}
		if flags.Changed("start") {
			pp = pp.Merge(types.PatchStart(mustDate(setStart)))
		}
		if flags.Changed("end") {
			pp = pp.Merge(types.PatchEnd(mustDate(setEnd)))
		}
		if flags.Changed("stakeholders") {
			pp = pp.Merge(types.PatchStakeholders(board.ParseStakeholders(setStakeholders)))
		}
		if !pp.IsEmpty() {
			mustPatch(cmd.Context(), pp, nil)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Updated %s\n", green("✓"), activeProject().Name)
	},
}

func openRisks(risks []types.Risk) int {
	n := 0
	for _, r := range risks {
		if r.Open {
			n++
		}
	}
	return n
}

func init() {
	projectSetCmd.Flags().StringVar(&setName, "name", "", "Project name")
	projectSetCmd.Flags().StringVar(&setGoals, "goals", "", "Project goals")
	projectSetCmd.Flags().StringVar(&setStart, "start", "", "Start date (YYYY-MM-DD, empty clears)")
	projectSetCmd.Flags().StringVar(&setEnd, "end", "", "End date (YYYY-MM-DD, empty clears)")
	projectSetCmd.Flags().StringVar(&setStakeholders, "stakeholders", "", "Comma-separated stakeholders")

	projectCmd.AddCommand(projectNewCmd, projectListCmd, projectUseCmd, projectRmCmd, projectShowCmd, projectSetCmd)
	rootCmd.AddCommand(projectCmd)
}
