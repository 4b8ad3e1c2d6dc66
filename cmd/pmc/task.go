package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/pmc/internal/board"
	"github.com/steveyegge/pmc/internal/types"
)

var (
	taskPhase     string
	templateGuide bool
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"t"},
	Short:   "Manage tasks on the plan board",
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show tasks grouped by phase",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s  %s\n", cyan(p.Name), gray(fmt.Sprintf("%d%% done", board.Completion(p.Tasks))))
		index := taskIndex(p.Tasks)
		for _, g := range board.GroupByPhase(p.Tasks) {
			fmt.Printf("\n%s\n", yellow(string(g.Phase)))
			if len(g.Tasks) == 0 {
				fmt.Printf("  %s\n", gray("(none)"))
				continue
			}
			for _, t := range g.Tasks {
				fmt.Printf("  %2d. %s %s  %s\n", index[t.ID], statusIcon(t.Status), t.Title, gray(t.ID))
			}
		}
		fmt.Println()
	},
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		phase := mustPhase(taskPhase)
		pp, err := board.AddTask(p, strings.Join(args, " "), phase)
		mustPatch(cmd.Context(), pp, err)

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Added to %s\n", green("✓"), phase)
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <n|id> <todo|doing|done>",
	Short: "Change a task's status",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		t := mustTask(p, args[0])
		pp, err := board.SetTaskStatus(p, t.ID, types.TaskStatus(strings.ToLower(args[1])))
		mustPatch(cmd.Context(), pp, err)

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s %s → %s\n", green("✓"), t.Title, args[1])
	},
}

var taskDatesCmd = &cobra.Command{
	Use:   "dates <n|id> <start> <due>",
	Short: "Set a task's start and due dates ('-' clears)",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		t := mustTask(p, args[0])
		t.Start, t.Due = mustDate(args[1]), mustDate(args[2])
		pp, err := board.SetTaskDates(p, t.ID, t.Start, t.Due)
		mustPatch(cmd.Context(), pp, err)

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s %s: %s → %s\n", green("✓"), t.Title, board.DateOrBlank(t.Start), board.DateOrBlank(t.Due))
		if warning := board.DateOrderWarning(t); warning != "" {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Printf("%s %s\n", yellow("Warning:"), warning)
		}
	},
}

var taskRmCmd = &cobra.Command{
	Use:   "rm <n|id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		t := mustTask(p, args[0])
		pp, err := board.RemoveTask(p, t.ID)
		mustPatch(cmd.Context(), pp, err)

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Deleted %s\n", green("✓"), t.Title)
	},
}

var taskTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Add the standard template tasks",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		set := board.TemplatesPlanning
		if templateGuide {
			set = board.TemplatesGuided
		}
		mustPatch(cmd.Context(), board.AddTemplates(p, set), nil)

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Added %d template tasks\n", green("✓"), len(set))
	},
}

var taskClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every task in the active project",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		activeProject()
		mustPatch(cmd.Context(), board.ClearTasks(), nil)

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s All tasks removed\n", green("✓"))
	},
}

func statusIcon(s types.TaskStatus) string {
	switch s {
	case types.StatusDone:
		return color.New(color.FgGreen).Sprint("✓")
	case types.StatusDoing:
		return color.New(color.FgYellow).Sprint("◐")
	default:
		return "○"
	}
}

// taskIndex maps task ids to their 1-based position in the project
func taskIndex(tasks []types.Task) map[string]int {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i + 1
	}
	return index
}

// resolve finds an item by 1-based position or by id
func resolve[T any](items []T, ref string, id func(T) string) (T, bool) {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(items) {
		return items[n-1], true
	}
	for _, item := range items {
		if id(item) == ref {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func mustTask(p types.Project, ref string) types.Task {
	t, ok := resolve(p.Tasks, ref, func(t types.Task) string { return t.ID })
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no task %q (see 'pmc task list')\n", ref)
		os.Exit(1)
	}
	return t
}

// mustPhase matches a phase name in any case or exits
func mustPhase(s string) types.Phase {
	for _, p := range types.Phases {
		if strings.EqualFold(s, string(p)) {
			return p
		}
	}
	fmt.Fprintf(os.Stderr, "Error: unknown phase %q\n", s)
	os.Exit(1)
	return ""
}

func init() {
	taskAddCmd.Flags().StringVar(&taskPhase, "phase", string(types.PhaseInitiation), "Phase: Initiation, Planning, Execution, Monitoring or Closure")
	taskTemplatesCmd.Flags().BoolVar(&templateGuide, "guide", false, "Use the guided-setup template set")

	taskCmd.AddCommand(taskListCmd, taskAddCmd, taskStatusCmd, taskDatesCmd, taskRmCmd, taskTemplatesCmd, taskClearCmd)
	rootCmd.AddCommand(taskCmd)
}
