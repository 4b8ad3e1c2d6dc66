package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/pmc/internal/board"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show task dates and overall progress",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		pct := board.Completion(p.Tasks)
		fmt.Printf("\n%s  %s → %s\n", cyan(p.Name), board.DateOrBlank(p.Start), board.DateOrBlank(p.End))
		fmt.Printf("Progress %s %d%%\n\n", bar(pct, 30), pct)

		if len(p.Tasks) == 0 {
			fmt.Printf("%s\n\n", gray("No tasks yet. Try 'pmc task templates'."))
			return
		}
		for i, t := range p.Tasks {
			fmt.Printf("%2d. %s %-40s %s → %s\n", i+1, statusIcon(t.Status), t.Title, board.DateOrBlank(t.Start), board.DateOrBlank(t.Due))
			if warning := board.DateOrderWarning(t); warning != "" {
				fmt.Printf("    %s %s\n", yellow("⚠"), warning)
			}
		}
		fmt.Println()
	},
}

func bar(percent, width int) string {
	green := color.New(color.FgGreen).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	filled := percent * width / 100
	out := ""
	for i := 0; i < width; i++ {
		if i < filled {
			out += green("█")
		} else {
			out += gray("░")
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(timelineCmd)
}
