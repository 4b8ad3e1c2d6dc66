package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/pmc/internal/board"
	"github.com/steveyegge/pmc/internal/types"
)

var riskCmd = &cobra.Command{
	Use:     "risk",
	Aliases: []string{"r"},
	Short:   "Manage the risk register",
	Long: `Manage the risk register of the active project.

Risks are listed by score (impact × likelihood, Low=1 Medium=2 High=3),
highest first. Risk numbers refer to that order.`,
}

var riskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List risks by score",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		gray := color.New(color.FgHiBlack).SprintFunc()
		if len(p.Risks) == 0 {
			fmt.Printf("%s\n", gray("No risks yet. Try 'pmc risk seed' for examples."))
			return
		}

		for i, r := range board.SortRisks(p.Risks) {
			state := color.New(color.FgRed).Sprint("open")
			if !r.Open {
				state = gray("closed")
			}
			fmt.Printf("%2d. [%s] %s  %s\n", i+1, scoreColor(r.Score()), r.Title, state)
			fmt.Printf("    impact %s × likelihood %s  %s\n", r.Impact, r.Likelihood, gray(r.ID))
			if r.Mitigation != "" {
				fmt.Printf("    mitigation: %s\n", r.Mitigation)
			}
		}
	},
}

var riskAddCmd = &cobra.Command{
	Use:   "add <impact> <likelihood> <title>",
	Short: "Add a risk (levels: Low, Medium, High)",
	Args:  cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		impact, likelihood := mustLevel(args[0]), mustLevel(args[1])
		pp, err := board.AddRisk(p, strings.Join(args[2:], " "), impact, likelihood)
		mustPatch(cmd.Context(), pp, err)

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Risk added (score %d)\n", green("✓"), types.Risk{Impact: impact, Likelihood: likelihood}.Score())
	},
}

var riskSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add three example risks",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		mustPatch(cmd.Context(), board.SeedRisks(p), nil)

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Added example risks\n", green("✓"))
	},
}

var riskToggleCmd = &cobra.Command{
	Use:   "toggle <n|id>",
	Short: "Close an open risk or reopen a closed one",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		r := mustRisk(p, args[0])
		pp, err := board.SetRiskOpen(p, r.ID, !r.Open)
		mustPatch(cmd.Context(), pp, err)

		state := "closed"
		if !r.Open {
			state = "reopened"
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s %s %s\n", green("✓"), r.Title, state)
	},
}

var riskMitigateCmd = &cobra.Command{
	Use:   "mitigate <n|id> <text>",
	Short: "Set a risk's mitigation",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		r := mustRisk(p, args[0])
		pp, err := board.SetMitigation(p, r.ID, strings.Join(args[1:], " "))
		mustPatch(cmd.Context(), pp, err)

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Mitigation updated for %s\n", green("✓"), r.Title)
	},
}

var riskRmCmd = &cobra.Command{
	Use:   "rm <n|id>",
	Short: "Delete a risk",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		r := mustRisk(p, args[0])
		pp, err := board.RemoveRisk(p, r.ID)
		mustPatch(cmd.Context(), pp, err)

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Deleted %s\n", green("✓"), r.Title)
	},
}

func scoreColor(score int) string {
	s := fmt.Sprintf("%d", score)
	switch {
	case score >= 6:
		return color.New(color.FgRed, color.Bold).Sprint(s)
	case score >= 3:
		return color.New(color.FgYellow).Sprint(s)
	default:
		return color.New(color.FgGreen).Sprint(s)
	}
}

// mustRisk resolves a risk by its position in the sorted list, or by id
func mustRisk(p types.Project, ref string) types.Risk {
	r, ok := resolve(board.SortRisks(p.Risks), ref, func(r types.Risk) string { return r.ID })
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no risk %q (see 'pmc risk list')\n", ref)
		os.Exit(1)
	}
	return r
}

func mustLevel(s string) types.Level {
	l, ok := types.ParseLevel(s)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: invalid level %q (Low, Medium or High)\n", s)
		os.Exit(1)
	}
	return l
}

func init() {
	riskCmd.AddCommand(riskListCmd, riskAddCmd, riskSeedCmd, riskToggleCmd, riskMitigateCmd, riskRmCmd)
	rootCmd.AddCommand(riskCmd)
}
