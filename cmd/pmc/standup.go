package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/pmc/internal/board"
)

var (
	standupYesterday string
	standupToday     string
	standupBlockers  string
	standupLimit     int
)

var standupCmd = &cobra.Command{
	Use:     "standup",
	Aliases: []string{"su"},
	Short:   "Record and review daily stand-ups",
}

var standupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show recent stand-ups, newest first",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		if len(p.Standups) == 0 {
			fmt.Printf("%s\n", gray("No stand-ups yet. Run 'pmc standup add'."))
			return
		}
		standups := p.Standups
		if standupLimit > 0 && len(standups) > standupLimit {
			standups = standups[:standupLimit]
		}
		for _, s := range standups {
			fmt.Printf("\n%s\n", cyan(s.Date))
			fmt.Printf("  Yesterday: %s\n", s.Yesterday)
			fmt.Printf("  Today:     %s\n", s.Today)
			if s.Blockers != "" {
				fmt.Printf("  Blockers:  %s\n", red(s.Blockers))
			}
		}
		fmt.Println()
	},
}

var standupAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record today's stand-up",
	Long: `Record a stand-up for the active project, dated today (UTC).

Fields not given as flags are asked for interactively.

Example:
  pmc standup add --yesterday "wrote spec" --today "review" --blockers ""`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p := activeProject()
		flags := cmd.Flags()
		in := bufio.NewReader(os.Stdin)

		yesterday := standupYesterday
		if !flags.Changed("yesterday") {
			yesterday = ask(in, "Yesterday: ")
		}
		today := standupToday
		if !flags.Changed("today") {
			today = ask(in, "Today: ")
		}
		blockers := standupBlockers
		if !flags.Changed("blockers") {
			blockers = ask(in, "Blockers: ")
		}

		mustPatch(cmd.Context(), board.AddStandup(p, time.Now(), yesterday, today, blockers), nil)

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Stand-up saved\n", green("✓"))
	},
}

// ask prints a label and reads one line; EOF reads as empty
func ask(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func init() {
	standupAddCmd.Flags().StringVar(&standupYesterday, "yesterday", "", "What was done yesterday")
	standupAddCmd.Flags().StringVar(&standupToday, "today", "", "What is planned today")
	standupAddCmd.Flags().StringVar(&standupBlockers, "blockers", "", "Anything in the way")
	standupListCmd.Flags().IntVarP(&standupLimit, "limit", "n", 5, "Show at most n stand-ups (0 for all)")

	standupCmd.AddCommand(standupListCmd, standupAddCmd)
	rootCmd.AddCommand(standupCmd)
}
