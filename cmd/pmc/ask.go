package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask the assistant about the active project",
	Long: `Ask the assistant a question. The active project (name, goals,
stakeholders, tasks, risks) and the knowledge notes are sent along.

Without a chat endpoint or API key, or when the request fails, a short
built-in tip is shown instead.

Example:
  pmc ask "週次レポート案を作って"
  pmc ask "which risks should I look at first?"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reply := newBridge().Ask(cmd.Context(), strings.Join(args, " "), app.Active(), app.Knowledge())
		magenta := color.New(color.FgMagenta).SprintFunc()
		fmt.Printf("%s %s\n", magenta("AI:"), reply)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
