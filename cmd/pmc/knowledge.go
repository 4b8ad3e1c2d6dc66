package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var knowledgeFile string

var knowledgeCmd = &cobra.Command{
	Use:     "knowledge",
	Aliases: []string{"kb"},
	Short:   "Notes shared by every project and sent with assistant questions",
}

var knowledgeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the knowledge notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		text := app.Knowledge()
		if text == "" {
			gray := color.New(color.FgHiBlack).SprintFunc()
			fmt.Printf("%s\n", gray("(empty)"))
			return
		}
		fmt.Println(text)
	},
}

var knowledgeSetCmd = &cobra.Command{
	Use:   "set [text]",
	Short: "Replace the knowledge notes",
	Long: `Replace the knowledge notes with text, the contents of --file,
or standard input when --file is "-".

Example:
  pmc knowledge set "Weekly report goes out on Fridays"
  pmc knowledge set --file notes.md
  cat notes.md | pmc knowledge set --file -`,
	Run: func(cmd *cobra.Command, args []string) {
		text := strings.Join(args, " ")
		switch knowledgeFile {
		case "":
		case "-":
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to read stdin: %v\n", err)
				os.Exit(1)
			}
			text = string(data)
		default:
			data, err := os.ReadFile(knowledgeFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			text = string(data)
		}

		if err := app.SetKnowledge(cmd.Context(), text); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to save: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Knowledge saved (%d characters)\n", green("✓"), len([]rune(text)))
	},
}

func init() {
	knowledgeSetCmd.Flags().StringVarP(&knowledgeFile, "file", "f", "", "Read the notes from a file ('-' for stdin)")

	knowledgeCmd.AddCommand(knowledgeShowCmd, knowledgeSetCmd)
	rootCmd.AddCommand(knowledgeCmd)
}
