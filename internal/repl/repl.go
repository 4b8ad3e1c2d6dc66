// Package repl is the interactive guided setup: a readline loop that walks
// the active project through the eight onboarding steps.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/steveyegge/pmc/internal/assistant"
	"github.com/steveyegge/pmc/internal/guide"
	"github.com/steveyegge/pmc/internal/state"
	"github.com/steveyegge/pmc/internal/types"
)

// REPL represents the interactive guide
type REPL struct {
	app      *state.App
	engine   *guide.Engine
	session  *assistant.Session
	rl       *readline.Instance
	ctx      context.Context
	out      io.Writer
	prompt   func(label string) (string, error)
	now      func() time.Time
	commands map[string]CommandHandler
}

// CommandHandler handles a specific command
type CommandHandler func(args []string) error

// Config holds REPL configuration
type Config struct {
	App    *state.App
	Bridge *assistant.Bridge
	Out    io.Writer // defaults to stdout
}

// errExit ends the loop
var errExit = errors.New("exit")

// New creates a new REPL instance
func New(cfg *Config) (*REPL, error) {
	if cfg.App == nil {
		return nil, fmt.Errorf("app state is required")
	}
	bridge := cfg.Bridge
	if bridge == nil {
		bridge = assistant.NewBridge(nil, nil)
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	r := &REPL{
		app:      cfg.App,
		engine:   guide.New(),
		ctx:      context.Background(),
		out:      out,
		now:      time.Now,
		commands: make(map[string]CommandHandler),
	}
	r.session = assistant.NewSession(bridge, r.printReply)
	r.prompt = func(string) (string, error) { return "", io.EOF }

	r.registerCommands()
	return r, nil
}

// Run starts the REPL loop
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	if _, err := r.active(); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	mainPrompt := cyan("pmc> ")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            mainPrompt,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	r.rl = rl
	r.out = rl.Stdout()
	r.prompt = func(label string) (string, error) {
		rl.SetPrompt(label)
		defer rl.SetPrompt(mainPrompt)
		line, err := rl.Readline()
		return strings.TrimSpace(line), err
	}
	defer r.session.Wait()

	r.printWelcome()
	r.printStep()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Fprintf(r.out, "%s %v\n", red("Error:"), err)
		}
	}
}

// processInput processes a single line of input. Anything that isn't a
// command is sent to the assistant.
func (r *REPL) processInput(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	if handler, ok := r.commands[strings.ToLower(parts[0])]; ok {
		return handler(parts[1:])
	}
	return r.cmdAsk(parts)
}

func (r *REPL) registerCommands() {
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit

	r.commands["show"] = r.cmdShow
	r.commands["next"] = r.cmdNext
	r.commands["back"] = r.cmdBack

	r.commands["name"] = r.cmdName
	r.commands["goals"] = r.cmdGoals
	r.commands["start"] = r.cmdStart
	r.commands["end"] = r.cmdEnd
	r.commands["stakeholders"] = r.cmdStakeholders
	r.commands["templates"] = r.cmdTemplates
	r.commands["clear-tasks"] = r.cmdClearTasks
	r.commands["tasks"] = r.cmdTasks
	r.commands["dates"] = r.cmdDates
	r.commands["risk"] = r.cmdRisk
	r.commands["standup"] = r.cmdStandup
	r.commands["ask"] = r.cmdAsk
}

// active returns the active project, creating one if there is none
func (r *REPL) active() (types.Project, error) {
	if p := r.app.Active(); p != nil {
		return *p, nil
	}
	p, err := r.app.CreateProject(r.ctx)
	if err != nil {
		return types.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(r.out, "\n%s\n", cyan("PM Copilot - guided setup"))
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'exit' to quit")
	fmt.Fprintln(r.out)
}

func (r *REPL) printReply(m assistant.Message) {
	magenta := color.New(color.FgMagenta).SprintFunc()
	fmt.Fprintf(r.out, "%s %s\n", magenta("AI:"), m.Text)
}

func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s\n\n", cyan("Available Commands:"))

	commands := []struct {
		name string
		desc string
	}{
		{"show", "Show the current step"},
		{"next, back", "Move between steps"},
		{"name <text>", "Set the project name"},
		{"goals <text>", "Set the project goals"},
		{"start <date>, end <date>", "Set the project period (YYYY-MM-DD)"},
		{"stakeholders <a, b, ...>", "Set the stakeholder list"},
		{"templates", "Add the template task set"},
		{"clear-tasks", "Remove every task"},
		{"tasks", "List tasks with their numbers"},
		{"dates <n> <start> <due>", "Set dates on task n ('-' clears)"},
		{"risk <impact> <likelihood> <title>", "Add a risk (Low/Medium/High)"},
		{"standup", "Record yesterday/today/blockers"},
		{"ask <message>", "Ask the assistant (any other text works too)"},
		{"help, ?", "Show this help message"},
		{"exit, quit", "Exit"},
	}
	for _, cmd := range commands {
		fmt.Fprintf(r.out, "  %s  %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Fprintln(r.out)
	return nil
}

func (r *REPL) cmdExit(args []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s Goodbye!\n", green("✓"))
	return errExit
}
