package repl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/steveyegge/pmc/internal/board"
	"github.com/steveyegge/pmc/internal/guide"
	"github.com/steveyegge/pmc/internal/types"
)

const progressWidth = 20

func progressBar(percent int) string {
	filled := percent * progressWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", progressWidth-filled) + "]"
}

// printStep shows the current step header, hint and what is filled in so far
func (r *REPL) printStep() {
	p, err := r.active()
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	step := r.engine.Step()
	fmt.Fprintf(r.out, "\nStep %d/%d %s %d%%\n", step.Number, guide.Total, progressBar(r.engine.Progress()), r.engine.Progress())
	fmt.Fprintf(r.out, "%s\n", cyan(step.Title))
	fmt.Fprintf(r.out, "%s\n\n", gray(step.Description))

	fmt.Fprintf(r.out, "  Project:      %s\n", p.Name)
	fmt.Fprintf(r.out, "  Goals:        %s\n", p.Goals)
	fmt.Fprintf(r.out, "  Period:       %s → %s\n", board.DateOrBlank(p.Start), board.DateOrBlank(p.End))
	fmt.Fprintf(r.out, "  Stakeholders: %s\n", board.FormatStakeholders(p.Stakeholders))
	fmt.Fprintf(r.out, "  Tasks:        %d (%d dated)\n", len(p.Tasks), datedTasks(p.Tasks))
	fmt.Fprintf(r.out, "  Risks:        %d\n", len(p.Risks))
	fmt.Fprintf(r.out, "  Stand-ups:    %d\n\n", len(p.Standups))

	switch {
	case r.engine.IsFinal():
		fmt.Fprintf(r.out, "%s Open the plan board with 'pmc task list' or 'pmc timeline'.\n", green("✓"))
	case r.engine.Ready(p):
		fmt.Fprintf(r.out, "%s Type 'next' to continue.\n", green("✓"))
	default:
		fmt.Fprintf(r.out, "%s Not done yet.\n", yellow("○"))
	}
}

func datedTasks(tasks []types.Task) int {
	n := 0
	for _, t := range tasks {
		if t.HasDates() {
			n++
		}
	}
	return n
}

func (r *REPL) cmdShow(args []string) error {
	r.printStep()
	return nil
}

func (r *REPL) cmdNext(args []string) error {
	p, err := r.active()
	if err != nil {
		return err
	}
	if err := r.engine.Next(p); err != nil {
		switch {
		case errors.Is(err, guide.ErrStepNotReady):
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Fprintf(r.out, "%s %s\n", yellow("Not yet:"), r.engine.Step().Description)
			return nil
		case errors.Is(err, guide.ErrFinalStep):
			fmt.Fprintln(r.out, "Setup is complete. Open the plan board with 'pmc task list' or 'pmc timeline'.")
			return nil
		}
		return err
	}
	r.printStep()
	return nil
}

func (r *REPL) cmdBack(args []string) error {
	if err := r.engine.Back(); err != nil {
		return err
	}
	r.printStep()
	return nil
}

// patch writes a change to the active project and confirms it
func (r *REPL) patch(pp types.ProjectPatch, msg string) error {
	if _, err := r.active(); err != nil {
		return err
	}
	if err := r.app.PatchActive(r.ctx, pp); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s %s\n", green("✓"), msg)
	return nil
}

func (r *REPL) cmdName(args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		return fmt.Errorf("usage: name <text>")
	}
	return r.patch(types.PatchName(name), "Name set")
}

func (r *REPL) cmdGoals(args []string) error {
	goals := strings.Join(args, " ")
	if goals == "" {
		return fmt.Errorf("usage: goals <text>")
	}
	return r.patch(types.PatchGoals(goals), "Goals set")
}

func (r *REPL) cmdStart(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: start <YYYY-MM-DD>")
	}
	d, err := board.ParseDate(args[0])
	if err != nil {
		return err
	}
	return r.patch(types.PatchStart(d), "Start date set")
}

func (r *REPL) cmdEnd(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: end <YYYY-MM-DD>")
	}
	d, err := board.ParseDate(args[0])
	if err != nil {
		return err
	}
	return r.patch(types.PatchEnd(d), "End date set")
}

func (r *REPL) cmdStakeholders(args []string) error {
	list := board.ParseStakeholders(strings.Join(args, " "))
	return r.patch(types.PatchStakeholders(list), fmt.Sprintf("%d stakeholder(s) set", len(list)))
}

func (r *REPL) cmdTemplates(args []string) error {
	p, err := r.active()
	if err != nil {
		return err
	}
	return r.patch(board.AddTemplates(p, board.TemplatesGuided), fmt.Sprintf("Added %d template tasks", len(board.TemplatesGuided)))
}

func (r *REPL) cmdClearTasks(args []string) error {
	return r.patch(board.ClearTasks(), "All tasks removed")
}

func (r *REPL) cmdTasks(args []string) error {
	p, err := r.active()
	if err != nil {
		return err
	}
	if len(p.Tasks) == 0 {
		fmt.Fprintln(r.out, "No tasks yet. Try 'templates'.")
		return nil
	}
	for i, t := range p.Tasks {
		fmt.Fprintf(r.out, "  %2d. %-40s %s → %s\n", i+1, t.Title, board.DateOrBlank(t.Start), board.DateOrBlank(t.Due))
	}
	return nil
}

func (r *REPL) cmdDates(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: dates <n> <start> <due>")
	}
	p, err := r.active()
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(p.Tasks) {
		return fmt.Errorf("no task %q (see 'tasks')", args[0])
	}
	start, err := board.ParseDate(args[1])
	if err != nil {
		return err
	}
	due, err := board.ParseDate(args[2])
	if err != nil {
		return err
	}

	task := p.Tasks[n-1]
	pp, err := board.SetTaskDates(p, task.ID, start, due)
	if err != nil {
		return err
	}
	if err := r.patch(pp, fmt.Sprintf("Dates set on %q", task.Title)); err != nil {
		return err
	}
	task.Start, task.Due = start, due
	if warning := board.DateOrderWarning(task); warning != "" {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(r.out, "%s %s\n", yellow("Warning:"), warning)
	}
	return nil
}

func (r *REPL) cmdRisk(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: risk <impact> <likelihood> <title>")
	}
	impact, ok := types.ParseLevel(args[0])
	if !ok {
		return fmt.Errorf("invalid impact %q (Low, Medium or High)", args[0])
	}
	likelihood, ok := types.ParseLevel(args[1])
	if !ok {
		return fmt.Errorf("invalid likelihood %q (Low, Medium or High)", args[1])
	}
	p, err := r.active()
	if err != nil {
		return err
	}
	pp, err := board.AddRisk(p, strings.Join(args[2:], " "), impact, likelihood)
	if err != nil {
		return err
	}
	return r.patch(pp, fmt.Sprintf("Risk added (score %d)", types.Risk{Impact: impact, Likelihood: likelihood}.Score()))
}

func (r *REPL) cmdStandup(args []string) error {
	yesterday, err := r.prompt("yesterday> ")
	if err != nil {
		return err
	}
	today, err := r.prompt("today> ")
	if err != nil {
		return err
	}
	blockers, err := r.prompt("blockers> ")
	if err != nil {
		return err
	}

	p, err := r.active()
	if err != nil {
		return err
	}
	return r.patch(board.AddStandup(p, r.now(), yesterday, today, blockers), "Stand-up saved")
}

func (r *REPL) cmdAsk(args []string) error {
	msg := strings.Join(args, " ")
	if msg == "" {
		return fmt.Errorf("usage: ask <message>")
	}
	p, err := r.active()
	if err != nil {
		return err
	}
	gray := color.New(color.FgHiBlack).SprintFunc()
	fmt.Fprintln(r.out, gray("(asking...)"))
	r.session.Send(r.ctx, msg, &p, r.app.Knowledge())
	return nil
}
