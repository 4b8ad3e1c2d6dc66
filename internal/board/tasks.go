// Package board holds the derived views and edits behind the planning,
// timeline, risk, stand-up and knowledge boards.
//
// Nothing here owns state. View functions read a project; edit functions
// return a types.ProjectPatch that the caller applies through state.App.
package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/steveyegge/pmc/internal/types"
)

var (
	// ErrEmptyTitle is returned when a task or risk is added without a title
	ErrEmptyTitle = errors.New("title is required")

	// ErrNotFound is returned when a task or risk id is not in the project
	ErrNotFound = errors.New("not found")
)

// newID is swapped in tests for deterministic ids
var newID = types.NewID

// Template is a task that a template set creates
type Template struct {
	Title string
	Phase types.Phase
}

// TemplatesGuided is the task set offered by the guided step
var TemplatesGuided = []Template{
	{"Kickoff（キックオフMTG）", types.PhaseInitiation},
	{"目的と成功基準の合意", types.PhaseInitiation},
	{"WBSのたたき作成", types.PhasePlanning},
	{"スケジュール作成と担当割り当て", types.PhasePlanning},
	{"デイリースタンドアップ開始", types.PhaseExecution},
	{"週次ステータス報告", types.PhaseMonitoring},
	{"受け入れテスト・リリース判定", types.PhaseClosure},
}

// TemplatesPlanning is the task set offered by the planning board
var TemplatesPlanning = []Template{
	{"Kickoff meeting", types.PhaseInitiation},
	{"Define scope & success criteria", types.PhaseInitiation},
	{"Create WBS & estimates", types.PhasePlanning},
	{"Build schedule & assign owners", types.PhasePlanning},
	{"Stand-ups begin", types.PhaseExecution},
	{"Weekly status report", types.PhaseMonitoring},
	{"UAT & acceptance", types.PhaseClosure},
}

// PhaseGroup is one bucket of the planning board
type PhaseGroup struct {
	Phase types.Phase
	Tasks []types.Task
}

// GroupByPhase buckets tasks into the five phases, in lifecycle order.
// Phases were coerced when the project was loaded, so an unknown phase here
// only comes from in-process construction and still lands in Initiation.
func GroupByPhase(tasks []types.Task) []PhaseGroup {
	groups := make([]PhaseGroup, len(types.Phases))
	index := make(map[types.Phase]int, len(types.Phases))
	for i, ph := range types.Phases {
		groups[i] = PhaseGroup{Phase: ph, Tasks: []types.Task{}}
		index[ph] = i
	}
	for _, t := range tasks {
		i, ok := index[t.Phase]
		if !ok {
			i = index[types.PhaseInitiation]
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	return groups
}

// AddTask appends a todo task with no dates
func AddTask(p types.Project, title string, phase types.Phase) (types.ProjectPatch, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return types.ProjectPatch{}, ErrEmptyTitle
	}
	t := newTask(title, types.ParsePhase(string(phase)))
	return types.PatchTasks(append(cloneTasks(p.Tasks), t)), nil
}

// AddTemplates appends one new task per template
func AddTemplates(p types.Project, set []Template) types.ProjectPatch {
	tasks := cloneTasks(p.Tasks)
	for _, tpl := range set {
		tasks = append(tasks, newTask(tpl.Title, tpl.Phase))
	}
	return types.PatchTasks(tasks)
}

// SetTaskStatus changes one task's status
func SetTaskStatus(p types.Project, id string, status types.TaskStatus) (types.ProjectPatch, error) {
	if !status.IsValid() {
		return types.ProjectPatch{}, fmt.Errorf("invalid status %q", status)
	}
	return updateTask(p, id, func(t *types.Task) { t.Status = status })
}

// SetTaskDates replaces one task's start and due dates. No ordering is
// enforced between them; see DateOrderWarning.
func SetTaskDates(p types.Project, id, start, due string) (types.ProjectPatch, error) {
	return updateTask(p, id, func(t *types.Task) {
		t.Start = start
		t.Due = due
	})
}

// RemoveTask deletes one task
func RemoveTask(p types.Project, id string) (types.ProjectPatch, error) {
	tasks := make([]types.Task, 0, len(p.Tasks))
	found := false
	for _, t := range p.Tasks {
		if t.ID == id {
			found = true
			continue
		}
		tasks = append(tasks, t)
	}
	if !found {
		return types.ProjectPatch{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return types.PatchTasks(tasks), nil
}

// ClearTasks removes every task
func ClearTasks() types.ProjectPatch {
	return types.PatchTasks([]types.Task{})
}

// DateOrderWarning returns a message when due is before start, or "" otherwise.
// It is informational only; the dates are stored as entered.
func DateOrderWarning(t types.Task) string {
	if t.HasDates() && t.Due < t.Start {
		return fmt.Sprintf("due %s is before start %s", t.Due, t.Start)
	}
	return ""
}

func newTask(title string, phase types.Phase) types.Task {
	return types.Task{
		ID:     newID(),
		Title:  title,
		Phase:  phase,
		Status: types.StatusTodo,
	}
}

func updateTask(p types.Project, id string, fn func(*types.Task)) (types.ProjectPatch, error) {
	tasks := cloneTasks(p.Tasks)
	for i := range tasks {
		if tasks[i].ID == id {
			fn(&tasks[i])
			return types.PatchTasks(tasks), nil
		}
	}
	return types.ProjectPatch{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
}

func cloneTasks(in []types.Task) []types.Task {
	return append(make([]types.Task, 0, len(in)+1), in...)
}
