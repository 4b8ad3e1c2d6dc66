package types

// Task is a unit of planned work within a project phase
type Task struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Phase  Phase      `json:"phase"`
	Status TaskStatus `json:"status"`
	Start  string     `json:"start"`
	Due    string     `json:"due"` // no ordering against Start is enforced
}

// HasDates reports whether both start and due are filled in
func (t Task) HasDates() bool {
	return t.Start != "" && t.Due != ""
}

// Phase is one of the five fixed project-lifecycle buckets
type Phase string

const (
	PhaseInitiation Phase = "Initiation"
	PhasePlanning   Phase = "Planning"
	PhaseExecution  Phase = "Execution"
	PhaseMonitoring Phase = "Monitoring"
	PhaseClosure    Phase = "Closure"
)

// Phases lists every phase in lifecycle order
var Phases = []Phase{PhaseInitiation, PhasePlanning, PhaseExecution, PhaseMonitoring, PhaseClosure}

// IsValid checks if the phase value is valid
func (p Phase) IsValid() bool {
	switch p {
	case PhaseInitiation, PhasePlanning, PhaseExecution, PhaseMonitoring, PhaseClosure:
		return true
	}
	return false
}

// ParsePhase maps s onto the closed phase set.
// Anything unrecognized falls into Initiation, the default bucket.
func ParsePhase(s string) Phase {
	if p := Phase(s); p.IsValid() {
		return p
	}
	return PhaseInitiation
}

// TaskStatus is where a task is in its own small lifecycle
type TaskStatus string

const (
	StatusTodo  TaskStatus = "todo"
	StatusDoing TaskStatus = "doing"
	StatusDone  TaskStatus = "done"
)

// IsValid checks if the status value is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}
