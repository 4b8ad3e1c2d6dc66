package types

import (
	"github.com/google/uuid"
)

// Project is a single tracked project and everything planned for it
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Start        string    `json:"start"`
	End          string    `json:"end"`
	Goals        string    `json:"goals"`
	Stakeholders []string  `json:"stakeholders"`
	Tasks        []Task    `json:"tasks"`
	Risks        []Risk    `json:"risks"`
	Standups     []Standup `json:"standups"` // newest first
}

// Normalize prepares a project that came from outside the process (store or import).
// Nil lists become empty lists and task phases are coerced into the closed Phase set.
func (p *Project) Normalize() {
	if p.Stakeholders == nil {
		p.Stakeholders = []string{}
	}
	if p.Tasks == nil {
		p.Tasks = []Task{}
	}
	if p.Risks == nil {
		p.Risks = []Risk{}
	}
	if p.Standups == nil {
		p.Standups = []Standup{}
	}
	for i := range p.Tasks {
		p.Tasks[i].Phase = ParsePhase(string(p.Tasks[i].Phase))
	}
}

// Clone returns a deep copy so callers can't alias the model's slices
func (p Project) Clone() Project {
	c := p
	c.Stakeholders = cloneSlice(p.Stakeholders)
	c.Tasks = cloneSlice(p.Tasks)
	c.Risks = cloneSlice(p.Risks)
	c.Standups = cloneSlice(p.Standups)
	return c
}

// ProjectPatch replaces whole top-level fields of a Project.
// A nil field is left untouched; there is no deeper merge.
type ProjectPatch struct {
	Name         *string
	Start        *string
	End          *string
	Goals        *string
	Stakeholders []string
	Tasks        []Task
	Risks        []Risk
	Standups     []Standup

	// Slices can't use nil to mean "untouched" and also allow clearing,
	// so list fields are applied when their Set flag is true.
	SetStakeholders bool
	SetTasks        bool
	SetRisks        bool
	SetStandups     bool
}

// Apply writes the patched fields into p
func (pp ProjectPatch) Apply(p *Project) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Start != nil {
		p.Start = *pp.Start
	}
	if pp.End != nil {
		p.End = *pp.End
	}
	if pp.Goals != nil {
		p.Goals = *pp.Goals
	}
	if pp.SetStakeholders {
		p.Stakeholders = nonNil(pp.Stakeholders)
	}
	if pp.SetTasks {
		p.Tasks = nonNil(pp.Tasks)
	}
	if pp.SetRisks {
		p.Risks = nonNil(pp.Risks)
	}
	if pp.SetStandups {
		p.Standups = nonNil(pp.Standups)
	}
}

// IsEmpty reports whether the patch touches no field
func (pp ProjectPatch) IsEmpty() bool {
	return pp.Name == nil && pp.Start == nil && pp.End == nil && pp.Goals == nil &&
		!pp.SetStakeholders && !pp.SetTasks && !pp.SetRisks && !pp.SetStandups
}

// Merge layers other on top of pp; fields set in other win
func (pp ProjectPatch) Merge(other ProjectPatch) ProjectPatch {
	out := pp
	if other.Name != nil {
		out.Name = other.Name
	}
	if other.Start != nil {
		out.Start = other.Start
	}
	if other.End != nil {
		out.End = other.End
	}
	if other.Goals != nil {
		out.Goals = other.Goals
	}
	if other.SetStakeholders {
		out.Stakeholders, out.SetStakeholders = other.Stakeholders, true
	}
	if other.SetTasks {
		out.Tasks, out.SetTasks = other.Tasks, true
	}
	if other.SetRisks {
		out.Risks, out.SetRisks = other.Risks, true
	}
	if other.SetStandups {
		out.Standups, out.SetStandups = other.Standups, true
	}
	return out
}

// Patch builders

func PatchName(name string) ProjectPatch   { return ProjectPatch{Name: &name} }
func PatchGoals(goals string) ProjectPatch { return ProjectPatch{Goals: &goals} }
func PatchStart(start string) ProjectPatch { return ProjectPatch{Start: &start} }
func PatchEnd(end string) ProjectPatch     { return ProjectPatch{End: &end} }

func PatchStakeholders(s []string) ProjectPatch {
	return ProjectPatch{Stakeholders: s, SetStakeholders: true}
}

func PatchTasks(t []Task) ProjectPatch {
	return ProjectPatch{Tasks: t, SetTasks: true}
}

func PatchRisks(r []Risk) ProjectPatch {
	return ProjectPatch{Risks: r, SetRisks: true}
}

func PatchStandups(s []Standup) ProjectPatch {
	return ProjectPatch{Standups: s, SetStandups: true}
}

// NewID returns a short random opaque identifier.
// Uniqueness is only as good as 32 random bits; collisions are not retried.
func NewID() string {
	return uuid.New().String()[:8]
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
