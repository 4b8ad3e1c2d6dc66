// Package state owns the application state: every project, the active selection
// and the global knowledge text.
//
// App is created once by the composition root and passed to whatever needs it.
// Mutations apply in memory and then synchronously notify subscribers; the
// Persister subscriber is what writes state to the Store.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/steveyegge/pmc/internal/types"
)

// ErrProjectNotFound is returned when an operation names an unknown project
var ErrProjectNotFound = errors.New("project not found")

// Key identifies one independently persisted part of the state
type Key int

const (
	KeyProjects Key = 1 << iota
	KeyActive
	KeyKnowledge
)

// Has reports whether k includes other
func (k Key) Has(other Key) bool { return k&other != 0 }

func (k Key) String() string {
	var s string
	for _, kv := range []struct {
		k    Key
		name string
	}{{KeyProjects, "projects"}, {KeyActive, "active"}, {KeyKnowledge, "knowledge"}} {
		if k.Has(kv.k) {
			if s != "" {
				s += "|"
			}
			s += kv.name
		}
	}
	return s
}

// Snapshot is an immutable copy of the whole state
type Snapshot struct {
	Projects  []types.Project
	ActiveID  string
	Knowledge string
}

// Change describes one applied mutation
type Change struct {
	Keys     Key
	Snapshot Snapshot
}

// Subscriber is notified synchronously after every mutation
type Subscriber func(ctx context.Context, c Change) error

// App is the explicit application state object
type App struct {
	writeMu     sync.Mutex // held across a mutation and its notifications
	mu          sync.RWMutex
	projects    []types.Project
	activeID    string
	knowledge   string
	subscribers []Subscriber
	newID       func() string
}

// Option configures an App
type Option func(*App)

// WithIDGenerator replaces the id generator (tests use deterministic ids)
func WithIDGenerator(fn func() string) Option {
	return func(a *App) { a.newID = fn }
}

// New returns an empty App
func New(opts ...Option) *App {
	a := &App{
		projects: []types.Project{},
		newID:    types.NewID,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Subscribe registers fn for all future changes
func (a *App) Subscribe(fn Subscriber) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subscribers = append(a.subscribers, fn)
}

// Projects returns a copy of every project in collection order
func (a *App) Projects() []types.Project {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cloneProjects(a.projects)
}

// Project returns a copy of the project with id
func (a *App) Project(id string) (types.Project, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if i := a.indexOf(id); i >= 0 {
		return a.projects[i].Clone(), true
	}
	return types.Project{}, false
}

// ActiveID returns the active project id, or "" when none is selected
func (a *App) ActiveID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.activeID
}

// Active returns a copy of the active project, or nil
func (a *App) Active() *types.Project {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if i := a.indexOf(a.activeID); i >= 0 {
		p := a.projects[i].Clone()
		return &p
	}
	return nil
}

// Knowledge returns the global knowledge text
func (a *App) Knowledge() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.knowledge
}

// Snapshot returns a copy of the whole state
func (a *App) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshotLocked()
}

// CreateProject appends a project with defaulted empty fields named
// "New Project N" (N = count + 1) and makes it active
func (a *App) CreateProject(ctx context.Context) (types.Project, error) {
	var created types.Project
	err := a.mutate(ctx, KeyProjects|KeyActive, func() {
		created = types.Project{
			ID:           a.newID(),
			Name:         fmt.Sprintf("New Project %d", len(a.projects)+1),
			Stakeholders: []string{},
			Tasks:        []types.Task{},
			Risks:        []types.Risk{},
			Standups:     []types.Standup{},
		}
		a.projects = append(a.projects, created)
		a.activeID = created.ID
	})
	return created.Clone(), err
}

// PatchProject replaces the patched top-level fields of project id.
// An unknown id is a no-op. Nothing is validated here.
func (a *App) PatchProject(ctx context.Context, id string, patch types.ProjectPatch) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	a.mu.Lock()
	i := a.indexOf(id)
	if i < 0 || patch.IsEmpty() {
		a.mu.Unlock()
		return nil
	}
	patch.Apply(&a.projects[i])
	return a.commitLocked(ctx, KeyProjects)
}

// PatchActive patches the active project; no-op when nothing is active
func (a *App) PatchActive(ctx context.Context, patch types.ProjectPatch) error {
	return a.PatchProject(ctx, a.ActiveID(), patch)
}

// RemoveProject deletes project id. If it was active, the first remaining
// project becomes active, or nothing when the collection is now empty.
func (a *App) RemoveProject(ctx context.Context, id string) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	a.mu.Lock()
	i := a.indexOf(id)
	if i < 0 {
		a.mu.Unlock()
		return nil
	}
	a.projects = append(a.projects[:i:i], a.projects[i+1:]...)
	keys := KeyProjects
	if a.activeID == id {
		a.activeID = firstID(a.projects)
		keys |= KeyActive
	}
	return a.commitLocked(ctx, keys)
}

// SetActive selects project id; "" clears the selection
func (a *App) SetActive(ctx context.Context, id string) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	a.mu.Lock()
	if id != "" && a.indexOf(id) < 0 {
		a.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	a.activeID = id
	return a.commitLocked(ctx, KeyActive)
}

// SetKnowledge replaces the global knowledge text
func (a *App) SetKnowledge(ctx context.Context, text string) error {
	return a.mutate(ctx, KeyKnowledge, func() {
		a.knowledge = text
	})
}

// ReplaceProjects swaps in a whole new collection (import). The first project
// becomes active, or nothing if the collection is empty.
func (a *App) ReplaceProjects(ctx context.Context, projects []types.Project) error {
	return a.mutate(ctx, KeyProjects|KeyActive, func() {
		a.projects = cloneProjects(projects)
		if a.projects == nil {
			a.projects = []types.Project{}
		}
		a.activeID = firstID(a.projects)
	})
}

// restore installs loaded state without notifying subscribers
func (a *App) restore(projects []types.Project, activeID, knowledge string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.projects = projects
	a.knowledge = knowledge
	a.activeID = activeID
	if a.indexOf(activeID) < 0 {
		a.activeID = firstID(projects)
	}
}

func (a *App) mutate(ctx context.Context, keys Key, fn func()) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	a.mu.Lock()
	fn()
	return a.commitLocked(ctx, keys)
}

// commitLocked must be called with a.mu held; it releases it before
// notifying subscribers so they may read the App.
func (a *App) commitLocked(ctx context.Context, keys Key) error {
	change := Change{Keys: keys, Snapshot: a.snapshotLocked()}
	subs := append([]Subscriber(nil), a.subscribers...)
	a.mu.Unlock()

	var errs []error
	for _, fn := range subs {
		if err := fn(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) snapshotLocked() Snapshot {
	return Snapshot{
		Projects:  cloneProjects(a.projects),
		ActiveID:  a.activeID,
		Knowledge: a.knowledge,
	}
}

func (a *App) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range a.projects {
		if a.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func firstID(projects []types.Project) string {
	if len(projects) == 0 {
		return ""
	}
	return projects[0].ID
}

func cloneProjects(in []types.Project) []types.Project {
	if in == nil {
		return nil
	}
	out := make([]types.Project, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
