package state

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/pmc/internal/storage"
	"github.com/steveyegge/pmc/internal/storage/memory"
	"github.com/steveyegge/pmc/internal/types"
)

// seqIDs returns a generator producing p1, p2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}
}

func TestCreateProject_NamesAndActivates(t *testing.T) {
	ctx := context.Background()
	app := New(WithIDGenerator(seqIDs()))

	p1, err := app.CreateProject(ctx)
	require.NoError(t, err)
	p2, err := app.CreateProject(ctx)
	require.NoError(t, err)

	assert.Equal(t, "New Project 1", p1.Name)
	assert.Equal(t, "New Project 2", p2.Name)
	assert.Equal(t, "p2", app.ActiveID())
	assert.NotNil(t, p1.Stakeholders)
	assert.NotNil(t, p1.Tasks)
	assert.NotNil(t, p1.Risks)
	assert.NotNil(t, p1.Standups)
}

// TestPatchProject_LastWriteWins applies overlapping patches and checks that each
// field reflects only the last patch that touched it
func TestPatchProject_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	app := New(WithIDGenerator(seqIDs()))
	p, err := app.CreateProject(ctx)
	require.NoError(t, err)

	require.NoError(t, app.PatchProject(ctx, p.ID, types.PatchName("A").Merge(types.PatchGoals("g1"))))
	require.NoError(t, app.PatchProject(ctx, p.ID, types.PatchName("B")))
	require.NoError(t, app.PatchProject(ctx, p.ID, types.PatchStakeholders([]string{"x", "y"})))
	require.NoError(t, app.PatchProject(ctx, p.ID, types.PatchStakeholders([]string{"z"})))

	got, ok := app.Project(p.ID)
	require.True(t, ok)
	assert.Equal(t, "B", got.Name)
	assert.Equal(t, "g1", got.Goals)
	assert.Equal(t, []string{"z"}, got.Stakeholders)
}

func TestPatchProject_UnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	app := New()
	calls := 0
	app.Subscribe(func(context.Context, Change) error { calls++; return nil })

	assert.NoError(t, app.PatchProject(ctx, "missing", types.PatchName("x")))
	assert.Empty(t, app.Projects())
	assert.Equal(t, 0, calls, "no-op patch must not notify subscribers")
}

func TestPatchActive_NoActiveProject(t *testing.T) {
	app := New()
	assert.NoError(t, app.PatchActive(context.Background(), types.PatchName("x")))
	assert.Nil(t, app.Active())
}

// TestRemoveProject_ActivePointer checks the pointer never dangles after removal
func TestRemoveProject_ActivePointer(t *testing.T) {
	ctx := context.Background()
	app := New(WithIDGenerator(seqIDs()))
	for i := 0; i < 3; i++ {
		_, err := app.CreateProject(ctx)
		require.NoError(t, err)
	}
	require.NoError(t, app.SetActive(ctx, "p2"))

	// Removing an inactive project leaves the pointer alone
	require.NoError(t, app.RemoveProject(ctx, "p3"))
	assert.Equal(t, "p2", app.ActiveID())

	// Removing the active one selects the first remaining
	require.NoError(t, app.RemoveProject(ctx, "p2"))
	assert.Equal(t, "p1", app.ActiveID())

	require.NoError(t, app.RemoveProject(ctx, "p1"))
	assert.Equal(t, "", app.ActiveID())
	assert.Nil(t, app.Active())

	for _, id := range []string{"p1", "missing"} {
		assert.NoError(t, app.RemoveProject(ctx, id))
	}
}

func TestSetActive(t *testing.T) {
	ctx := context.Background()
	app := New(WithIDGenerator(seqIDs()))
	_, err := app.CreateProject(ctx)
	require.NoError(t, err)

	err = app.SetActive(ctx, "nope")
	assert.True(t, errors.Is(err, ErrProjectNotFound))
	assert.Equal(t, "p1", app.ActiveID())

	require.NoError(t, app.SetActive(ctx, ""))
	assert.Equal(t, "", app.ActiveID())
}

func TestReplaceProjects(t *testing.T) {
	ctx := context.Background()
	app := New(WithIDGenerator(seqIDs()))
	_, err := app.CreateProject(ctx)
	require.NoError(t, err)

	require.NoError(t, app.ReplaceProjects(ctx, []types.Project{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}))
	assert.Equal(t, "a", app.ActiveID())
	assert.Len(t, app.Projects(), 2)

	require.NoError(t, app.ReplaceProjects(ctx, nil))
	assert.Equal(t, "", app.ActiveID())
	assert.NotNil(t, app.Projects())
	assert.Empty(t, app.Projects())
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	app := New(WithIDGenerator(seqIDs()))
	p, err := app.CreateProject(ctx)
	require.NoError(t, err)
	require.NoError(t, app.PatchProject(ctx, p.ID, types.PatchStakeholders([]string{"a"})))

	got := app.Active()
	got.Stakeholders[0] = "mutated"
	got.Name = "mutated"

	again := app.Active()
	assert.Equal(t, "a", again.Stakeholders[0])
	assert.Equal(t, "New Project 1", again.Name)
}

func TestSubscriberErrorReturned(t *testing.T) {
	ctx := context.Background()
	app := New()
	boom := errors.New("disk full")
	app.Subscribe(func(context.Context, Change) error { return boom })

	err := app.SetKnowledge(ctx, "k")
	assert.True(t, errors.Is(err, boom))
	// In-memory update stands
	assert.Equal(t, "k", app.Knowledge())
}

// TestPersister_WritesOnlyChangedKeys counts store writes per key
func TestPersister_WritesOnlyChangedKeys(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	app, err := Load(ctx, store, WithIDGenerator(seqIDs()))
	require.NoError(t, err)

	require.NoError(t, app.SetKnowledge(ctx, "glossary"))
	assert.Equal(t, 1, store.Writes(storage.KeyKnowledge))
	assert.Equal(t, 0, store.Writes(storage.KeyProjects))
	assert.Equal(t, 0, store.Writes(storage.KeyActive))

	p, err := app.CreateProject(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Writes(storage.KeyProjects))
	assert.Equal(t, 1, store.Writes(storage.KeyActive))

	require.NoError(t, app.PatchProject(ctx, p.ID, types.PatchName("Launch")))
	assert.Equal(t, 2, store.Writes(storage.KeyProjects))
	assert.Equal(t, 1, store.Writes(storage.KeyActive))
	assert.Equal(t, 1, store.Writes(storage.KeyKnowledge))
}

func TestLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	app, err := Load(ctx, store, WithIDGenerator(seqIDs()))
	require.NoError(t, err)

	_, err = app.CreateProject(ctx)
	require.NoError(t, err)
	p2, err := app.CreateProject(ctx)
	require.NoError(t, err)
	require.NoError(t, app.PatchProject(ctx, p2.ID, types.PatchName("Launch").Merge(types.PatchGoals("Ship v1"))))
	require.NoError(t, app.SetKnowledge(ctx, "notes"))

	reloaded, err := Load(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, app.Projects(), reloaded.Projects())
	assert.Equal(t, "p2", reloaded.ActiveID())
	assert.Equal(t, "notes", reloaded.Knowledge())
}

// TestLoad_CorruptValuesFallBack verifies unreadable documents are silently replaced
// by empty defaults rather than failing startup
func TestLoad_CorruptValuesFallBack(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, storage.KeyProjects, `{not json`))
	require.NoError(t, store.Set(ctx, storage.KeyActive, `42`))
	require.NoError(t, store.Set(ctx, storage.KeyKnowledge, `[1,2]`))

	app, err := Load(ctx, store)
	require.NoError(t, err)
	assert.NotNil(t, app.Projects())
	assert.Empty(t, app.Projects())
	assert.Equal(t, "", app.ActiveID())
	assert.Equal(t, "", app.Knowledge())
}

func TestLoad_NormalizesAndFixesDanglingActive(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, storage.KeyProjects,
		`[{"id":"a","name":"A","tasks":[{"id":"t1","title":"x","phase":"Bogus","status":"todo"}]}]`))
	require.NoError(t, store.Set(ctx, storage.KeyActive, `"gone"`))

	app, err := Load(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "a", app.ActiveID())

	p := app.Active()
	require.NotNil(t, p)
	assert.Equal(t, types.PhaseInitiation, p.Tasks[0].Phase)
	assert.NotNil(t, p.Risks)
	assert.NotNil(t, p.Stakeholders)
}

func TestLoad_StoreFailure(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.Close())

	_, err := Load(context.Background(), store)
	assert.Error(t, err)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "projects|active", (KeyProjects | KeyActive).String())
	assert.Equal(t, "knowledge", KeyKnowledge.String())
	assert.Equal(t, "", Key(0).String())
}
