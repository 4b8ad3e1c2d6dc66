package repl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/pmc/internal/assistant"
	"github.com/steveyegge/pmc/internal/board"
	"github.com/steveyegge/pmc/internal/state"
)

type echoTransport struct{}

func (echoTransport) Send(_ context.Context, req assistant.Request) (string, error) {
	return "echo: " + req.Message + " / " + req.Context.Name, nil
}

func newTestREPL(t *testing.T, transport assistant.Transport) (*REPL, *state.App, *bytes.Buffer) {
	t.Helper()
	n := 0
	app := state.New(state.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}))
	out := &bytes.Buffer{}
	bridge := assistant.NewBridge(transport, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r, err := New(&Config{App: app, Bridge: bridge, Out: out})
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2025, 3, 4, 23, 30, 0, 0, time.UTC) }
	return r, app, out
}

func run(t *testing.T, r *REPL, lines ...string) {
	t.Helper()
	for _, line := range lines {
		require.NoError(t, r.processInput(line), line)
	}
}

func TestNew_RequiresApp(t *testing.T) {
	_, err := New(&Config{})
	assert.Error(t, err)
}

// TestGuidedWalk drives a fresh project through all eight steps
func TestGuidedWalk(t *testing.T) {
	r, app, out := newTestREPL(t, nil)
	r.prompt = scripted("wrote spec", "review", "")

	run(t, r, "next")
	assert.Equal(t, 1, r.engine.Current(), "step 1 needs goals")
	assert.Contains(t, out.String(), "Not yet:")

	run(t, r,
		"name Launch",
		"goals Ship v1",
		"next",
		"start 2025-01-01",
		"end 2025-03-31",
		"next",
		"stakeholders PM,  Eng , ,Design",
		"next",
		"templates",
		"next",
		"dates 1 2025-01-02 2025-01-03",
		"next",
		"risk high medium Vendor API late",
		"next",
		"standup",
		"next",
	)
	assert.Equal(t, 8, r.engine.Current())
	assert.True(t, r.engine.IsFinal())
	assert.Contains(t, out.String(), "pmc task list")

	p := app.Active()
	require.NotNil(t, p)
	assert.Equal(t, "Launch", p.Name)
	assert.Equal(t, "Ship v1", p.Goals)
	assert.Equal(t, "2025-01-01", p.Start)
	assert.Equal(t, "2025-03-31", p.End)
	assert.Equal(t, []string{"PM", "Eng", "Design"}, p.Stakeholders)
	require.Len(t, p.Tasks, len(board.TemplatesGuided))
	assert.Equal(t, "2025-01-02", p.Tasks[0].Start)
	assert.Equal(t, "2025-01-03", p.Tasks[0].Due)
	require.Len(t, p.Risks, 1)
	assert.Equal(t, 6, p.Risks[0].Score())
	require.Len(t, p.Standups, 1)
	assert.Equal(t, "2025-03-04", p.Standups[0].Date)
	assert.Equal(t, "wrote spec", p.Standups[0].Yesterday)
	assert.Equal(t, "", p.Standups[0].Blockers)

	out.Reset()
	run(t, r, "next")
	assert.Contains(t, out.String(), "Setup is complete")

	run(t, r, "back")
	assert.Equal(t, 7, r.engine.Current())
}

func TestCreatesProjectOnFirstEdit(t *testing.T) {
	r, app, _ := newTestREPL(t, nil)
	assert.Nil(t, app.Active())

	run(t, r, "name Launch")
	p := app.Active()
	require.NotNil(t, p)
	assert.Equal(t, "Launch", p.Name)
	assert.Len(t, app.Projects(), 1)
}

func TestCommandErrors(t *testing.T) {
	r, _, _ := newTestREPL(t, nil)

	tests := []string{
		"name",
		"goals",
		"start 2025/01/01",
		"end",
		"dates 1 2025-01-01 2025-01-02", // no tasks yet
		"dates x",
		"risk extreme low Title",
		"risk low low",
		"back",
	}
	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			assert.Error(t, r.processInput(line))
		})
	}
}

func TestDatesWarnsOnReversedOrder(t *testing.T) {
	r, app, out := newTestREPL(t, nil)
	run(t, r, "templates", "dates 2 2025-02-10 2025-02-01")

	assert.Contains(t, out.String(), "Warning:")
	assert.Equal(t, "2025-02-10", app.Active().Tasks[1].Start, "dates are stored as entered")

	run(t, r, "dates 2 - -")
	assert.False(t, app.Active().Tasks[1].HasDates())
}

func TestClearTasks(t *testing.T) {
	r, app, _ := newTestREPL(t, nil)
	run(t, r, "templates", "clear-tasks")
	assert.Empty(t, app.Active().Tasks)
}

// TestAsk_UnknownInputGoesToAssistant checks free text and 'ask' both reach the bridge
func TestAsk_UnknownInputGoesToAssistant(t *testing.T) {
	r, _, out := newTestREPL(t, echoTransport{})
	run(t, r, "name Launch")

	run(t, r, "how do I start?")
	r.session.Wait()
	assert.Contains(t, out.String(), "echo: how do I start? / Launch")

	run(t, r, "ask what now")
	r.session.Wait()
	assert.Contains(t, out.String(), "echo: what now / Launch")
}

func TestAsk_OfflineWithoutTransport(t *testing.T) {
	r, _, out := newTestREPL(t, nil)
	run(t, r, "ask any risks?")
	r.session.Wait()
	assert.Contains(t, out.String(), assistant.Offline("risk"))
}

func TestExit(t *testing.T) {
	r, _, _ := newTestREPL(t, nil)
	assert.ErrorIs(t, r.processInput("quit"), errExit)
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[--------------------]", progressBar(0))
	assert.Equal(t, "[##########----------]", progressBar(50))
	assert.Equal(t, "[####################]", progressBar(100))
}

// scripted returns a prompt func that answers from lines in order
func scripted(lines ...string) func(string) (string, error) {
	return func(string) (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		line := lines[0]
		lines = lines[1:]
		return line, nil
	}
}
