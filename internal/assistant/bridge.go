// Package assistant asks the chat endpoint about the active project and
// falls back to canned offline tips whenever that fails.
package assistant

import (
	"context"
	"log/slog"
	"time"

	"github.com/steveyegge/pmc/internal/chatapi"
	"github.com/steveyegge/pmc/internal/types"
)

// Timeout bounds every outbound request
const Timeout = 9 * time.Second

// ProjectContext is the read-only project snapshot sent with a question
type ProjectContext struct {
	Name         string       `json:"name"`
	Goals        string       `json:"goals"`
	Stakeholders []string     `json:"stakeholders"`
	Tasks        []types.Task `json:"tasks"`
	Risks        []types.Risk `json:"risks"`
}

// Request is what the bridge sends. Context is null when no project is active.
type Request struct {
	Message   string          `json:"message"`
	Context   *ProjectContext `json:"context"`
	Knowledge string          `json:"knowledge"`
}

// NewRequest snapshots p (which may be nil) into a request
func NewRequest(message string, p *types.Project, knowledge string) Request {
	req := Request{Message: message, Knowledge: knowledge}
	if p != nil {
		c := p.Clone()
		req.Context = &ProjectContext{
			Name:         c.Name,
			Goals:        c.Goals,
			Stakeholders: c.Stakeholders,
			Tasks:        c.Tasks,
			Risks:        c.Risks,
		}
	}
	return req
}

// Transport delivers a request and returns the reply text
type Transport interface {
	Send(ctx context.Context, req Request) (string, error)
}

// Bridge sends questions through a Transport with a fixed timeout
type Bridge struct {
	transport Transport
	timeout   time.Duration
	logger    *slog.Logger
}

// NewBridge creates a Bridge. A nil transport answers everything offline.
func NewBridge(t Transport, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{transport: t, timeout: Timeout, logger: logger}
}

// Ask returns the provider's reply, or an offline tip on any failure.
// It always returns a non-empty string.
func (b *Bridge) Ask(ctx context.Context, message string, p *types.Project, knowledge string) string {
	return b.Send(ctx, NewRequest(message, p, knowledge))
}

// Send is Ask for an already built request
func (b *Bridge) Send(ctx context.Context, req Request) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("assistant transport panicked", "panic", r)
			reply = Offline(req.Message)
		}
	}()

	if b.transport == nil {
		return Offline(req.Message)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	text, err := b.transport.Send(ctx, req)
	if err != nil {
		b.logger.Debug("assistant falling back to offline reply", "error", err)
		return Offline(req.Message)
	}
	if text == "" {
		return chatapi.NoReply
	}
	return text
}
