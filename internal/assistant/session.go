package assistant

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/steveyegge/pmc/internal/types"
)

// Roles in a transcript
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one transcript entry
type Message struct {
	RequestID string
	Role      string
	Text      string
}

// Session is a chat transcript with at most one live request.
//
// Every Send starts its own request. A newer Send cancels the one still in
// flight and its reply is dropped, so replies can't land out of order.
type Session struct {
	bridge  *Bridge
	onReply func(Message)

	mu         sync.Mutex
	transcript []Message
	currentID  string
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewSession creates a session; onReply (optional) is called for each
// accepted assistant reply
func NewSession(b *Bridge, onReply func(Message)) *Session {
	return &Session{bridge: b, onReply: onReply}
}

// Send appends the user message and asks in the background.
// Blank messages are ignored and return "".
func (s *Session) Send(ctx context.Context, message string, p *types.Project, knowledge string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return ""
	}
	req := NewRequest(message, p, knowledge)
	id := uuid.New().String()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	s.currentID = id
	s.cancel = cancel
	s.transcript = append(s.transcript, Message{RequestID: id, Role: RoleUser, Text: message})
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()
		reply := s.bridge.Send(reqCtx, req)
		s.deliver(id, reply)
	}()
	return id
}

func (s *Session) deliver(id, reply string) {
	s.mu.Lock()
	if id != s.currentID {
		s.mu.Unlock()
		s.bridge.logger.Debug("dropping superseded reply", "request_id", id)
		return
	}
	msg := Message{RequestID: id, Role: RoleAssistant, Text: reply}
	s.transcript = append(s.transcript, msg)
	s.currentID = ""
	s.cancel = nil
	s.mu.Unlock()

	if s.onReply != nil {
		s.onReply(msg)
	}
}

// Pending returns the id of the request in flight, or ""
func (s *Session) Pending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Wait blocks until every started request has finished
func (s *Session) Wait() {
	s.wg.Wait()
}

// Transcript returns a copy of all messages so far
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.transcript...)
}
