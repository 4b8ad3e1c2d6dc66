package chatapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider records prompts and returns canned results
type fakeProvider struct {
	mu     sync.Mutex
	reply  string
	err    error
	system string
	user   string
	calls  int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.system, f.user = system, user
	return f.reply, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, p Provider, opts ...ServiceOption) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	svc := NewService(p, append([]ServiceOption{WithMetrics(m), WithLogger(quietLogger())}, opts...)...)
	srv := httptest.NewServer(NewMux(NewHandler(svc, m, quietLogger()), reg))
	t.Cleanup(srv.Close)
	return srv, reg
}

func TestUserPrompt(t *testing.T) {
	knowledge := "RACI basics"
	got := UserPrompt(Request{
		Message:   "リスクは？",
		Context:   json.RawMessage(`{"name":"Launch","tasks":[]}`),
		Knowledge: &knowledge,
	})
	want := "User message: リスクは？\n\n" +
		"Context (project): {\n  \"name\": \"Launch\",\n  \"tasks\": []\n}\n\n" +
		"Knowledge:\nRACI basics"
	assert.Equal(t, want, got)
}

func TestUserPrompt_Defaults(t *testing.T) {
	got := UserPrompt(Request{Context: json.RawMessage("null")})
	assert.Equal(t, "User message: \n\nContext (project): {}\n\nKnowledge:\n(none)", got)

	empty := ""
	got = UserPrompt(Request{Knowledge: &empty})
	assert.True(t, strings.HasSuffix(got, "Knowledge:\n"), "an empty knowledge string is kept as is")
}

func TestSystemPrompt(t *testing.T) {
	assert.Equal(t,
		"あなたは初心者PMを支援する日本語アシスタントです。 用語はやさしく、手順は箇条書きで、具体例も添えて説明します。 提供された Knowledge を優先して参照し、不足は断言せず質問します。",
		SystemPrompt)
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Request{}, req)

	req, err = DecodeRequest(strings.NewReader(`{"message":"hi","context":null,"knowledge":"k"}`))
	require.NoError(t, err)
	assert.Equal(t, "hi", req.Message)
	require.NotNil(t, req.Knowledge)
	assert.Equal(t, "k", *req.Knowledge)

	_, err = DecodeRequest(strings.NewReader(`{"message":`))
	assert.Error(t, err)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	p := &fakeProvider{reply: "unused"}
	srv, reg := newTestServer(t, p)

	resp, err := http.Get(srv.URL + "/api/chat")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]string{"error": "Method Not Allowed"}, body)
	assert.Equal(t, 0, p.calls)

	m, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, m)
}

func TestHandler_OK(t *testing.T) {
	p := &fakeProvider{reply: "まずはキックオフを。"}
	srv, _ := newTestServer(t, p)

	resp, err := http.Post(srv.URL+"/api/chat", "application/json",
		strings.NewReader(`{"message":"何から始める？","context":{"name":"Launch"},"knowledge":"k"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "まずはキックオフを。", body.Reply)
	assert.Equal(t, SystemPrompt, p.system)
	assert.Contains(t, p.user, "User message: 何から始める？")
	assert.Contains(t, p.user, "\"name\": \"Launch\"")
}

func TestHandler_EmptyReply(t *testing.T) {
	srv, _ := newTestServer(t, &fakeProvider{reply: ""})

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, NoReply, body.Reply)
}

// TestHandler_Failures verifies provider detail never reaches the caller
func TestHandler_Failures(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		body     string
	}{
		{"provider error", &fakeProvider{err: errors.New("upstream 429: secret detail")}, `{"message":"x"}`},
		{"malformed body", &fakeProvider{reply: "unused"}, `{"message":`},
		{"no provider", nil, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, reg := newTestServer(t, tt.provider)

			resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.NotContains(t, string(raw), "secret")

			var body Response
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, ServerErrorReply, body.Reply)

			count, err := testutil.GatherAndCount(reg, "pmc_chat_requests_total")
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, &fakeProvider{reply: "ok"})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `pmc_chat_requests_total{outcome="ok"} 1`)
	assert.Contains(t, string(raw), "pmc_chat_provider_duration_seconds")
}

func TestCircuitBreakerTransitions(t *testing.T) {
	cb := NewCircuitBreaker(2, 1, 20*time.Millisecond)
	var seen []CircuitState
	cb.OnStateChange(func(s CircuitState) { seen = append(seen, s) })

	assert.NoError(t, cb.Allow())
	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.GetState())
	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.GetState())
	assert.ErrorIs(t, cb.Allow(), ErrCircuitOpen)

	time.Sleep(30 * time.Millisecond)
	assert.NoError(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.GetState())

	// A failed probe reopens
	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.GetState())

	time.Sleep(30 * time.Millisecond)
	assert.NoError(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.GetState())

	state, failures, successes := cb.GetMetrics()
	assert.Equal(t, CircuitClosed, state)
	assert.Equal(t, 0, failures)
	assert.Equal(t, 0, successes)
	assert.Equal(t, []CircuitState{CircuitOpen, CircuitHalfOpen, CircuitOpen, CircuitHalfOpen, CircuitClosed}, seen)
}

func TestCircuitStateStringer(t *testing.T) {
	assert.Equal(t, "CLOSED", CircuitClosed.String())
	assert.Equal(t, "OPEN", CircuitOpen.String())
	assert.Equal(t, "HALF_OPEN", CircuitHalfOpen.String())
	assert.Equal(t, "UNKNOWN", CircuitState(9).String())
}

// TestService_BreakerFailsFast checks the provider is not called while open
func TestService_BreakerFailsFast(t *testing.T) {
	p := &fakeProvider{err: errors.New("down")}
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	svc := NewService(p, WithBreaker(NewCircuitBreaker(1, 1, time.Hour)), WithMetrics(m), WithLogger(quietLogger()))

	_, err := svc.Reply(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 1, p.calls)

	_, err = svc.Reply(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 1, p.calls, "open circuit must not reach the provider")
	assert.Equal(t, float64(CircuitOpen), testutil.ToFloat64(m.circuitState))
}

func TestOpenAIProvider(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":0,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"hello"}}]}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", "", openaiopt.WithBaseURL(srv.URL+"/"))
	reply, err := p.Complete(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.Equal(t, 0.3, got["temperature"])

	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestOpenAIProvider_ErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider("k", "", openaiopt.WithBaseURL(srv.URL+"/"))
	_, err := p.Complete(context.Background(), "s", "u")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestAnthropicProvider(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",
			"content":[{"type":"text","text":"こんにちは"}],"stop_reason":"end_turn",
			"usage":{"input_tokens":3,"output_tokens":2}}`)
	}))
	defer srv.Close()

	p := NewAnthropicProvider("k", "", anthropicopt.WithBaseURL(srv.URL+"/"))
	reply, err := p.Complete(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", reply)
	assert.Equal(t, DefaultClaudeModel, got["model"])
	assert.Equal(t, 0.3, got["temperature"])
	assert.NotNil(t, got["system"])
}
