// Package chatapi is the server side of the assistant: a single POST endpoint
// that wraps the caller's message, project context and knowledge into a fixed
// prompt and forwards it to an LLM provider.
package chatapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Fixed replies
const (
	NoReply          = "(no reply)"
	ServerErrorReply = "（サーバーエラー）AI応答に失敗しました。"
)

// SystemPrompt steers the model towards guiding a beginner PM in plain
// language, preferring the supplied knowledge and asking when unsure.
var SystemPrompt = strings.Join([]string{
	"あなたは初心者PMを支援する日本語アシスタントです。",
	"用語はやさしく、手順は箇条書きで、具体例も添えて説明します。",
	"提供された Knowledge を優先して参照し、不足は断言せず質問します。",
}, " ")

// Request is the endpoint body. Every field is optional.
type Request struct {
	Message   string          `json:"message"`
	Context   json.RawMessage `json:"context,omitempty"`
	Knowledge *string         `json:"knowledge,omitempty"`
}

// Response is the endpoint's reply body
type Response struct {
	Reply string `json:"reply"`
}

// DecodeRequest reads a Request. An empty body is treated as {}.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	data, err := io.ReadAll(r)
	if err != nil {
		return req, fmt.Errorf("failed to read request: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to decode request: %w", err)
	}
	return req, nil
}

// UserPrompt embeds the message, the context as indented JSON and the
// knowledge text, separated by blank lines
func UserPrompt(req Request) string {
	knowledge := "(none)"
	if req.Knowledge != nil {
		knowledge = *req.Knowledge
	}
	return strings.Join([]string{
		"User message: " + req.Message,
		"Context (project): " + indentContext(req.Context),
		"Knowledge:\n" + knowledge,
	}, "\n\n")
}

// indentContext renders raw with two-space indentation; absent or null is {}
func indentContext(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
