package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/steveyegge/pmc/internal/chatapi"
)

// HTTPTransport posts requests to a chat endpoint
type HTTPTransport struct {
	URL    string
	Client *http.Client
}

// NewHTTPTransport creates a transport for url with a non-shared client
func NewHTTPTransport(url string) *HTTPTransport {
	return &HTTPTransport{URL: url, Client: cleanhttp.DefaultClient()}
}

// Send implements Transport. Any non-2xx status is an error.
func (t *HTTPTransport) Send(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := t.Client
	if client == nil {
		client = cleanhttp.DefaultClient()
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("chat endpoint returned %s", resp.Status)
	}

	var out chatapi.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode reply: %w", err)
	}
	return out.Reply, nil
}

// LocalTransport answers through an in-process chatapi.Service, so the CLI
// works without running `pmc serve`
type LocalTransport struct {
	Service *chatapi.Service
}

// Send implements Transport. The request goes through the same JSON shape
// the endpoint would receive.
func (t *LocalTransport) Send(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}
	apiReq, err := chatapi.DecodeRequest(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return t.Service.Reply(ctx, apiReq)
}
