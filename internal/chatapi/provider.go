package chatapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Provider turns a system and user prompt into a single completion
type Provider interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}

// Sampling settings shared by every provider
const (
	Temperature        = 0.3
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultClaudeModel = "claude-3-5-haiku-latest"
	maxTokens          = 1024
)

// OpenAIProvider calls the Chat Completions API
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider creates a provider. Extra options (base URL in tests) are
// appended after the key. The SDK's own retries are disabled.
func NewOpenAIProvider(apiKey, model string, opts ...openaiopt.RequestOption) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	all := append([]openaiopt.RequestOption{
		openaiopt.WithAPIKey(apiKey),
		openaiopt.WithMaxRetries(0),
	}, opts...)
	return &OpenAIProvider{
		client: openai.NewClient(all...),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Complete implements Provider
func (p *OpenAIProvider) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(p.model),
		Temperature: openai.Float(Temperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// AnthropicProvider calls the Messages API
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a provider. The SDK's own retries are disabled.
func NewAnthropicProvider(apiKey, model string, opts ...anthropicopt.RequestOption) *AnthropicProvider {
	if model == "" {
		model = DefaultClaudeModel
	}
	all := append([]anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(apiKey),
		anthropicopt.WithMaxRetries(0),
	}, opts...)
	return &AnthropicProvider{
		client: anthropic.NewClient(all...),
		model:  model,
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// Complete implements Provider
func (p *AnthropicProvider) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(Temperature),
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}
