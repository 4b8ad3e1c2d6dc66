package main

import (
	"log/slog"

	"github.com/steveyegge/pmc/internal/assistant"
	"github.com/steveyegge/pmc/internal/chatapi"
	"github.com/steveyegge/pmc/internal/config"
)

// newProvider builds the configured LLM provider, or nil when its API key is missing
func newProvider(c config.Config) chatapi.Provider {
	key := c.APIKey()
	if key == "" {
		return nil
	}
	switch c.Provider {
	case config.ProviderAnthropic:
		return chatapi.NewAnthropicProvider(key, c.Model)
	default:
		return chatapi.NewOpenAIProvider(key, c.Model)
	}
}

// newService wraps the provider with the configured circuit breaker.
// metrics may be nil.
func newService(c config.Config, metrics *chatapi.Metrics, l *slog.Logger) *chatapi.Service {
	breaker := chatapi.NewCircuitBreaker(c.FailureThreshold, c.SuccessThreshold, c.OpenTimeout)
	return chatapi.NewService(newProvider(c),
		chatapi.WithBreaker(breaker),
		chatapi.WithMetrics(metrics),
		chatapi.WithLogger(l),
	)
}

// newTransport picks how the assistant reaches a model: the configured
// endpoint first, then the provider in-process, else nil (offline tips only)
func newTransport(c config.Config, l *slog.Logger) assistant.Transport {
	if c.Endpoint != "" {
		return assistant.NewHTTPTransport(c.Endpoint)
	}
	if c.APIKey() != "" {
		return &assistant.LocalTransport{Service: newService(c, nil, l)}
	}
	return nil
}

func newBridge() *assistant.Bridge {
	return assistant.NewBridge(newTransport(cfg, logger), logger)
}
