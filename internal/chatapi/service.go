package chatapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNoProvider is returned when no provider is configured
var ErrNoProvider = errors.New("no LLM provider configured")

// Service builds prompts and calls the provider
type Service struct {
	provider Provider
	breaker  *CircuitBreaker
	metrics  *Metrics
	logger   *slog.Logger
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithBreaker guards provider calls with cb
func WithBreaker(cb *CircuitBreaker) ServiceOption {
	return func(s *Service) { s.breaker = cb }
}

// WithMetrics records provider calls and breaker state on m
func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLogger replaces the default slog logger
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service around provider
func NewService(provider Provider, opts ...ServiceOption) *Service {
	s := &Service{
		provider: provider,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.breaker != nil && s.metrics != nil {
		m := s.metrics
		s.breaker.OnStateChange(m.SetCircuitState)
		m.SetCircuitState(s.breaker.GetState())
	}
	return s
}

// Reply asks the provider once. An empty completion becomes NoReply.
// Errors are meant for logs; callers show ServerErrorReply instead.
func (s *Service) Reply(ctx context.Context, req Request) (string, error) {
	if s.provider == nil {
		return "", ErrNoProvider
	}
	if s.breaker != nil {
		if err := s.breaker.Allow(); err != nil {
			return "", err
		}
	}

	start := time.Now()
	text, err := s.provider.Complete(ctx, SystemPrompt, UserPrompt(req))
	duration := time.Since(start)
	s.metrics.ObserveProvider(s.provider.Name(), err == nil, duration)

	if err != nil {
		if s.breaker != nil {
			s.breaker.RecordFailure()
		}
		return "", fmt.Errorf("%s provider failed after %v: %w", s.provider.Name(), duration, err)
	}
	if s.breaker != nil {
		s.breaker.RecordSuccess()
	}

	s.logger.Debug("chat reply", "provider", s.provider.Name(), "duration", duration, "chars", len(text))
	if text == "" {
		return NoReply, nil
	}
	return text, nil
}
