package chatapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for requests_total
const (
	OutcomeOK            = "ok"
	OutcomeBadRequest    = "bad_request"
	OutcomeProviderError = "provider_error"
	OutcomeCircuitOpen   = "circuit_open"
	OutcomeNotAllowed    = "method_not_allowed"
)

// Metrics records endpoint and provider activity
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	circuitState     prometheus.Gauge
}

// NewMetrics registers the chat metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmc_chat_requests_total",
				Help: "Chat endpoint requests by outcome",
			},
			[]string{"outcome"},
		),
		providerDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pmc_chat_provider_duration_seconds",
				Help:    "Duration of LLM provider calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "status"},
		),
		circuitState: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "pmc_chat_circuit_state",
				Help: "Provider circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
		),
	}
}

// IncRequest counts one endpoint request
func (m *Metrics) IncRequest(outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveProvider records a provider call
func (m *Metrics) ObserveProvider(provider string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	m.providerDuration.WithLabelValues(provider, status).Observe(d.Seconds())
}

// SetCircuitState mirrors the breaker state
func (m *Metrics) SetCircuitState(s CircuitState) {
	if m == nil {
		return
	}
	m.circuitState.Set(float64(s))
}
