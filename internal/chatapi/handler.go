package chatapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves POST /api/chat
type Handler struct {
	service *Service
	metrics *Metrics
	logger  *slog.Logger
}

// NewHandler creates a Handler; metrics may be nil
func NewHandler(service *Service, metrics *Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, metrics: metrics, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.metrics.IncRequest(OutcomeNotAllowed)
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"})
		return
	}

	req, err := DecodeRequest(r.Body)
	if err != nil {
		h.fail(w, OutcomeBadRequest, err)
		return
	}

	reply, err := h.service.Reply(r.Context(), req)
	if err != nil {
		outcome := OutcomeProviderError
		if errors.Is(err, ErrCircuitOpen) {
			outcome = OutcomeCircuitOpen
		}
		h.fail(w, outcome, err)
		return
	}

	h.metrics.IncRequest(OutcomeOK)
	writeJSON(w, http.StatusOK, Response{Reply: reply})
}

// fail logs the detail and sends only the generic reply
func (h *Handler) fail(w http.ResponseWriter, outcome string, err error) {
	h.metrics.IncRequest(outcome)
	h.logger.Error("chat request failed", "outcome", outcome, "error", err)
	writeJSON(w, http.StatusInternalServerError, Response{Reply: ServerErrorReply})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewMux wires the chat endpoint with /healthz and /metrics
func NewMux(h *Handler, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/chat", h)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}
