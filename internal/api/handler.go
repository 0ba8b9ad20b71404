package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eugenenazirov/recommender-config/internal/properties"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Lookup resolves a property value by section and key.
type Lookup interface {
	Get(section, key string) (string, error)
}

// Handler serves read-only property lookups over HTTP.
type Handler struct {
	lookup  Lookup
	source  string
	metrics *Metrics

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithSource records where the properties were loaded from; it is reported by the health endpoint.
func WithSource(path string) HandlerOption {
	return func(h *Handler) {
		h.source = path
	}
}

// WithMetrics replaces the handler's metrics set.
func WithMetrics(m *Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler constructs a Handler backed by lookup.
func NewHandler(lookup Lookup, opts ...HandlerOption) *Handler {
	h := &Handler{
		lookup: lookup,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.metrics == nil {
		h.metrics = NewMetrics()
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
		Source:    h.source,
	})
}

func (h *Handler) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	section := r.PathValue("section")
	key := r.PathValue("key")

	value, err := h.lookup.Get(section, key)
	if err != nil {
		switch {
		case errors.Is(err, properties.ErrMissingSection):
			h.metrics.observeLookup(outcomeMissingSection)
			writeError(w, http.StatusNotFound, "Missing section", err.Error())
		case errors.Is(err, properties.ErrMissingKey):
			h.metrics.observeLookup(outcomeMissingKey)
			writeError(w, http.StatusNotFound, "Missing key", err.Error())
		default:
			writeInternalError(w, err)
		}
		return
	}

	h.metrics.observeLookup(outcomeHit)
	writeJSON(w, http.StatusOK, propertyResponse{
		Section: section,
		Key:     key,
		Value:   value,
	})
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type propertyResponse struct {
	Section string `json:"section"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
