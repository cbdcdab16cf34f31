// Package function adapts the plan catalog to a serverless HTTP runtime,
// where the platform hands each invocation to a plain http.Handler.
package function

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Spok95/plan-catalog/internal/catalog"
)

const Path = "/functions/v1/plans"

type PlanLister interface {
	ListActivePlans(ctx context.Context) ([]catalog.Entry, error)
}

type Handler struct {
	log   *slog.Logger
	plans PlanLister
}

func NewHandler(log *slog.Logger, plans PlanLister) *Handler {
	return &Handler{log: log, plans: plans}
}

// NewMux routes Path to a Handler. metrics, when non-nil, is mounted on
// /metrics.
func NewMux(log *slog.Logger, plans PlanLister, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(Path, NewHandler(log, plans))
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}
	return mux
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	catalog.SetCORSHeaders(w.Header())

	switch r.Method {
	case http.MethodOptions:
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	case http.MethodGet:
		h.list(w, r)
	default:
		w.Header().Set("Allow", catalog.CORSHeaders["Access-Control-Allow-Methods"])
		h.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.plans.ListActivePlans(r.Context())
	if err != nil {
		h.log.Error("failed to list plans",
			"query", "list_active_plans",
			"outcome", catalog.Outcome(err),
			"err", err,
		)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": catalog.PublicMessage(err)})
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// writeJSON encodes before writing the status so a marshal failure still
// yields a well-formed error body.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.log.Error("encode response", "err", err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
