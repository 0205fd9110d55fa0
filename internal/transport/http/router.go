// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// domain services, and translate coded errors; business logic stays in the
// services.
package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scribed/internal/httputil"
	"scribed/internal/platform/middleware"
)

// NewRouter assembles the full route table. Pipeline and billing routes sit
// behind bearer authentication; health and metrics stay open.
func NewRouter(h *Handler, validator middleware.TokenValidator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(120 * time.Second))
		r.Use(middleware.RequireAuth(validator, h.logger))

		r.Post("/sessions/process", h.handleProcessSession)
		r.Get("/sessions/{sessionID}", h.handleGetSession)
		r.Post("/sessions/{sessionID}/report/confirm", h.handleConfirmReport)

		r.Post("/billing/propose", h.handleBillingPropose)
		r.Post("/billing/submit", h.handleBillingSubmit)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			status["status"] = "degraded"
			httputil.WriteJSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}
