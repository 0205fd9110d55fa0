package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"scribed/internal/billing"
	"scribed/internal/compliance"
	dErrors "scribed/internal/domainerrors"
	"scribed/internal/httputil"
	"scribed/internal/orchestrator"
	"scribed/internal/requestcontext"
	"scribed/internal/session"
)

// PipelineService runs the session pipeline and exposes stored snapshots.
type PipelineService interface {
	Run(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error)
	Snapshot(ctx context.Context, sessionID string) (*session.Snapshot, error)
}

// ComplianceService confirms pending disclosure forms.
type ComplianceService interface {
	Confirm(ctx context.Context, sessionID string, form *compliance.Form) (*compliance.Result, error)
}

// BillingService proposes and submits claims.
type BillingService interface {
	Propose(ctx context.Context, sessionID, clinicalNote, language string) ([]billing.Suggestion, error)
	Submit(ctx context.Context, req billing.SubmitRequest) (*billing.SubmitResult, error)
}

// Handler wires the HTTP endpoints to the domain services.
type Handler struct {
	pipeline   PipelineService
	compliance ComplianceService
	billing    BillingService
	logger     *slog.Logger
	health     func(ctx context.Context) error
}

// New constructs the handler. The health probe is optional.
func New(pipeline PipelineService, complianceSvc ComplianceService, billingSvc BillingService, logger *slog.Logger, health func(ctx context.Context) error) *Handler {
	return &Handler{
		pipeline:   pipeline,
		compliance: complianceSvc,
		billing:    billingSvc,
		logger:     logger,
		health:     health,
	}
}

// handleProcessSession handles POST /sessions/process.
func (h *Handler) handleProcessSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	var req orchestrator.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed request body"))
		return
	}

	result, err := h.pipeline.Run(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "session processing failed",
			"request_id", requestID,
			"session_id", req.SessionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "session processed",
		"request_id", requestID,
		"session_id", result.SessionID,
		"flags", len(result.Flags),
		"redactions", len(result.Redactions),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// handleGetSession handles GET /sessions/{sessionID}.
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	snap, err := h.pipeline.Snapshot(ctx, sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

type confirmReportRequest struct {
	Form *compliance.Form `json:"form"`
}

// handleConfirmReport handles POST /sessions/{sessionID}/report/confirm. The
// session must still exist in the store; the client sends back the pending
// form it received from processing.
func (h *Handler) handleConfirmReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	sessionID := chi.URLParam(r, "sessionID")

	if _, err := h.pipeline.Snapshot(ctx, sessionID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req confirmReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed request body"))
		return
	}

	result, err := h.compliance.Confirm(ctx, sessionID, req.Form)
	if err != nil {
		h.logger.WarnContext(ctx, "report confirmation rejected",
			"request_id", requestID,
			"session_id", sessionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "report confirmed",
		"request_id", requestID,
		"session_id", sessionID,
		"status", result.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}
