package httptransport

import (
	"encoding/json"
	"net/http"

	"scribed/internal/billing"
	dErrors "scribed/internal/domainerrors"
	"scribed/internal/httputil"
	"scribed/internal/requestcontext"
)

type billingProposeRequest struct {
	SessionID    string `json:"session_id"`
	ClinicalNote string `json:"clinical_note,omitempty"`
	Language     string `json:"language,omitempty"`
}

type billingProposeResponse struct {
	SessionID   string               `json:"session_id"`
	Suggestions []billing.Suggestion `json:"suggestions"`
}

// handleBillingPropose handles POST /billing/propose. The note can come in
// the body or be looked up from the stored session.
func (h *Handler) handleBillingPropose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req billingProposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed request body"))
		return
	}
	if req.Language == "" {
		req.Language = "fr"
	}

	note := req.ClinicalNote
	if note == "" {
		snap, err := h.pipeline.Snapshot(ctx, req.SessionID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		if snap.ClinicalNote == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "session has no clinical note yet"))
			return
		}
		note = snap.ClinicalNote
	}

	suggestions, err := h.billing.Propose(ctx, req.SessionID, note, req.Language)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, billingProposeResponse{
		SessionID:   req.SessionID,
		Suggestions: suggestions,
	})
}

type billingSubmitRequest struct {
	SessionID          string                 `json:"session_id"`
	SelectedCodes      []billing.SelectedCode `json:"selected_codes"`
	Confirm            bool                   `json:"confirm"`
	PatientReference   string                 `json:"patient_fhir_ref,omitempty"`
	EncounterReference string                 `json:"encounter_fhir_ref,omitempty"`
	Language           string                 `json:"language,omitempty"`
}

// handleBillingSubmit handles POST /billing/submit. Submission is gated on
// the billing.submit scope at this boundary; confirmation and code checks
// live in the service.
func (h *Handler) handleBillingSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !requestcontext.HasScope(ctx, billing.ScopeSubmit) {
		h.logger.WarnContext(ctx, "claim submission without scope",
			"request_id", requestID,
			"actor", requestcontext.Actor(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "claim submission requires billing.submit scope"))
		return
	}

	var req billingSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed request body"))
		return
	}
	if req.SessionID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "session_id is required"))
		return
	}
	if req.Language == "" {
		req.Language = "fr"
	}

	result, err := h.billing.Submit(ctx, billing.SubmitRequest{
		SessionID:          req.SessionID,
		Codes:              req.SelectedCodes,
		Confirm:            req.Confirm,
		PatientReference:   req.PatientReference,
		EncounterReference: req.EncounterReference,
		Language:           req.Language,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "claim submitted",
		"request_id", requestID,
		"session_id", req.SessionID,
		"status", result.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}
