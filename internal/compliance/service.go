// Package compliance implements the conditional reporting branch that runs
// when the policy detector raises a mandatory-disclosure flag. It matches the
// transcript against a registry of reportable conditions, prefills a report
// form, and transmits it only on explicit clinician confirmation by an
// authorized actor.
package compliance

import (
	"context"
	"log/slog"
	"slices"

	"scribed/internal/audit"
	dErrors "scribed/internal/domainerrors"
	"scribed/internal/platform/metrics"
	"scribed/internal/policy"
	"scribed/internal/report"
	"scribed/internal/requestcontext"
)

// Scopes that permit transmitting a report to the external channel.
const (
	ScopeReport   = "mado.report"
	ScopeEMRWrite = "emr.write"
)

// Branch outcomes. NotTriggered and PendingConfirmation are terminal for the
// current invocation; a pending form may be confirmed by a later request.
const (
	StatusNotTriggered        = "not_triggered"
	StatusPendingConfirmation = "pending_confirmation"
	StatusTransmitted         = "transmitted"
	StatusTransmissionFailed  = "transmission_failed"
)

// Reporter identifies the clinician filing the report.
type Reporter struct {
	Name    string `json:"name,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// Form is the minimal structured report. Patient and encounter are carried as
// FHIR references, never as raw identifiers; the clinical summary comes from
// the redacted transcript only.
type Form struct {
	Reporter           Reporter `json:"reporter"`
	PatientReference   string   `json:"patient_reference,omitempty"`
	EncounterReference string   `json:"encounter_reference,omitempty"`
	DiseaseCode        string   `json:"disease_code"`
	DiseaseLabel       string   `json:"disease_label"`
	Onset              string   `json:"onset,omitempty"`
	ClinicalSummary    string   `json:"clinical_summary"`
	ReportNotes        string   `json:"report_notes,omitempty"`
	Language           string   `json:"language"`
}

// Request carries the branch inputs for one evaluation.
type Request struct {
	SessionID          string
	Transcript         string
	Language           string
	Flags              []string
	Confirm            bool
	PatientReference   string
	EncounterReference string
	Reporter           Reporter
	Onset              string
	ReportNotes        string
}

// Result is the branch outcome. TransmitterStatus carries the reporting
// channel's own status verbatim when a transmission was attempted.
type Result struct {
	Status            string          `json:"status"`
	DiseaseCode       string          `json:"disease_code,omitempty"`
	Form              *Form           `json:"form,omitempty"`
	TransmitterStatus string          `json:"transmitter_status,omitempty"`
	Receipt           *report.Receipt `json:"receipt,omitempty"`
}

const summaryLimit = 2000

// Service evaluates the compliance branch for a session.
type Service struct {
	transmitter report.Transmitter
	auditor     *audit.Publisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
	conditions  []Condition
}

func NewService(transmitter report.Transmitter, auditor *audit.Publisher, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	conditions, err := loadConditions()
	if err != nil {
		return nil, err
	}
	return &Service{
		transmitter: transmitter,
		auditor:     auditor,
		logger:      logger,
		metrics:     m,
		conditions:  conditions,
	}, nil
}

// Evaluate runs the branch: registry check, form prefill, and conditional
// transmission. Transmission requires both req.Confirm and an authorized
// scope on the context; a confirmed request without the scope is a policy
// violation, audited with outcome forbidden and never downgraded to a
// pending form.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Result, error) {
	actor := requestcontext.Actor(ctx)

	if !slices.Contains(req.Flags, policy.FlagMandatoryDisclosure) {
		return &Result{Status: StatusNotTriggered}, nil
	}

	candidate := findCandidate(s.conditions, req.Transcript, req.Language)
	if candidate == nil {
		if err := s.auditor.Record(ctx, audit.EventDisclosureCheck, actor, req.SessionID, "no_candidate", map[string]any{
			"transcript_length": len(req.Transcript),
		}); err != nil {
			return nil, err
		}
		return &Result{Status: StatusNotTriggered}, nil
	}

	form := s.buildForm(req, *candidate)
	if err := s.auditor.Record(ctx, audit.EventDisclosureFormFilled, actor, req.SessionID, "filled", map[string]any{
		"disease": form.DiseaseCode,
	}); err != nil {
		return nil, err
	}

	if !req.Confirm {
		return &Result{
			Status:      StatusPendingConfirmation,
			DiseaseCode: form.DiseaseCode,
			Form:        form,
		}, nil
	}

	return s.transmit(ctx, actor, req.SessionID, form)
}

// Confirm transmits a previously returned pending form once the clinician has
// explicitly approved it. The same scope gate applies as on the inline path.
func (s *Service) Confirm(ctx context.Context, sessionID string, form *Form) (*Result, error) {
	if form == nil || form.DiseaseCode == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "a prefilled report form is required")
	}
	actor := requestcontext.Actor(ctx)
	return s.transmit(ctx, actor, sessionID, form)
}

// transmit performs exactly one submission attempt. The scope check happens
// here so a confirmed request can never bypass it, and only the outcome
// status reaches the audit trail.
func (s *Service) transmit(ctx context.Context, actor, sessionID string, form *Form) (*Result, error) {
	if !requestcontext.HasAnyScope(ctx, ScopeReport, ScopeEMRWrite) {
		if err := s.auditor.Record(ctx, audit.EventDisclosureTransmit, actor, sessionID, audit.OutcomeForbidden, map[string]any{
			"disease": form.DiseaseCode,
		}); err != nil {
			return nil, err
		}
		return nil, dErrors.New(dErrors.CodeForbidden, "transmission requires mado.report or emr.write scope")
	}

	receipt, err := s.transmitter.Submit(ctx, form)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCollaborator, "report transmission failed")
	}

	s.metrics.CountTransmission(receipt.Status)
	if err := s.auditor.Record(ctx, audit.EventDisclosureTransmit, actor, sessionID, receipt.Status, map[string]any{
		"disease": form.DiseaseCode,
	}); err != nil {
		return nil, err
	}

	status := StatusTransmitted
	if receipt.Status == report.StatusError {
		status = StatusTransmissionFailed
	}
	return &Result{
		Status:            status,
		DiseaseCode:       form.DiseaseCode,
		TransmitterStatus: receipt.Status,
		Receipt:           &receipt,
	}, nil
}

func (s *Service) buildForm(req Request, candidate Condition) *Form {
	summary := req.Transcript
	if len(summary) > summaryLimit {
		summary = summary[:summaryLimit]
	}
	return &Form{
		Reporter:           req.Reporter,
		PatientReference:   req.PatientReference,
		EncounterReference: req.EncounterReference,
		DiseaseCode:        candidate.Code,
		DiseaseLabel:       candidate.LabelFor(req.Language),
		Onset:              req.Onset,
		ClinicalSummary:    summary,
		ReportNotes:        req.ReportNotes,
		Language:           req.Language,
	}
}
