// Package orchestrator drives one encounter session through the pipeline:
// transcription, redaction, flag detection, concurrent extraction, note
// assembly, the conditional compliance branch, billing proposal, and the
// optional EMR write. A single coordinating goroutine owns the session state
// for the whole run; the snapshot is rewritten to the ephemeral store after
// every stage transition and the transcript is stripped before the final
// write.
package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"scribed/internal/audit"
	"scribed/internal/billing"
	"scribed/internal/compliance"
	dErrors "scribed/internal/domainerrors"
	"scribed/internal/fhir"
	"scribed/internal/platform/metrics"
	"scribed/internal/policy"
	"scribed/internal/redact"
	"scribed/internal/requestcontext"
	"scribed/internal/scribe"
	"scribed/internal/session"
	"scribed/internal/stt"
)

// Request starts one pipeline run. Either Transcript or AudioRef must be set;
// a missing SessionID gets a generated one.
type Request struct {
	SessionID          string `json:"session_id,omitempty"`
	Transcript         string `json:"transcript,omitempty"`
	AudioRef           string `json:"audio_ref,omitempty"`
	Language           string `json:"language,omitempty"`
	ReportConfirm      bool   `json:"mado_confirm,omitempty"`
	ReportNotes        string `json:"report_notes,omitempty"`
	ReporterDisplay    string `json:"reporter_display,omitempty"`
	PatientReference   string `json:"patient_fhir_ref,omitempty"`
	EncounterReference string `json:"encounter_fhir_ref,omitempty"`
	FHIRWrite          bool   `json:"fhir_write,omitempty"`
}

// Result is the caller-facing outcome of one completed run. The redaction log
// carries identifiers and offsets only, never the original text.
type Result struct {
	SessionID          string               `json:"session_id"`
	Language           string               `json:"language"`
	ChiefComplaint     string               `json:"chief_complaint"`
	HPI                string               `json:"hpi"`
	AssessmentAndPlan  string               `json:"assessment_and_plan"`
	ClinicalNote       string               `json:"clinical_note"`
	Flags              []string             `json:"flags"`
	Redactions         []redact.Match       `json:"redactions"`
	Compliance         *compliance.Result   `json:"compliance,omitempty"`
	BillingSuggestions []billing.Suggestion `json:"billing_suggestions"`
	FHIRResponse       map[string]any       `json:"fhir_response,omitempty"`
}

// Deps wires the orchestrator's collaborators.
type Deps struct {
	Transcriber stt.Transcriber
	Scribe      *scribe.Service
	Compliance  *compliance.Service
	Billing     *billing.Service
	FHIR        *fhir.Client
	Sessions    session.Store
	Auditor     *audit.Publisher
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	SessionTTL  time.Duration
}

type Orchestrator struct {
	deps Deps
}

func New(deps Deps) *Orchestrator {
	return &Orchestrator{deps: deps}
}

// Run executes the full pipeline for one session. Invalid input is rejected
// before any stage runs or any snapshot is written; any stage failure aborts
// the run at that stage with a pipeline_failed audit record and no partial
// note.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if req.Language == "" {
		req.Language = scribe.LanguageFrench
	}
	if err := scribe.ValidateLanguage(req.Language); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Transcript) == "" && strings.TrimSpace(req.AudioRef) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "transcript or audio_ref is required")
	}

	actor := requestcontext.Actor(ctx)
	snap := session.Snapshot{
		SessionID: req.SessionID,
		Stage:     session.StageStarted,
		Language:  req.Language,
	}
	if err := o.persist(ctx, &snap); err != nil {
		return nil, err
	}

	// Transcription. A provided transcript skips the collaborator entirely.
	transcript := req.Transcript
	source := "inline"
	if transcript == "" {
		source = "stt"
		start := time.Now()
		sttRes, err := o.deps.Transcriber.Transcribe(ctx, req.AudioRef, req.Language)
		o.deps.Metrics.ObserveStage("transcribe", time.Since(start))
		if err != nil {
			return nil, o.fail(ctx, &snap, err)
		}
		transcript = sttRes.Text
		if sttRes.Language != "" {
			if err := scribe.ValidateLanguage(sttRes.Language); err != nil {
				return nil, o.fail(ctx, &snap, err)
			}
			snap.Language = sttRes.Language
			req.Language = sttRes.Language
		}
	}
	snap.Stage = session.StageTranscribed
	snap.Transcript = transcript
	if err := o.transition(ctx, &snap, audit.EventTranscriptionRequested, audit.OutcomeSuccess, map[string]any{
		"size":   len(transcript),
		"source": source,
	}); err != nil {
		return nil, err
	}

	// Redaction. The snapshot keeps only the rewritten text from here on.
	start := time.Now()
	redacted := redact.Redact(transcript)
	o.deps.Metrics.ObserveStage("redact", time.Since(start))
	perCategory := map[string]int{}
	for _, m := range redacted.Matches {
		perCategory[string(m.Category)]++
	}
	for category, n := range perCategory {
		o.deps.Metrics.CountRedaction(category, n)
	}
	snap.Stage = session.StageRedacted
	snap.Transcript = redacted.Text
	snap.RedactionCount = len(redacted.Matches)
	if err := o.transition(ctx, &snap, audit.EventTranscriptRedacted, audit.OutcomeSuccess, map[string]any{
		"matches": len(redacted.Matches),
	}); err != nil {
		return nil, err
	}

	// Flag detection runs on the original text: trigger phrases are clinical
	// terms, not identifiers, but offsets inside placeholders are worthless.
	flags := policy.DetectFlags(transcript)
	for _, flag := range flags {
		o.deps.Metrics.CountFlag(flag)
	}
	snap.Stage = session.StageFlagged
	snap.Flags = flags
	if err := o.transition(ctx, &snap, audit.EventPolicyFlagged, audit.OutcomeSuccess, map[string]any{
		"flags": len(flags),
	}); err != nil {
		return nil, err
	}

	// Extraction fan-out. All three sections or none.
	ext, err := o.deps.Scribe.Extract(ctx, redacted.Text, snap.Language)
	if err != nil {
		return nil, o.fail(ctx, &snap, err)
	}
	snap.Stage = session.StageExtracting
	if err := o.transition(ctx, &snap, audit.EventExtractionCompleted, audit.OutcomeSuccess, map[string]any{
		"sections": 3,
	}); err != nil {
		return nil, err
	}

	note, err := o.deps.Scribe.Assemble(ctx, ext, snap.Language)
	if err != nil {
		return nil, o.fail(ctx, &snap, err)
	}
	snap.Stage = session.StageAssembled
	snap.ClinicalNote = note
	if err := o.transition(ctx, &snap, audit.EventNoteAssembled, audit.OutcomeSuccess, map[string]any{
		"note_length": len(note),
	}); err != nil {
		return nil, err
	}

	// Conditional compliance branch. The branch sees the redacted text only;
	// the stage event records the branch status, and the branch's own events
	// cover the check, the form, and any transmission.
	reporter := compliance.Reporter{Name: req.ReporterDisplay, Contact: actor}
	if reporter.Name == "" {
		reporter.Name = "Clinician"
	}
	branchStart := time.Now()
	branchRes, err := o.deps.Compliance.Evaluate(ctx, compliance.Request{
		SessionID:          snap.SessionID,
		Transcript:         redacted.Text,
		Language:           snap.Language,
		Flags:              flags,
		Confirm:            req.ReportConfirm,
		PatientReference:   req.PatientReference,
		EncounterReference: req.EncounterReference,
		Reporter:           reporter,
		ReportNotes:        req.ReportNotes,
	})
	o.deps.Metrics.ObserveStage("compliance_branch", time.Since(branchStart))
	if err != nil {
		return nil, o.fail(ctx, &snap, err)
	}
	snap.Stage = session.StageBranchEvaluated
	snap.ComplianceStatus = branchRes.Status
	if err := o.transition(ctx, &snap, audit.EventBranchEvaluated, branchRes.Status, map[string]any{
		"flags": len(flags),
	}); err != nil {
		return nil, err
	}

	suggestions, err := o.deps.Billing.Propose(ctx, snap.SessionID, note, snap.Language)
	if err != nil {
		return nil, o.fail(ctx, &snap, err)
	}

	// Optional EMR write. A failed write is audited but does not abort the
	// run; the note still reaches the caller.
	var fhirResponse map[string]any
	if req.FHIRWrite && o.deps.FHIR.Enabled() {
		doc := fhir.NewClinicalNoteDocument(note, req.PatientReference, req.EncounterReference)
		fhirResponse, err = o.deps.FHIR.CreateResource(ctx, "DocumentReference", doc)
		outcome := audit.OutcomeSuccess
		metadata := map[string]any{"resource_type": "DocumentReference"}
		if err != nil {
			outcome = audit.OutcomeFailed
			metadata["code"] = string(dErrors.CodeOf(err))
			o.deps.Logger.WarnContext(ctx, "fhir write failed", "session_id", snap.SessionID, "error", err)
		}
		if auditErr := o.deps.Auditor.Record(ctx, audit.EventFHIRWriteAttempt, actor, snap.SessionID, outcome, metadata); auditErr != nil {
			return nil, o.fail(ctx, &snap, auditErr)
		}
	}

	// Finalize: the transcript never reaches the terminal snapshot.
	snap.Stage = session.StageFinalized
	snap.Transcript = ""
	if err := o.transition(ctx, &snap, audit.EventSessionFinalized, audit.OutcomeSuccess, map[string]any{
		"note_length": len(note),
		"flags":       len(flags),
	}); err != nil {
		return nil, err
	}
	o.deps.Metrics.CountSession(audit.OutcomeSuccess)

	return &Result{
		SessionID:          snap.SessionID,
		Language:           snap.Language,
		ChiefComplaint:     ext.ChiefComplaint,
		HPI:                ext.HPI,
		AssessmentAndPlan:  ext.AssessmentAndPlan,
		ClinicalNote:       note,
		Flags:              flags,
		Redactions:         redacted.Matches,
		Compliance:         branchRes,
		BillingSuggestions: suggestions,
		FHIRResponse:       fhirResponse,
	}, nil
}

// Snapshot returns the stored state of a session; absent or expired sessions
// surface as not found.
func (o *Orchestrator) Snapshot(ctx context.Context, sessionID string) (*session.Snapshot, error) {
	return o.deps.Sessions.Get(ctx, sessionID)
}

// transition persists the snapshot and records the stage's audit event. The
// audit record exists before the stage's result is returned to the caller.
func (o *Orchestrator) transition(ctx context.Context, snap *session.Snapshot, eventType, outcome string, metadata map[string]any) error {
	if err := o.persist(ctx, snap); err != nil {
		return err
	}
	actor := requestcontext.Actor(ctx)
	if err := o.deps.Auditor.Record(ctx, eventType, actor, snap.SessionID, outcome, metadata); err != nil {
		return o.fail(ctx, snap, err)
	}
	return nil
}

func (o *Orchestrator) persist(ctx context.Context, snap *session.Snapshot) error {
	if err := o.deps.Sessions.Set(ctx, snap.SessionID, *snap, o.deps.SessionTTL); err != nil {
		return o.fail(ctx, snap, err)
	}
	return nil
}

// fail records the aborted run and surfaces the error unchanged. Forbidden
// outcomes keep their own audit outcome so policy violations are never folded
// into generic failures.
func (o *Orchestrator) fail(ctx context.Context, snap *session.Snapshot, err error) error {
	outcome := audit.OutcomeFailed
	if dErrors.HasCode(err, dErrors.CodeForbidden) {
		outcome = audit.OutcomeForbidden
	}
	actor := requestcontext.Actor(ctx)
	if auditErr := o.deps.Auditor.Record(ctx, audit.EventPipelineFailed, actor, snap.SessionID, outcome, map[string]any{
		"stage": string(snap.Stage),
		"code":  string(dErrors.CodeOf(err)),
	}); auditErr != nil {
		o.deps.Logger.ErrorContext(ctx, "audit write failed during abort", "session_id", snap.SessionID, "error", auditErr)
	}
	o.deps.Metrics.CountSession(outcome)
	return err
}
