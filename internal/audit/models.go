package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// Metadata must hold only counts, lengths, and status codes, never raw
// clinical text, identifiers, or form content.
type Event struct {
	Timestamp time.Time
	EventType string
	Actor     string
	SessionID string
	Outcome   string
	Metadata  map[string]any
}

// Pipeline and collaborator event types.
const (
	EventTranscriptionRequested = "transcription_requested"
	EventTranscriptRedacted     = "transcript_redacted"
	EventPolicyFlagged          = "policy_flagged"
	EventExtractionCompleted    = "extraction_completed"
	EventNoteAssembled          = "note_assembled"
	EventBranchEvaluated        = "branch_evaluated"
	EventSessionFinalized       = "session_finalized"
	EventPipelineFailed         = "pipeline_failed"

	EventDisclosureCheck      = "mado_check"
	EventDisclosureFormFilled = "mado_form_filled"
	EventDisclosureTransmit   = "mado_transmit"

	EventBillingProposed  = "billing_proposed"
	EventBillingSubmitted = "billing_submit_requested"
	EventBillingRejected  = "billing_submit_rejected"
	EventBillingResult    = "billing_submit_result"

	EventFHIRWriteAttempt = "fhir_write_attempt"
)

// Common outcome values. Stage-specific outcomes (transmitter statuses, error
// codes) are passed through verbatim.
const (
	OutcomeSuccess   = "success"
	OutcomeFailed    = "failed"
	OutcomeForbidden = "forbidden"
)
