package session

// Stage is the orchestrator's current position in the pipeline.
type Stage string

const (
	StageStarted         Stage = "started"
	StageTranscribed     Stage = "transcribed"
	StageRedacted        Stage = "redacted"
	StageFlagged         Stage = "flagged"
	StageExtracting      Stage = "extracting"
	StageAssembled       Stage = "assembled"
	StageBranchEvaluated Stage = "branch_evaluated"
	StageFinalized       Stage = "finalized"
)

// Snapshot is the persisted view of one session. The orchestrator owns it
// exclusively for the lifetime of a pipeline run and rewrites it after every
// stage transition.
//
// Transcript is cleared before the finalized snapshot is written: the note and
// flags are retained, the source text is not.
type Snapshot struct {
	SessionID        string   `json:"session_id"`
	Stage            Stage    `json:"stage"`
	Language         string   `json:"language"`
	Transcript       string   `json:"transcript,omitempty"`
	ClinicalNote     string   `json:"clinical_note,omitempty"`
	Flags            []string `json:"flags,omitempty"`
	RedactionCount   int      `json:"redaction_count"`
	ComplianceStatus string   `json:"compliance_status,omitempty"`
}
