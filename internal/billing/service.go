// Package billing suggests claim codes from an assembled clinical note and
// submits clinician-confirmed claims to the external claims channel. Code
// suggestion is keyword lookup against an embedded mapping table; nothing is
// submitted without explicit confirmation.
package billing

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"scribed/internal/audit"
	dErrors "scribed/internal/domainerrors"
	"scribed/internal/report"
	"scribed/internal/requestcontext"
)

// ScopeSubmit permits submitting claims. Enforced at the transport boundary.
const ScopeSubmit = "billing.submit"

// All automatic suggestions carry the same fixed confidence; they are
// proposals for review, not a ranking.
const suggestionConfidence = 0.8

//go:embed ramq_codes.json
var mappingsJSON []byte

type mapping struct {
	Key      string              `json:"key"`
	Label    map[string]string   `json:"label"`
	ICD10CA  string              `json:"icd10ca"`
	CCP      string              `json:"ccp"`
	Keywords map[string][]string `json:"keywords"`
}

// Suggestion is one proposed billing code pair.
type Suggestion struct {
	ICD10CA    string  `json:"icd10ca"`
	CCP        string  `json:"ccp"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// SelectedCode is a clinician-approved code pair going into a claim.
type SelectedCode struct {
	ICD10CA string `json:"icd10ca"`
	CCP     string `json:"ccp"`
}

// Claim is the payload submitted to the claims channel.
type Claim struct {
	ClaimID            string         `json:"claim_id"`
	SessionID          string         `json:"session_id"`
	ClinicianID        string         `json:"clinician_id"`
	PatientReference   string         `json:"patient_fhir_ref,omitempty"`
	EncounterReference string         `json:"encounter_fhir_ref,omitempty"`
	Codes              []SelectedCode `json:"codes"`
	Language           string         `json:"language"`
}

// SubmitRequest carries one claim submission.
type SubmitRequest struct {
	SessionID          string
	Codes              []SelectedCode
	Confirm            bool
	PatientReference   string
	EncounterReference string
	Language           string
}

// SubmitResult is the immediate submission outcome.
type SubmitResult struct {
	ClaimID string         `json:"claim_id"`
	Status  string         `json:"status"`
	Receipt report.Receipt `json:"receipt"`
}

// Service proposes and submits billing claims.
type Service struct {
	transmitter report.Transmitter
	auditor     *audit.Publisher
	logger      *slog.Logger
	mappings    []mapping
}

func NewService(transmitter report.Transmitter, auditor *audit.Publisher, logger *slog.Logger) (*Service, error) {
	var mappings []mapping
	if err := json.Unmarshal(mappingsJSON, &mappings); err != nil {
		return nil, fmt.Errorf("parse embedded billing mappings: %w", err)
	}
	return &Service{
		transmitter: transmitter,
		auditor:     auditor,
		logger:      logger,
		mappings:    mappings,
	}, nil
}

// Propose matches the clinical note against the mapping table and returns
// code suggestions for clinician review. One suggestion per mapping entry at
// most; matching is case-insensitive substring search over the note.
func (s *Service) Propose(ctx context.Context, sessionID, clinicalNote, language string) ([]Suggestion, error) {
	actor := requestcontext.Actor(ctx)
	if err := s.auditor.Record(ctx, audit.EventBillingProposed, actor, sessionID, "requested", map[string]any{
		"note_length": len(clinicalNote),
	}); err != nil {
		return nil, err
	}

	text := strings.ToLower(clinicalNote)
	var suggestions []Suggestion
	for _, entry := range s.mappings {
		keywords := append([]string{}, entry.Keywords[language]...)
		if language != "en" {
			keywords = append(keywords, entry.Keywords["en"]...)
		}
		for _, kw := range keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				label, ok := entry.Label[language]
				if !ok {
					label = entry.Label["en"]
				}
				suggestions = append(suggestions, Suggestion{
					ICD10CA:    entry.ICD10CA,
					CCP:        entry.CCP,
					Label:      label,
					Confidence: suggestionConfidence,
				})
				break
			}
		}
	}

	if len(suggestions) == 0 {
		if err := s.auditor.Record(ctx, audit.EventBillingProposed, actor, sessionID, "no_suggestions", nil); err != nil {
			return nil, err
		}
	}
	return suggestions, nil
}

// Submit sends a confirmed claim to the claims channel. Missing confirmation
// is a policy violation; an empty code list is invalid input. Both are
// audited before rejection.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	actor := requestcontext.Actor(ctx)

	if !req.Confirm {
		if err := s.auditor.Record(ctx, audit.EventBillingRejected, actor, req.SessionID, audit.OutcomeForbidden, nil); err != nil {
			return nil, err
		}
		return nil, dErrors.New(dErrors.CodeForbidden, "claim submission requires explicit confirmation")
	}
	if len(req.Codes) == 0 {
		if err := s.auditor.Record(ctx, audit.EventBillingRejected, actor, req.SessionID, audit.OutcomeFailed, nil); err != nil {
			return nil, err
		}
		return nil, dErrors.New(dErrors.CodeInvalidInput, "no billing codes selected")
	}

	claim := Claim{
		ClaimID:            uuid.NewString(),
		SessionID:          req.SessionID,
		ClinicianID:        actor,
		PatientReference:   req.PatientReference,
		EncounterReference: req.EncounterReference,
		Codes:              req.Codes,
		Language:           req.Language,
	}
	if err := s.auditor.Record(ctx, audit.EventBillingSubmitted, actor, req.SessionID, "requested", map[string]any{
		"codes_count": len(req.Codes),
	}); err != nil {
		return nil, err
	}

	receipt, err := s.transmitter.Submit(ctx, claim)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCollaborator, "claim submission failed")
	}

	if err := s.auditor.Record(ctx, audit.EventBillingResult, actor, req.SessionID, receipt.Status, map[string]any{
		"codes_count": len(req.Codes),
	}); err != nil {
		return nil, err
	}
	return &SubmitResult{
		ClaimID: claim.ClaimID,
		Status:  receipt.Status,
		Receipt: receipt,
	}, nil
}
