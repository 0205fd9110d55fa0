// Package scribe turns a redacted transcript into the structured sections of
// a clinical note. Extraction fans out three independent generation tasks and
// joins on all of them; assembly is a single further call.
package scribe

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	dErrors "scribed/internal/domainerrors"
	"scribed/internal/platform/metrics"
	"scribed/internal/textgen"
)

// Extraction holds the three structured sections produced by the fan-out
// stage. Tasks share no mutable state: each writes only its own field.
type Extraction struct {
	ChiefComplaint    string
	HPI               string
	AssessmentAndPlan string
}

// Service drives the extraction and assembly stages.
type Service struct {
	gen     textgen.Generator
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(gen textgen.Generator, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{gen: gen, logger: logger, metrics: m}
}

// Extract runs the three extraction tasks concurrently against the redacted
// transcript. All three must complete; the first failure cancels the rest and
// fails the stage as a whole, so no partial note is ever produced. Stage
// latency equals the slowest task.
func (s *Service) Extract(ctx context.Context, redactedText, language string) (*Extraction, error) {
	if err := ValidateLanguage(language); err != nil {
		return nil, err
	}
	if strings.TrimSpace(redactedText) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "empty transcript")
	}

	g, ctx := errgroup.WithContext(ctx)
	ext := &Extraction{}
	userContent := "Transcription:\n" + redactedText

	g.Go(func() error {
		start := time.Now()
		out, err := s.gen.Generate(ctx, chiefComplaintInstruction[language], userContent)
		s.metrics.ObserveStage("extract_chief_complaint", time.Since(start))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeCollaborator, "chief complaint extraction failed")
		}
		ext.ChiefComplaint = strings.TrimSpace(out)
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		out, err := s.gen.Generate(ctx, hpiInstruction[language], userContent)
		s.metrics.ObserveStage("extract_hpi", time.Since(start))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeCollaborator, "HPI extraction failed")
		}
		ext.HPI = strings.TrimSpace(out)
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		out, err := s.gen.Generate(ctx, assessmentPlanInstruction[language], userContent)
		s.metrics.ObserveStage("extract_assessment_plan", time.Since(start))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeCollaborator, "assessment and plan extraction failed")
		}
		ext.AssessmentAndPlan = strings.TrimSpace(out)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ext, nil
}

// Assemble composes the final note from the three sections, concatenated in
// fixed order. The assembler itself performs no branching.
func (s *Service) Assemble(ctx context.Context, ext *Extraction, language string) (string, error) {
	if err := ValidateLanguage(language); err != nil {
		return "", err
	}

	input := "Chief complaint:\n" + ext.ChiefComplaint +
		"\n\nHPI:\n" + ext.HPI +
		"\n\nA&P:\n" + ext.AssessmentAndPlan +
		"\n\nReturn clinical note."

	start := time.Now()
	out, err := s.gen.Generate(ctx, assembleInstruction[language], input)
	s.metrics.ObserveStage("assemble_note", time.Since(start))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeCollaborator, "note assembly failed")
	}
	return strings.TrimSpace(out), nil
}
