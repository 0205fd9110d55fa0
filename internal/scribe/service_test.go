package scribe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	dErrors "scribed/internal/domainerrors"
)

// fakeGenerator routes responses by a substring of the system instruction and
// records every call it receives.
type fakeGenerator struct {
	mu      sync.Mutex
	calls   []string
	respond func(instruction, content string) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, instruction, content string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, instruction)
	f.mu.Unlock()
	return f.respond(instruction, content)
}

func newTestService(gen *fakeGenerator) *Service {
	return NewService(gen, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func TestExtractProducesAllSections(t *testing.T) {
	gen := &fakeGenerator{respond: func(instruction, content string) (string, error) {
		switch {
		case strings.Contains(instruction, "chief complaint"):
			return "  Chest pain for two days.  ", nil
		case strings.Contains(instruction, "HPI"):
			return "- onset: two days ago", nil
		default:
			return "Plan: ECG, troponin.", nil
		}
	}}

	ext, err := newTestService(gen).Extract(context.Background(), "patient reports chest pain", LanguageEnglish)
	require.NoError(t, err)
	require.Equal(t, "Chest pain for two days.", ext.ChiefComplaint)
	require.Equal(t, "- onset: two days ago", ext.HPI)
	require.Equal(t, "Plan: ECG, troponin.", ext.AssessmentAndPlan)
	require.Len(t, gen.calls, 3)
}

func TestExtractFrenchUsesFrenchInstructions(t *testing.T) {
	gen := &fakeGenerator{respond: func(instruction, content string) (string, error) {
		return "section", nil
	}}

	_, err := newTestService(gen).Extract(context.Background(), "le patient consulte pour douleur", LanguageFrench)
	require.NoError(t, err)
	for _, instruction := range gen.calls {
		require.Contains(t, instruction, "bilingue")
	}
}

func TestExtractFailsWholeStageOnSingleTaskError(t *testing.T) {
	gen := &fakeGenerator{respond: func(instruction, content string) (string, error) {
		if strings.Contains(instruction, "HPI") {
			return "", errors.New("upstream timeout")
		}
		return "section", nil
	}}

	ext, err := newTestService(gen).Extract(context.Background(), "transcript", LanguageEnglish)
	require.Error(t, err)
	require.Nil(t, ext)
	require.True(t, dErrors.HasCode(err, dErrors.CodeCollaborator))
}

// blockingGenerator fails the HPI task immediately and holds every other call
// open until its context is cancelled.
type blockingGenerator struct {
	mu        sync.Mutex
	cancelled int
}

func (g *blockingGenerator) Generate(ctx context.Context, instruction, content string) (string, error) {
	if strings.Contains(instruction, "HPI") {
		return "", errors.New("upstream timeout")
	}
	<-ctx.Done()
	g.mu.Lock()
	g.cancelled++
	g.mu.Unlock()
	return "", ctx.Err()
}

func TestExtractCancelsInFlightTasksOnFailure(t *testing.T) {
	gen := &blockingGenerator{}
	svc := NewService(gen, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	ext, err := svc.Extract(context.Background(), "transcript", LanguageEnglish)
	require.Error(t, err)
	require.Nil(t, ext)
	require.True(t, dErrors.HasCode(err, dErrors.CodeCollaborator))

	// Extract joins on all three tasks before returning, so by now both
	// siblings must have observed the cancellation and unblocked.
	gen.mu.Lock()
	defer gen.mu.Unlock()
	require.Equal(t, 2, gen.cancelled)
}

func TestExtractRejectsUnsupportedLanguage(t *testing.T) {
	gen := &fakeGenerator{respond: func(instruction, content string) (string, error) {
		t.Fatal("generator must not be called for unsupported languages")
		return "", nil
	}}

	_, err := newTestService(gen).Extract(context.Background(), "transcript", "de")
	require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	require.Empty(t, gen.calls)
}

func TestExtractRejectsEmptyTranscript(t *testing.T) {
	gen := &fakeGenerator{respond: func(instruction, content string) (string, error) {
		return "section", nil
	}}

	_, err := newTestService(gen).Extract(context.Background(), "   ", LanguageEnglish)
	require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestAssembleConcatenatesSectionsInOrder(t *testing.T) {
	var captured string
	gen := &fakeGenerator{respond: func(instruction, content string) (string, error) {
		captured = content
		return "FINAL NOTE", nil
	}}

	ext := &Extraction{
		ChiefComplaint:    "CC",
		HPI:               "HISTORY",
		AssessmentAndPlan: "PLAN",
	}
	note, err := newTestService(gen).Assemble(context.Background(), ext, LanguageEnglish)
	require.NoError(t, err)
	require.Equal(t, "FINAL NOTE", note)

	ccIdx := strings.Index(captured, "CC")
	hpiIdx := strings.Index(captured, "HISTORY")
	apIdx := strings.Index(captured, "PLAN")
	require.True(t, ccIdx >= 0 && hpiIdx > ccIdx && apIdx > hpiIdx)
}

func TestAssembleWrapsGeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{respond: func(instruction, content string) (string, error) {
		return "", errors.New("rate limited")
	}}

	_, err := newTestService(gen).Assemble(context.Background(), &Extraction{}, LanguageFrench)
	require.True(t, dErrors.HasCode(err, dErrors.CodeCollaborator))
}
