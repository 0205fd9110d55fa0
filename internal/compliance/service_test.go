package compliance

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"scribed/internal/audit"
	dErrors "scribed/internal/domainerrors"
	"scribed/internal/policy"
	"scribed/internal/report"
	"scribed/internal/requestcontext"
)

type fakeTransmitter struct {
	calls   int
	receipt report.Receipt
	err     error
}

func (f *fakeTransmitter) Submit(ctx context.Context, payload any) (report.Receipt, error) {
	f.calls++
	return f.receipt, f.err
}

func newTestBranch(t *testing.T, tx report.Transmitter) (*Service, *audit.MemoryStore) {
	t.Helper()
	store := audit.NewMemoryStore()
	svc, err := NewService(tx, audit.NewPublisher(store), slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	return svc, store
}

func authorizedCtx(scopes ...string) context.Context {
	ctx := requestcontext.WithActor(context.Background(), "dr.tremblay")
	return requestcontext.WithScopes(ctx, scopes)
}

func TestEvaluateWithoutDisclosureFlagIsNotTriggered(t *testing.T) {
	tx := &fakeTransmitter{}
	svc, _ := newTestBranch(t, tx)

	res, err := svc.Evaluate(context.Background(), Request{
		SessionID:  "s1",
		Transcript: "routine checkup, no concerns",
		Language:   "en",
	})
	require.NoError(t, err)
	require.Equal(t, StatusNotTriggered, res.Status)
	require.Zero(t, tx.calls)
}

func TestEvaluateFlagWithoutRegistryMatchIsNotTriggered(t *testing.T) {
	tx := &fakeTransmitter{}
	svc, store := newTestBranch(t, tx)

	res, err := svc.Evaluate(context.Background(), Request{
		SessionID:  "s1",
		Transcript: "signs of abuse discussed with social services",
		Language:   "en",
		Flags:      []string{policy.FlagMandatoryDisclosure},
	})
	require.NoError(t, err)
	require.Equal(t, StatusNotTriggered, res.Status)
	require.Zero(t, tx.calls)

	events, err := store.ListBySession(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, audit.EventDisclosureCheck, events[0].EventType)
	require.Equal(t, "no_candidate", events[0].Outcome)
}

func TestEvaluateUnconfirmedReturnsPendingFormWithoutTransmitting(t *testing.T) {
	tx := &fakeTransmitter{}
	svc, store := newTestBranch(t, tx)

	res, err := svc.Evaluate(context.Background(), Request{
		SessionID:  "s1",
		Transcript: "[REDACTED_PHONE], viol signalé hier",
		Language:   "fr",
		Flags:      []string{policy.FlagMandatoryDisclosure},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPendingConfirmation, res.Status)
	require.Zero(t, tx.calls)
	require.NotNil(t, res.Form)
	require.Equal(t, "MADO-AGR-SEX", res.Form.DiseaseCode)
	require.Equal(t, "Agression sexuelle (signalement obligatoire)", res.Form.DiseaseLabel)
	require.NotContains(t, res.Form.ClinicalSummary, "514")

	events, err := store.ListBySession(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, audit.EventDisclosureFormFilled, events[0].EventType)
}

func TestEvaluateConfirmedWithScopeTransmitsExactlyOnce(t *testing.T) {
	tx := &fakeTransmitter{receipt: report.Receipt{Status: report.StatusSent}}
	svc, store := newTestBranch(t, tx)

	res, err := svc.Evaluate(authorizedCtx(ScopeReport), Request{
		SessionID:  "s1",
		Transcript: "résultat positif pour chlamydia",
		Language:   "fr",
		Flags:      []string{policy.FlagMandatoryDisclosure},
		Confirm:    true,
		Reporter:   Reporter{Name: "Dr Tremblay"},
	})
	require.NoError(t, err)
	require.Equal(t, StatusTransmitted, res.Status)
	require.Equal(t, report.StatusSent, res.TransmitterStatus)
	require.Equal(t, "A56", res.DiseaseCode)
	require.Equal(t, 1, tx.calls)

	events, err := store.ListBySession(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	last := events[len(events)-1]
	require.Equal(t, audit.EventDisclosureTransmit, last.EventType)
	require.Equal(t, report.StatusSent, last.Outcome)
	// Only the disease code reaches the audit trail, never the form.
	require.Equal(t, map[string]any{"disease": "A56"}, last.Metadata)
}

func TestEvaluateConfirmedWithoutScopeIsForbiddenAndAudited(t *testing.T) {
	tx := &fakeTransmitter{receipt: report.Receipt{Status: report.StatusSent}}
	svc, store := newTestBranch(t, tx)

	_, err := svc.Evaluate(authorizedCtx("billing.submit"), Request{
		SessionID:  "s1",
		Transcript: "syphilis confirmée",
		Language:   "fr",
		Flags:      []string{policy.FlagMandatoryDisclosure},
		Confirm:    true,
	})
	require.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	require.Zero(t, tx.calls)

	events, listErr := store.ListBySession(context.Background(), "s1")
	require.NoError(t, listErr)
	last := events[len(events)-1]
	require.Equal(t, audit.EventDisclosureTransmit, last.EventType)
	require.Equal(t, audit.OutcomeForbidden, last.Outcome)
}

func TestEvaluateReflectsTransmitterErrorStatus(t *testing.T) {
	tx := &fakeTransmitter{receipt: report.Receipt{Status: report.StatusError, Details: map[string]any{"http_status": 502}}}
	svc, _ := newTestBranch(t, tx)

	res, err := svc.Evaluate(authorizedCtx(ScopeEMRWrite), Request{
		SessionID:  "s1",
		Transcript: "measles suspected after travel",
		Language:   "en",
		Flags:      []string{policy.FlagMandatoryDisclosure},
		Confirm:    true,
	})
	require.NoError(t, err)
	require.Equal(t, StatusTransmissionFailed, res.Status)
	require.Equal(t, report.StatusError, res.TransmitterStatus)
}

func TestConfirmTransmitsPendingForm(t *testing.T) {
	tx := &fakeTransmitter{receipt: report.Receipt{Status: report.StatusQueued}}
	svc, store := newTestBranch(t, tx)

	res, err := svc.Confirm(authorizedCtx(ScopeReport), "s1", &Form{
		DiseaseCode:  "MADO-AGR-SEX",
		DiseaseLabel: "Agression sexuelle (signalement obligatoire)",
		Language:     "fr",
	})
	require.NoError(t, err)
	require.Equal(t, StatusTransmitted, res.Status)
	require.Equal(t, report.StatusQueued, res.TransmitterStatus)
	require.Equal(t, 1, tx.calls)

	events, err := store.ListBySession(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, audit.EventDisclosureTransmit, events[0].EventType)
	require.Equal(t, report.StatusQueued, events[0].Outcome)
}

func TestConfirmRequiresForm(t *testing.T) {
	tx := &fakeTransmitter{}
	svc, _ := newTestBranch(t, tx)

	_, err := svc.Confirm(authorizedCtx(ScopeReport), "s1", nil)
	require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	require.Zero(t, tx.calls)
}

func TestConfirmWithoutScopeIsForbidden(t *testing.T) {
	tx := &fakeTransmitter{}
	svc, _ := newTestBranch(t, tx)

	_, err := svc.Confirm(authorizedCtx(), "s1", &Form{DiseaseCode: "A53"})
	require.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	require.Zero(t, tx.calls)
}

func TestFirstRegistryMatchWins(t *testing.T) {
	conditions, err := loadConditions()
	require.NoError(t, err)

	// Both sexual assault and chlamydia keywords appear; registry order picks
	// the assault entry.
	candidate := findCandidate(conditions, "viol rapporté, dépistage chlamydia demandé", "fr")
	require.NotNil(t, candidate)
	require.Equal(t, "MADO-AGR-SEX", candidate.Code)
}

func TestEnglishKeywordsMatchFromFrenchSessions(t *testing.T) {
	conditions, err := loadConditions()
	require.NoError(t, err)

	candidate := findCandidate(conditions, "patiente mentionne whooping cough chez son fils", "fr")
	require.NotNil(t, candidate)
	require.Equal(t, "A37", candidate.Code)
}

func TestClinicalSummaryIsTruncated(t *testing.T) {
	tx := &fakeTransmitter{}
	svc, _ := newTestBranch(t, tx)

	long := "viol signalé. "
	for len(long) < 3*summaryLimit {
		long += "plus de contexte clinique. "
	}
	res, err := svc.Evaluate(context.Background(), Request{
		SessionID:  "s1",
		Transcript: long,
		Language:   "fr",
		Flags:      []string{policy.FlagMandatoryDisclosure},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPendingConfirmation, res.Status)
	require.Len(t, res.Form.ClinicalSummary, summaryLimit)
}
