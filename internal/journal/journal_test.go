package journal

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/reflectify/reflectify/internal/analysis"
	"github.com/reflectify/reflectify/internal/events"
	"github.com/reflectify/reflectify/internal/kpi"
	"github.com/reflectify/reflectify/internal/logging"
	"github.com/reflectify/reflectify/internal/prompting"
	"github.com/reflectify/reflectify/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const longText = "Im Praktikum habe ich heute zum ersten Mal allein eine Gruppe betreut, weil meine Anleiterin krank war. " +
	"Am Anfang war ich nervös, jedoch hat die Gruppe gut mitgemacht. Mir ist klar geworden, dass ich mehr Struktur brauche. " +
	"Beim nächsten Mal werde ich einen genauen Ablaufplan vorbereiten und die Zeit besser einteilen."

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.AnalysisCompleted
}

func (p *recordingPublisher) PublishAnalysisCompleted(_ context.Context, evt events.AnalysisCompleted) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) all() []events.AnalysisCompleted {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.AnalysisCompleted(nil), p.events...)
}

func newTestService(t *testing.T) (*Service, *store.Store, *recordingPublisher) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	pub := &recordingPublisher{}
	engine := analysis.NewEngine(analysis.DefaultConfig())
	return NewService(st, engine, pub, logging.NewTestLogger().Logger), st, pub
}

func TestSubmit(t *testing.T) {
	svc, st, pub := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Submit(ctx, SubmitRequest{UserID: "u1", Title: "Praktikum Tag 4", Category: "Praktikum", Text: longText})
	require.NoError(t, err)

	require.NotNil(t, entry.Analysis)
	assert.NotEmpty(t, entry.Reflection.ID)
	assert.Equal(t, analysis.SourceScored, entry.Analysis.Source)
	assert.Greater(t, entry.Analysis.KPIs.Metacognition, 0)

	stored, err := st.GetAnalysis(ctx, entry.Reflection.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Analysis.Level.String(), stored.Level)
	assert.Equal(t, entry.Analysis.Prompts, stored.Prompts)

	evts := pub.all()
	require.Len(t, evts, 1)
	assert.Equal(t, entry.Reflection.ID, evts[0].ReflectionID)
	assert.Equal(t, "u1", evts[0].UserID)
	assert.False(t, evts[0].AnalyzedAt.IsZero())
}

func TestSubmit_Validation(t *testing.T) {
	svc, _, pub := newTestService(t)

	_, err := svc.Submit(context.Background(), SubmitRequest{Text: "etwas"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Submit(context.Background(), SubmitRequest{UserID: "u1", Text: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Submit(context.Background(), SubmitRequest{UserID: "../u1", Text: "etwas"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "user_id")

	assert.Empty(t, pub.all())
}

func TestSubmit_NormalizesLabels(t *testing.T) {
	svc, _, _ := newTestService(t)

	entry, err := svc.Submit(context.Background(), SubmitRequest{
		UserID:   "u1",
		Title:    "  Praktikum\n Tag 4 ",
		Category: "Arbeit\x00",
		Text:     "Ok.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Praktikum Tag 4", entry.Reflection.Title)
	assert.Equal(t, "Arbeit", entry.Reflection.Category)
}

func TestSubmit_ShortTextIsStored(t *testing.T) {
	svc, _, _ := newTestService(t)

	entry, err := svc.Submit(context.Background(), SubmitRequest{UserID: "u1", Text: "Ok."})
	require.NoError(t, err)
	assert.Equal(t, analysis.SourceShortText, entry.Analysis.Source)
	assert.Equal(t, kpi.Uniform(0), entry.Analysis.KPIs)
}

func TestGet_RoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, SubmitRequest{UserID: "u1", Text: longText})
	require.NoError(t, err)

	got, err := svc.Get(ctx, submitted.Reflection.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, submitted.Analysis.KPIs, got.Analysis.KPIs)
	assert.Equal(t, submitted.Analysis.Level, got.Analysis.Level)
	assert.Equal(t, submitted.Analysis.Stats, got.Analysis.Stats)
	assert.Equal(t, prompting.SourceRules, got.Analysis.PromptSource)
	assert.Equal(t, longText, got.Reflection.Text)
}

func TestGet_Pending(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	_, err := st.EnsureProfile(ctx, "u1", "")
	require.NoError(t, err)
	r, err := st.CreateReflection(ctx, store.Reflection{UserID: "u1", Text: longText})
	require.NoError(t, err)

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Analysis)
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Reanalyze(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReanalyze_UsesCurrentEngine(t *testing.T) {
	svc, st, pub := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Submit(ctx, SubmitRequest{UserID: "u1", Text: longText})
	require.NoError(t, err)

	strict := analysis.DefaultConfig()
	strict.Thresholds = kpi.Thresholds{Analytical: 0, Critical: 0}
	svc.engine = analysis.NewEngine(strict)

	again, err := svc.Reanalyze(ctx, entry.Reflection.ID)
	require.NoError(t, err)
	assert.Equal(t, kpi.Critical, again.Analysis.Level)

	stored, err := st.GetAnalysis(ctx, entry.Reflection.ID)
	require.NoError(t, err)
	assert.Equal(t, "critical", stored.Level)
	assert.Len(t, pub.all(), 2)
}

func TestAnalyzePending(t *testing.T) {
	svc, st, pub := newTestService(t)
	ctx := context.Background()

	_, err := st.EnsureProfile(ctx, "u1", "")
	require.NoError(t, err)
	for i := 0; i < 12; i++ {
		_, err := st.CreateReflection(ctx, store.Reflection{UserID: "u1", Text: strings.Repeat("Heute war ein guter Tag. ", i+1)})
		require.NoError(t, err)
	}

	report, err := svc.AnalyzePending(ctx, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, 10, report.Pending)
	assert.Equal(t, 10, report.Analyzed)
	assert.Zero(t, report.Failed)
	assert.Len(t, pub.all(), 10)

	report, err = svc.AnalyzePending(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pending)

	n, err := st.CountAnalyses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	pending, err := st.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAnalyzePending_CancelledContext(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	_, err := st.EnsureProfile(ctx, "u1", "")
	require.NoError(t, err)
	_, err = st.CreateReflection(ctx, store.Reflection{UserID: "u1", Text: longText})
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = svc.AnalyzePending(cancelled, 10, 2)
	assert.ErrorIs(t, err, context.Canceled)
}
