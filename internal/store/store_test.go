package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "reflectify.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedReflection(t *testing.T, s *Store, userID, text string) Reflection {
	t.Helper()
	ctx := context.Background()
	_, err := s.EnsureProfile(ctx, userID, "")
	require.NoError(t, err)
	r, err := s.CreateReflection(ctx, Reflection{UserID: userID, Title: "Woche 3", Category: "Praktikum", Text: text})
	require.NoError(t, err)
	return r
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reflectify.db")
	s, err := Open(path)
	require.NoError(t, err)
	r := seedReflection(t, s, "u1", "Erster Eintrag")
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetReflection(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Erster Eintrag", got.Text)
}

func TestDSN_EscapesPath(t *testing.T) {
	got := dsn("/data/notes?v=1#draft%.db")
	assert.True(t, strings.HasPrefix(got, "file:/data/notes%3Fv=1%23draft%25.db?"), got)
	assert.Contains(t, got, "_pragma=foreign_keys%281%29")
}

func TestOpen_PathWithURICharacters(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal?v=1#draft.db")

	s, err := Open(path)
	require.NoError(t, err)
	seedReflection(t, s, "u1", "Eintrag")
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	require.NoError(t, err, "database file keeps its literal name")
	_, err = os.Stat(filepath.Join(dir, "journal"))
	assert.True(t, os.IsNotExist(err))
}

func TestEnsureProfile_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.EnsureProfile(ctx, "u1", "Mara")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.EnsureProfile(ctx, "u1", "Andere")
	require.NoError(t, err)
	assert.False(t, created)

	p, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Mara", p.DisplayName)

	_, err = s.EnsureProfile(ctx, " ", "")
	assert.Error(t, err)
}

func TestEnsureProfile_ConcurrentCreatesOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inserts int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := s.EnsureProfile(ctx, "shared", "")
			assert.NoError(t, err)
			if created {
				mu.Lock()
				inserts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, inserts)
}

func TestReflection_CreateAndGet(t *testing.T) {
	s := openTestStore(t)
	r := seedReflection(t, s, "u1", "Heute habe ich viel gelernt.")

	assert.NotEmpty(t, r.ID)
	assert.False(t, r.CreatedAt.IsZero())

	got, err := s.GetReflection(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "Woche 3", got.Title)
	assert.Equal(t, "Praktikum", got.Category)
	assert.WithinDuration(t, r.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestReflection_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetReflection(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetAnalysis(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReflection_RequiresProfile(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateReflection(context.Background(), Reflection{UserID: "nobody", Text: "x"})
	assert.Error(t, err)
}

func TestAnalysis_SaveUpsertsAndCounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	r := seedReflection(t, s, "u1", "Text")

	a := Analysis{
		ReflectionID:   r.ID,
		Depth:          5,
		Coherence:      8,
		Metacognition:  3,
		Actionable:     4,
		Overall:        5,
		Level:          "descriptive",
		Feedback:       "Gut.",
		Prompts:        []string{"Warum?", "Wie weiter?"},
		WordCount:      120,
		SentenceCount:  9,
		ParagraphCount: 1,
		Source:         "scored",
	}
	require.NoError(t, s.SaveAnalysis(ctx, a))

	got, err := s.GetAnalysis(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Prompts, got.Prompts)
	assert.Equal(t, 8, got.Coherence)
	assert.False(t, got.AnalyzedAt.IsZero())

	a.Depth = 9
	a.Level = "analytical"
	require.NoError(t, s.SaveAnalysis(ctx, a))

	got, err = s.GetAnalysis(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Depth)
	assert.Equal(t, "analytical", got.Level)

	n, err := s.CountAnalyses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAnalysis_RequiresReflection(t *testing.T) {
	s := openTestStore(t)
	err := s.SaveAnalysis(context.Background(), Analysis{ReflectionID: "missing", Level: "descriptive"})
	assert.Error(t, err)
}

func TestListPending(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, u := range []string{"u1", "u2"} {
		_, err := s.EnsureProfile(ctx, u, "")
		require.NoError(t, err)
	}
	create := func(userID, text string, at time.Time) Reflection {
		r, err := s.CreateReflection(ctx, Reflection{UserID: userID, Text: text, CreatedAt: at})
		require.NoError(t, err)
		return r
	}
	third := create("u2", "drei", base.Add(2*time.Second))
	first := create("u1", "eins", base)
	second := create("u1", "zwei", base.Add(time.Second))
	require.NoError(t, s.SaveAnalysis(ctx, Analysis{ReflectionID: second.ID, Level: "descriptive", Source: "scored"}))

	pending, err := s.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, third.ID, pending[1].ID)

	pending, err = s.ListPending(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
