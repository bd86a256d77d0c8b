package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflectify/reflectify/internal/analysis"
	rhttp "github.com/reflectify/reflectify/internal/http"
	"github.com/reflectify/reflectify/internal/journal"
	"github.com/reflectify/reflectify/internal/kpi"
	"github.com/reflectify/reflectify/internal/prompting"
	"github.com/reflectify/reflectify/internal/store"
	"github.com/reflectify/reflectify/internal/textstats"
)

const reflectionText = "Ich war müde, weil der Weg sehr lang war. " +
	"Deshalb habe ich mir vorgenommen, früher loszugehen und unterwegs Pausen einzuplanen. " +
	"Beim nächsten Mal werde ich die Strecke vorher planen."

// execute runs the root command with args and stdin and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func sampleResult() *analysis.Result {
	return &analysis.Result{
		KPIs:         kpi.Scores{Depth: 6, Coherence: 7, Metacognition: 5, Actionable: 8},
		Level:        kpi.Analytical,
		Overall:      6.5,
		Feedback:     "Gute Reflexion mit klaren Gedanken.",
		Prompts:      []string{"Was würdest du beim nächsten Mal anders machen?"},
		Stats:        textstats.Statistics{WordCount: 42, SentenceCount: 3, ParagraphCount: 1},
		Source:       analysis.SourceScored,
		PromptSource: prompting.SourceRules,
	}
}

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.txt")
	require.NoError(t, os.WriteFile(path, []byte("aus der Datei"), 0600))

	got, err := readInput(strings.NewReader("ignored"), []string{path})
	require.NoError(t, err)
	assert.Equal(t, "aus der Datei", got)

	got, err = readInput(strings.NewReader("von stdin"), nil)
	require.NoError(t, err)
	assert.Equal(t, "von stdin", got)

	got, err = readInput(strings.NewReader("mit Strich"), []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "mit Strich", got)

	_, err = readInput(strings.NewReader("  \n "), nil)
	assert.Error(t, err)

	_, err = readInput(nil, []string{filepath.Join(t.TempDir(), "missing.txt")})
	assert.Error(t, err)
}

func TestAnalyze_Local(t *testing.T) {
	out, err := execute(t, reflectionText, "analyze", "--json", "--category", "Schule", "-")
	require.NoError(t, err)

	var res analysis.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, analysis.SourceScored, res.Source)
	assert.NotEmpty(t, res.Feedback)
	assert.NotEmpty(t, res.Prompts)
}

func TestAnalyze_LocalFormatted(t *testing.T) {
	out, err := execute(t, "Heute war gut.", "analyze")
	require.NoError(t, err)

	assert.Contains(t, out, "Reflexionsanalyse")
	assert.Contains(t, out, "Weiterführende Fragen")
	assert.Contains(t, out, "short_text")
}

func TestAnalyze_Remote(t *testing.T) {
	var got rhttp.AnalyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analyze", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sampleResult())
	}))
	defer srv.Close()

	out, err := execute(t, reflectionText, "analyze", "--server", srv.URL, "--json", "--title", "Wandertag")
	require.NoError(t, err)

	assert.Equal(t, reflectionText, got.Text)
	assert.Equal(t, "Wandertag", got.Title)

	var res analysis.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, kpi.Analytical, res.Level)
	assert.Equal(t, 6.5, res.Overall)
}

func TestAnalyze_RemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rhttp.ErrorResponse{Message: "text is required"})
	}))
	defer srv.Close()

	_, err := execute(t, reflectionText, "analyze", "--server", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "text is required")
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    rhttp.HealthResponse
		wantErr bool
	}{
		{"healthy", http.StatusOK, rhttp.HealthResponse{Status: "ok", Version: "1.2.3", Checks: map[string]string{"store": "ok"}}, false},
		{"degraded", http.StatusServiceUnavailable, rhttp.HealthResponse{Status: "degraded", Checks: map[string]string{"store": "unavailable"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/health", r.URL.Path)
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			out, err := execute(t, "", "health", "--server", srv.URL)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, out, tt.body.Status)
			assert.Contains(t, out, srv.URL)
		})
	}
}

func TestHealth_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := execute(t, "", "health", "--server", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
}

func TestBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reflectify.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	ctx := context.Background()
	_, err = st.EnsureProfile(ctx, "u1", "")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = st.CreateReflection(ctx, store.Reflection{UserID: "u1", Text: reflectionText})
		require.NoError(t, err)
	}
	require.NoError(t, st.Close())

	out, err := execute(t, "", "batch", "--db", path, "--workers", "2", "--json")
	require.NoError(t, err)

	var report journal.BatchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.Pending)
	assert.Equal(t, 3, report.Analyzed)
	assert.Zero(t, report.Failed)

	out, err = execute(t, "", "batch", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Batch-Analyse")
}

func TestRenderResult(t *testing.T) {
	out := renderResult(sampleResult())

	assert.Contains(t, out, "6.5/10")
	assert.Contains(t, out, "analytical")
	assert.Contains(t, out, "Gute Reflexion mit klaren Gedanken.")
	assert.Contains(t, out, "1. Was würdest du beim nächsten Mal anders machen?")
	assert.Contains(t, out, "42 Wörter")
}

func TestBar(t *testing.T) {
	assert.Equal(t, 10, strings.Count(bar(10), "█"))
	assert.Equal(t, 10, strings.Count(bar(15), "█"))
	assert.Equal(t, 0, strings.Count(bar(-1), "█"))
	assert.Equal(t, 4, strings.Count(bar(6), "░"))
}

func TestMonitor_RejectsShortInterval(t *testing.T) {
	_, err := execute(t, "", "monitor", "--interval", "100ms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 500ms")
}
