package monitor

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

const testURL = "http://localhost:9191"

func TestNewModel(t *testing.T) {
	model := NewModel(testURL, 5*time.Second)
	assert.Equal(t, testURL, model.serverURL)
	assert.Equal(t, testURL+"/metrics", model.scraper.url)
	assert.Equal(t, 5*time.Second, model.interval)
	assert.False(t, model.quitting)
}

func TestModel_Init(t *testing.T) {
	assert.NotNil(t, NewModel(testURL, time.Second).Init())
}

func TestModel_Update_Keys(t *testing.T) {
	model := NewModel(testURL, 5*time.Second)

	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.False(t, updated.(Model).quitting)
	assert.NotNil(t, cmd)

	updated, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.True(t, updated.(Model).quitting)
	assert.NotNil(t, cmd)
	assert.Empty(t, updated.(Model).View())
}

func TestModel_Update_TickSchedulesFetch(t *testing.T) {
	updated, cmd := NewModel(testURL, time.Second).Update(tickMsg(time.Now()))
	assert.False(t, updated.(Model).quitting)
	assert.NotNil(t, cmd)
}

func TestModel_Update_Samples(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	model := NewModel(testURL, 5*time.Second)

	first := Sample{
		At:                   start,
		Analyses:             map[string]float64{"scored": 10},
		AnalysisSecondsSum:   1,
		AnalysisSecondsCount: 10,
		ResidentBytes:        64 * 1024 * 1024,
	}
	second := Sample{
		At:                   start.Add(30 * time.Second),
		Analyses:             map[string]float64{"scored": 14, "fallback": 1},
		AnalysisSecondsSum:   2,
		AnalysisSecondsCount: 15,
		ResidentBytes:        512 * 1024 * 1024,
	}

	updated, cmd := model.Update(sampleMsg(first))
	assert.Nil(t, cmd)
	updated, _ = updated.(Model).Update(sampleMsg(second))
	m := updated.(Model)

	assert.InDelta(t, 10.0, m.snapshot.AnalysesPerMin, 1e-9)
	assert.InDelta(t, 0.2, m.snapshot.AvgLatency, 1e-9)
	assert.Len(t, m.rateHistory, 2)
	assert.Equal(t, 10.0, m.ratePeak)
	assert.Equal(t, 512.0, m.memoryMax)
	assert.Equal(t, second.At, m.lastUpdate)
	assert.Nil(t, m.err)
}

func TestModel_Update_ErrMsg(t *testing.T) {
	updated, cmd := NewModel(testURL, time.Second).Update(errMsg{errors.New("connection refused")})
	m := updated.(Model)
	assert.Nil(t, cmd)
	assert.EqualError(t, m.err, "connection refused")

	view := m.View()
	assert.Contains(t, view, "Cannot read metrics from reflectifyd")
	assert.Contains(t, view, "connection refused")
	assert.Contains(t, view, testURL+"/metrics")
	assert.Contains(t, view, "[r] retry")
}

func TestModel_View_WithSnapshot(t *testing.T) {
	model := NewModel(testURL, 5*time.Second)
	model.snapshot = Snapshot{
		AnalysesPerMin:  12.5,
		TotalAnalyses:   340,
		ShortTextShare:  0.1,
		AvgLatency:      0.0123,
		LLMAttempts:     20,
		LLMSuccessRatio: 0.9,
		Goroutines:      17,
		MemoryMB:        42,
		Uptime:          2*time.Hour + 15*time.Minute,
	}
	model.lastUpdate = time.Date(2026, 1, 1, 12, 34, 56, 0, time.UTC)

	view := model.View()
	assert.Contains(t, view, "reflectify Monitor")
	assert.Contains(t, view, "✓ HEALTHY")
	assert.Contains(t, view, "2h 15m")
	assert.Contains(t, view, "12:34:56")
	assert.Contains(t, view, "12.5/min")
	assert.Contains(t, view, "12.3ms")
	assert.Contains(t, view, "340")
	assert.Contains(t, view, "10.0%")
	assert.Contains(t, view, "90.0% of 20")
	assert.Contains(t, view, "42.0 MB")
	assert.Contains(t, view, "17")
	assert.Contains(t, view, "[q]")
}

func TestModel_View_RulesOnly(t *testing.T) {
	view := NewModel(testURL, time.Second).View()
	assert.Contains(t, view, "rules only")
	assert.Contains(t, view, "never")
}

func TestStatusBadge(t *testing.T) {
	assert.Contains(t, statusBadge(Snapshot{}), "HEALTHY")
	assert.Contains(t, statusBadge(Snapshot{FallbackShare: 0.01}), "WARN")
	assert.Contains(t, statusBadge(Snapshot{AvgLatency: 3}), "WARN")
	assert.Contains(t, statusBadge(Snapshot{FallbackShare: 0.2}), "ERROR")
	assert.Contains(t, statusBadge(Snapshot{AvgLatency: 12}), "ERROR")
}

func TestAppendToHistory_Bounded(t *testing.T) {
	var h []float64
	for i := 0; i < historySize+5; i++ {
		h = appendToHistory(h, float64(i))
	}
	assert.Len(t, h, historySize)
	assert.Equal(t, 5.0, h[0])
}
