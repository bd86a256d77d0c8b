// Package monitor implements a terminal dashboard for a running reflectifyd.
//
// The dashboard scrapes the daemon's Prometheus endpoint on an interval and
// renders analysis throughput, result sources, prompt generation health and
// process stats with sparklines and progress bars.
package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	sparklineWidth  = 30
	sparklineHeight = 3
	historySize     = 30
	progressWidth   = 40

	// defaultMemoryMax scales the memory bar until the daemon uses more.
	defaultMemoryMax = 256.0
)

// Model is the bubbletea dashboard model.
type Model struct {
	serverURL  string
	interval   time.Duration
	scraper    *Scraper
	lastUpdate time.Time
	last       Sample
	snapshot   Snapshot
	err        error
	quitting   bool

	rateHistory    []float64
	latencyHistory []float64
	memoryHistory  []float64
	ratePeak       float64
	memoryMax      float64

	llmProgress    progress.Model
	memoryProgress progress.Model
}

// Lipgloss styles (k9s-inspired color scheme)
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	healthyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	containerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	sparklineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51"))
)

// NewModel creates a dashboard for the daemon at serverURL.
func NewModel(serverURL string, interval time.Duration) Model {
	return Model{
		serverURL: serverURL,
		interval:  interval,
		scraper:   NewScraper(serverURL),
		llmProgress: progress.New(
			progress.WithGradient("#ff0000", "#00ff00"),
			progress.WithWidth(progressWidth),
		),
		memoryProgress: progress.New(
			progress.WithGradient("#00ff00", "#ffff00"),
			progress.WithWidth(progressWidth),
		),
		rateHistory:    make([]float64, 0, historySize),
		latencyHistory: make([]float64, 0, historySize),
		memoryHistory:  make([]float64, 0, historySize),
		ratePeak:       1,
		memoryMax:      defaultMemoryMax,
	}
}

// fallbackBadge grades the share of analyses that hit the neutral fallback.
func fallbackBadge(share float64) string {
	switch {
	case share == 0:
		return healthyStyle.Render("[✓]")
	case share < 0.05:
		return warningStyle.Render("[⚠]")
	default:
		return errorStyle.Render("[✗]")
	}
}

// statusBadge summarizes daemon health from fallbacks and latency.
func statusBadge(s Snapshot) string {
	switch {
	case s.FallbackShare >= 0.05 || s.AvgLatency >= 10:
		return errorStyle.Render("✗ ERROR")
	case s.FallbackShare > 0 || s.AvgLatency >= 2:
		return warningStyle.Render("⚠ WARN")
	default:
		return healthyStyle.Render("✓ HEALTHY")
	}
}

func appendToHistory(history []float64, value float64) []float64 {
	history = append(history, value)
	if len(history) > historySize {
		history = history[1:]
	}
	return history
}

func createSparkline(data []float64) string {
	if len(data) == 0 {
		return dimStyle.Render(fmt.Sprintf("%*s", sparklineWidth, "no data"))
	}

	spark := sparkline.New(sparklineWidth, sparklineHeight)
	for _, v := range data {
		spark.Push(v)
	}

	return sparklineStyle.Render(spark.View())
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

type tickMsg time.Time
type sampleMsg Sample
type errMsg struct{ err error }

// Init starts the refresh loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tick(m.interval),
		fetch(m.scraper),
	)
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetch(s *Scraper) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		smp, err := s.Scrape(ctx)
		if err != nil {
			return errMsg{err}
		}
		return sampleMsg(smp)
	}
}

// Update handles key presses, ticks and scrape results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, fetch(m.scraper)
		}

	case tickMsg:
		return m, tea.Batch(
			tick(m.interval),
			fetch(m.scraper),
		)

	case sampleMsg:
		cur := Sample(msg)
		m.snapshot = Diff(m.last, cur)
		m.last = cur

		m.rateHistory = appendToHistory(m.rateHistory, m.snapshot.AnalysesPerMin)
		m.latencyHistory = appendToHistory(m.latencyHistory, m.snapshot.AvgLatency*1000)
		m.memoryHistory = appendToHistory(m.memoryHistory, m.snapshot.MemoryMB)
		if m.snapshot.AnalysesPerMin > m.ratePeak {
			m.ratePeak = m.snapshot.AnalysesPerMin
		}
		if m.snapshot.MemoryMB > m.memoryMax {
			m.memoryMax = m.snapshot.MemoryMB
		}

		m.lastUpdate = cur.At
		m.err = nil
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil {
		return m.renderError()
	}
	return m.renderDashboard()
}

func (m Model) renderError() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("reflectify Monitor") + "\n\n")
	b.WriteString(errorStyle.Render("⚠ Cannot read metrics from reflectifyd") + "\n\n")
	b.WriteString(dimStyle.Render("URL: ") + valueStyle.Render(m.scraper.url) + "\n")
	b.WriteString(dimStyle.Render("Error: ") + errorStyle.Render(m.err.Error()) + "\n\n")
	b.WriteString(dimStyle.Render("Start the daemon with: reflectifyd") + "\n")
	b.WriteString(footerStyle.Render("[q] quit  [r] retry"))
	return containerStyle.Render(b.String())
}

func (m Model) renderDashboard() string {
	s := m.snapshot
	var b strings.Builder

	lastUpdate := "never"
	if !m.lastUpdate.IsZero() {
		lastUpdate = m.lastUpdate.Format("15:04:05")
	}
	b.WriteString(headerStyle.Render(" reflectify Monitor ") + "\n")
	fmt.Fprintf(&b, "%s   %s %s   %s\n",
		statusBadge(s),
		dimStyle.Render("Uptime:"),
		valueStyle.Render(FormatUptime(s.Uptime)),
		dimStyle.Render(lastUpdate))

	b.WriteString("\n" + sectionStyle.Render("┃ Analyses") + "\n")
	b.WriteString(labelStyle.Render("  Rate: ") +
		valueStyle.Render(FormatRate(s.AnalysesPerMin)) +
		"   " + createSparkline(m.rateHistory) + "\n")
	b.WriteString(labelStyle.Render("  Latency (avg): ") +
		valueStyle.Render(FormatLatency(s.AvgLatency)) +
		"   " + createSparkline(m.latencyHistory) + "\n")
	b.WriteString(labelStyle.Render("  Total: ") +
		valueStyle.Render(fmt.Sprintf("%.0f", s.TotalAnalyses)) +
		dimStyle.Render("  short text ") + valueStyle.Render(FormatPercentage(s.ShortTextShare)) +
		dimStyle.Render("  fallback ") + valueStyle.Render(FormatPercentage(s.FallbackShare)) +
		" " + fallbackBadge(s.FallbackShare) + "\n")

	b.WriteString("\n" + sectionStyle.Render("┃ Prompt Generation") + "\n")
	if s.LLMAttempts == 0 {
		b.WriteString(dimStyle.Render("  rules only, no LLM calls") + "\n")
	} else {
		b.WriteString(labelStyle.Render("  LLM success: ") +
			m.llmProgress.ViewAs(clamp01(s.LLMSuccessRatio)) +
			" " + dimStyle.Render(fmt.Sprintf("%s of %.0f", FormatPercentage(s.LLMSuccessRatio), s.LLMAttempts)) + "\n")
	}

	b.WriteString("\n" + sectionStyle.Render("┃ System") + "\n")
	b.WriteString(labelStyle.Render("  Memory: ") +
		m.memoryProgress.ViewAs(clamp01(s.MemoryMB/m.memoryMax)) +
		" " + dimStyle.Render(FormatMemory(s.MemoryMB)) + "\n")
	b.WriteString(labelStyle.Render("  Goroutines: ") +
		valueStyle.Render(fmt.Sprintf("%d", s.Goroutines)) +
		"   " + createSparkline(m.memoryHistory) + "\n")

	b.WriteString("\n" +
		footerKeyStyle.Render("[q]") + footerStyle.Render(" quit  ") +
		footerKeyStyle.Render("[r]") + footerStyle.Render(" refresh  ") +
		footerStyle.Render(fmt.Sprintf("Auto: %v", m.interval)))

	return containerStyle.Render(b.String())
}
