package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/reflectify/reflectify/internal/analysis"
	rhttp "github.com/reflectify/reflectify/internal/http"
	"github.com/reflectify/reflectify/internal/journal"
	"github.com/reflectify/reflectify/internal/kpi"
)

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
			Foreground(lipgloss.Color("45")).
			Width(16)

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
			Padding(0, 1)
)

const barWidth = kpi.MaxScore

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// bar draws score as filled and empty cells out of kpi.MaxScore.
func bar(score int) string {
	if score < 0 {
		score = 0
	}
	if score > barWidth {
		score = barWidth
	}
	return strings.Repeat("█", score) + dimStyle.Render(strings.Repeat("░", barWidth-score))
}

func levelStyle(l kpi.Level) lipgloss.Style {
	switch l {
	case kpi.Critical:
		return healthyStyle
	case kpi.Analytical:
		return warningStyle
	default:
		return dimStyle
	}
}

func kpiLine(label string, score int) string {
	return labelStyle.Render(label) + bar(score) + " " + valueStyle.Render(fmt.Sprintf("%2d", score))
}

func renderResult(res *analysis.Result) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Reflexionsanalyse"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Gesamt") +
		valueStyle.Render(fmt.Sprintf("%.1f/10", res.Overall)) + "  " +
		levelStyle(res.Level).Render(res.Level.String()))
	b.WriteString("\n")
	b.WriteString(kpiLine("Tiefe", res.KPIs.Depth) + "\n")
	b.WriteString(kpiLine("Kohärenz", res.KPIs.Coherence) + "\n")
	b.WriteString(kpiLine("Metakognition", res.KPIs.Metacognition) + "\n")
	b.WriteString(kpiLine("Handlung", res.KPIs.Actionable) + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d Wörter, %d Sätze, %d Absätze",
		res.Stats.WordCount, res.Stats.SentenceCount, res.Stats.ParagraphCount)))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Feedback"))
	b.WriteString("\n")
	b.WriteString(res.Feedback)
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Weiterführende Fragen"))
	b.WriteString("\n")
	for i, p := range res.Prompts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("Quelle: %s, Fragen: %s", res.Source, res.PromptSource)))

	return containerStyle.Render(b.String())
}

func renderBatch(r journal.BatchReport) string {
	status := healthyStyle.Render("✓ abgeschlossen")
	if r.Failed > 0 {
		status = warningStyle.Render(fmt.Sprintf("⚠ %d fehlgeschlagen", r.Failed))
	}

	lines := []string{
		headerStyle.Render("Batch-Analyse"),
		"",
		labelStyle.Render("Ausstehend") + valueStyle.Render(fmt.Sprint(r.Pending)),
		labelStyle.Render("Analysiert") + valueStyle.Render(fmt.Sprint(r.Analyzed)),
		labelStyle.Render("Fehler") + valueStyle.Render(fmt.Sprint(r.Failed)),
		labelStyle.Render("Dauer") + dimStyle.Render(r.Duration.Round(time.Millisecond).String()),
		"",
		status,
	}
	return containerStyle.Render(strings.Join(lines, "\n"))
}

func renderHealth(url string, h rhttp.HealthResponse) string {
	status := healthyStyle.Render("● " + h.Status)
	if h.Status != "ok" {
		status = errorStyle.Render("● " + h.Status)
	}

	lines := []string{
		labelStyle.Render("Server") + valueStyle.Render(url),
		labelStyle.Render("Status") + status,
	}
	if h.Version != "" {
		lines = append(lines, labelStyle.Render("Version")+dimStyle.Render(h.Version))
	}
	for name, state := range h.Checks {
		style := healthyStyle
		if state != "ok" {
			style = errorStyle
		}
		lines = append(lines, labelStyle.Render(name)+style.Render(state))
	}
	return containerStyle.Render(strings.Join(lines, "\n"))
}
