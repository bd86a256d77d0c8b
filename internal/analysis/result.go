package analysis

import (
	"github.com/reflectify/reflectify/internal/kpi"
	"github.com/reflectify/reflectify/internal/prompting"
	"github.com/reflectify/reflectify/internal/textstats"
)

// Input is one reflection to analyze. Only Text is required.
type Input struct {
	Text     string `json:"text"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
}

// Source tells which path produced a Result.
type Source string

const (
	SourceShortText Source = "short_text"
	SourceScored    Source = "scored"
	SourceFallback  Source = "fallback"
)

// Result is always fully populated.
type Result struct {
	KPIs         kpi.Scores           `json:"kpis"`
	Level        kpi.Level            `json:"level"`
	Overall      float64              `json:"overall"`
	Feedback     string               `json:"feedback"`
	Prompts      []string             `json:"prompts"`
	Stats        textstats.Statistics `json:"stats"`
	Source       Source               `json:"source"`
	PromptSource prompting.Source     `json:"prompt_source"`
}

const (
	shortTextFeedback = "Deine Reflexion ist noch zu kurz für eine aussagekräftige Analyse. Schreib gern noch etwas mehr dazu."
	fallbackFeedback  = "Die Analyse konnte nicht abgeschlossen werden. Bitte versuche es später noch einmal."
	fallbackPrompt    = "Was ist dir an dieser Erfahrung besonders wichtig?"

	// neutralScore is every KPI of the fallback result.
	neutralScore = 5
)

var shortTextPrompts = []string{
	"Kannst du die Situation ausführlicher beschreiben? Was ist genau passiert?",
	"In welchem Zusammenhang stand diese Erfahrung, und wer war beteiligt?",
	"Was hast du dabei gedacht und gefühlt?",
}

func shortTextResult(wordCount int) *Result {
	return &Result{
		KPIs:         kpi.Uniform(0),
		Level:        kpi.Descriptive,
		Overall:      0,
		Feedback:     shortTextFeedback,
		Prompts:      append([]string(nil), shortTextPrompts...),
		Stats:        textstats.Statistics{WordCount: wordCount, SentenceCount: 1, ParagraphCount: 1},
		Source:       SourceShortText,
		PromptSource: prompting.SourceFixed,
	}
}

func fallbackResult() *Result {
	scores := kpi.Uniform(neutralScore)
	return &Result{
		KPIs:         scores,
		Level:        kpi.Descriptive,
		Overall:      scores.OverallRounded(),
		Feedback:     fallbackFeedback,
		Prompts:      []string{fallbackPrompt},
		Stats:        textstats.Statistics{},
		Source:       SourceFallback,
		PromptSource: prompting.SourceFixed,
	}
}
