package prompting

import (
	"github.com/reflectify/reflectify/internal/kpi"
	"github.com/reflectify/reflectify/internal/patterns"
	"github.com/reflectify/reflectify/internal/textstats"
)

// MaxPrompts is the upper bound of follow-up questions in an Output.
const MaxPrompts = 3

// Word-count gates of the rule-based prompts.
const (
	detailBelowWords      = 50
	causesAboveWords      = 100
	perspectiveAboveWords = 150
	thinkingAboveWords    = 100
	actionAboveWords      = 150
	changedAboveWords     = 100
	weakScore             = 5
)

// Overall-score bands of the rule-based feedback.
const (
	feedbackGoodBand   = 5.0
	feedbackStrongBand = 7.0
)

const (
	PromptDetail      = "Beschreibe die Situation genauer: Was ist konkret passiert, und wer war beteiligt?"
	PromptCauses      = "Was waren die Ursachen für das, was du erlebt hast? Warum hat es sich so entwickelt?"
	PromptPerspective = "Wie könnte jemand anderes diese Situation sehen? Welche alternative Perspektive gibt es?"
	PromptThinking    = "Was hast du dabei über deine eigene Denkweise oder deinen Lernprozess erfahren?"
	PromptAction      = "Welchen konkreten nächsten Schritt leitest du aus dieser Erfahrung ab?"

	PromptImportance = "Warum ist diese Erfahrung für dich wichtig?"
	PromptChanged    = "Wie hat sich dein Verständnis durch diese Erfahrung verändert?"
	PromptEmotion    = "Welche Gefühle hat diese Erfahrung bei dir ausgelöst, und wie bist du damit umgegangen?"
)

const (
	FeedbackDeeper = "Ein guter Anfang. Versuche, das Erlebte tiefer zu analysieren: Warum ist es so gekommen, und was bedeutet es für dich?"
	FeedbackGood   = "Du gehst die Reflexion gut an. Vertiefe deine Analyse noch etwas und halte fest, welche nächsten Schritte du daraus ableitest."
	FeedbackStrong = "Eine starke Reflexion mit klaren Einsichten. Überlege jetzt, wie du diese Erkenntnisse konkret in Handlungen umsetzt."
)

// Rules builds prompts and feedback from statistics and scores alone. It
// always returns between one and MaxPrompts prompts and non-empty feedback.
func Rules(stats textstats.Statistics, sig patterns.Signals, scores kpi.Scores) Output {
	return Output{
		Prompts:  rulePrompts(stats.WordCount, sig, scores),
		Feedback: ruleFeedback(scores.Overall()),
		Source:   SourceRules,
	}
}

func rulePrompts(wc int, sig patterns.Signals, scores kpi.Scores) []string {
	prompts := make([]string, 0, MaxPrompts)
	add := func(cond bool, p string) {
		if cond && len(prompts) < MaxPrompts {
			prompts = append(prompts, p)
		}
	}

	if wc < detailBelowWords {
		add(true, PromptDetail)
	} else {
		add(!sig.HasAnalyticalPhrase && wc > causesAboveWords, PromptCauses)
	}
	add(!sig.HasCriticalPhrase && wc > perspectiveAboveWords, PromptPerspective)
	add(scores.Metacognition < weakScore && wc > thinkingAboveWords, PromptThinking)
	add(scores.Actionable < weakScore && wc > actionAboveWords, PromptAction)

	if len(prompts) > 0 {
		return prompts
	}

	prompts = append(prompts, PromptImportance)
	if wc > changedAboveWords {
		prompts = append(prompts, PromptChanged)
	}
	return append(prompts, PromptEmotion)
}

func ruleFeedback(overall float64) string {
	switch {
	case overall >= feedbackStrongBand:
		return FeedbackStrong
	case overall >= feedbackGoodBand:
		return FeedbackGood
	default:
		return FeedbackDeeper
	}
}
