// Package textstats derives word, sentence and paragraph counts from raw text.
package textstats

import (
	"regexp"
	"strings"
)

var (
	sentenceEnd    = regexp.MustCompile(`[.!?]+`)
	paragraphBreak = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)
)

// Statistics holds the counts the scorer works from.
type Statistics struct {
	WordCount      int `json:"word_count"`
	SentenceCount  int `json:"sentence_count"`
	ParagraphCount int `json:"paragraph_count"`
}

// Extract computes Statistics for text. SentenceCount and ParagraphCount are
// never below 1, so unpunctuated text counts as one long sentence.
func Extract(text string) Statistics {
	return Statistics{
		WordCount:      WordCount(text),
		SentenceCount:  countSentences(text),
		ParagraphCount: countParagraphs(text),
	}
}

// WordCount returns the number of whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// AvgSentenceLength returns words per sentence.
func (s Statistics) AvgSentenceLength() float64 {
	if s.SentenceCount < 1 {
		return float64(s.WordCount)
	}
	return float64(s.WordCount) / float64(s.SentenceCount)
}

func countSentences(text string) int {
	if n := len(sentenceEnd.FindAllStringIndex(text, -1)); n > 0 {
		return n
	}
	return 1
}

func countParagraphs(text string) int {
	count := 0
	for _, block := range paragraphBreak.Split(text, -1) {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return count
}
