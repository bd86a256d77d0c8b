package kpi

import (
	"fmt"
	"strings"
)

// Level is the ordinal reflection level derived from the overall score.
type Level int

const (
	Descriptive Level = iota
	Analytical
	Critical
)

func (l Level) String() string {
	switch l {
	case Descriptive:
		return "descriptive"
	case Analytical:
		return "analytical"
	case Critical:
		return "critical"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel is the inverse of String.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "descriptive":
		return Descriptive, nil
	case "analytical":
		return Analytical, nil
	case "critical":
		return Critical, nil
	}
	return Descriptive, fmt.Errorf("unknown reflection level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Thresholds are the overall-score boundaries between levels.
type Thresholds struct {
	Analytical float64
	Critical   float64
}

// DefaultThresholds returns the reference boundaries 6 and 8.
func DefaultThresholds() Thresholds {
	return Thresholds{Analytical: 6, Critical: 8}
}

// Classify maps the unrounded mean of s to a Level.
func (t Thresholds) Classify(s Scores) Level {
	return t.ClassifyOverall(s.Overall())
}

// ClassifyOverall maps an overall score to a Level.
func (t Thresholds) ClassifyOverall(overall float64) Level {
	switch {
	case overall >= t.Critical:
		return Critical
	case overall >= t.Analytical:
		return Analytical
	default:
		return Descriptive
	}
}

// Classify uses DefaultThresholds.
func Classify(s Scores) Level {
	return DefaultThresholds().Classify(s)
}
