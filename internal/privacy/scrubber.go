// Package privacy redacts credentials and personal identifiers from
// reflection text before it leaves the process.
package privacy

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// Config controls which detectors run.
type Config struct {
	Enabled bool
	// Gitleaks enables the gitleaks default rule set for credentials.
	Gitleaks bool
}

// NewDefaultConfig enables every detector.
func NewDefaultConfig() Config {
	return Config{Enabled: true, Gitleaks: true}
}

// Finding locates one redacted span. The secret itself is never kept.
type Finding struct {
	RuleID string `json:"rule_id"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// Result is the outcome of Scrub.
type Result struct {
	Text     string
	Findings []Finding
}

// Redacted reports whether anything was replaced.
func (r Result) Redacted() bool {
	return len(r.Findings) > 0
}

// RuleIDs returns the distinct rules that fired, sorted.
func (r Result) RuleIDs() []string {
	seen := map[string]bool{}
	var ids []string
	for _, f := range r.Findings {
		if !seen[f.RuleID] {
			seen[f.RuleID] = true
			ids = append(ids, f.RuleID)
		}
	}
	sort.Strings(ids)
	return ids
}

type piiRule struct {
	id      string
	pattern *regexp.Regexp
}

var piiRules = []piiRule{
	{id: "email", pattern: regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	{id: "iban", pattern: regexp.MustCompile(`\b[A-Z]{2}\d{2}(?:[ ]?[A-Z0-9]{4}){3,7}(?:[ ]?[A-Z0-9]{1,3})?\b`)},
	{id: "phone", pattern: regexp.MustCompile(`(?:\+|\b00)[1-9]\d{0,2}[ /.-]?(?:\(0\)[ ]?)?\d{2,5}[ /.-]?\d{3,9}\b`)},
	{id: "phone", pattern: regexp.MustCompile(`\b0\d{2,5}[ /-]\d{4,9}\b`)},
}

// Scrubber replaces sensitive spans with [REDACTED:<rule>].
// It is safe for concurrent use.
type Scrubber struct {
	cfg Config

	once     sync.Once
	mu       sync.Mutex
	detector *detect.Detector
	initErr  error
}

// New returns a Scrubber for cfg. The gitleaks detector is built lazily on
// the first Scrub call.
func New(cfg Config) *Scrubber {
	return &Scrubber{cfg: cfg}
}

type span struct {
	start, end int
	ruleID     string
}

// Scrub redacts text. With Enabled false it returns text unchanged. A
// gitleaks initialization failure is returned alongside the regex-only
// result so callers can log it and continue.
func (s *Scrubber) Scrub(text string) (Result, error) {
	if s == nil || !s.cfg.Enabled || text == "" {
		return Result{Text: text}, nil
	}

	var spans []span
	for _, r := range piiRules {
		for _, loc := range r.pattern.FindAllStringIndex(text, -1) {
			spans = append(spans, span{start: loc[0], end: loc[1], ruleID: r.id})
		}
	}

	var err error
	if s.cfg.Gitleaks {
		var found []span
		found, err = s.detectCredentials(text)
		spans = append(spans, found...)
	}

	if len(spans) == 0 {
		return Result{Text: text}, err
	}
	return apply(text, merge(spans)), err
}

func (s *Scrubber) detectCredentials(text string) ([]span, error) {
	s.once.Do(func() {
		d, err := detect.NewDetectorDefaultConfig()
		if err != nil {
			s.initErr = fmt.Errorf("gitleaks detector: %w", err)
			return
		}
		s.detector = d
	})
	if s.initErr != nil {
		return nil, s.initErr
	}

	s.mu.Lock()
	findings := s.detector.DetectString(text)
	s.mu.Unlock()

	var spans []span
	for _, f := range findings {
		if f.Secret == "" {
			continue
		}
		for offset := 0; ; {
			i := strings.Index(text[offset:], f.Secret)
			if i < 0 {
				break
			}
			start := offset + i
			spans = append(spans, span{start: start, end: start + len(f.Secret), ruleID: f.RuleID})
			offset = start + len(f.Secret)
		}
	}
	return spans, nil
}

// merge sorts spans and joins overlapping ones, keeping the first rule id.
func merge(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start == spans[j].start {
			return spans[i].end > spans[j].end
		}
		return spans[i].start < spans[j].start
	})

	merged := []span{spans[0]}
	for _, cur := range spans[1:] {
		last := &merged[len(merged)-1]
		if cur.start < last.end {
			if cur.end > last.end {
				last.end = cur.end
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

func apply(text string, spans []span) Result {
	var b strings.Builder
	findings := make([]Finding, 0, len(spans))
	prev := 0
	for _, sp := range spans {
		b.WriteString(text[prev:sp.start])
		b.WriteString("[REDACTED:" + sp.ruleID + "]")
		findings = append(findings, Finding{RuleID: sp.ruleID, Start: sp.start, End: sp.end})
		prev = sp.end
	}
	b.WriteString(text[prev:])
	return Result{Text: b.String(), Findings: findings}
}
