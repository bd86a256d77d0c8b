// Package patterns detects lexical cues for the four reflection dimensions.
//
// Each dimension is backed by named RuleSets compiled once at package init
// and shared read-only, so a Matcher is safe for concurrent use.
package patterns

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind selects how a RuleSet evaluates its entries.
type Kind int

const (
	// Connector entries are words or phrases matched on letter boundaries.
	// Only presence matters.
	Connector Kind = iota
	// Plain entries are lexicon terms matched as substrings; each distinct
	// term counts once.
	Plain
	// Strong entries are regular expressions; each matching expression
	// counts once.
	Strong
)

func (k Kind) String() string {
	switch k {
	case Connector:
		return "connector"
	case Plain:
		return "plain"
	case Strong:
		return "strong"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// RuleSet is a named list of cues of one Kind. Input is expected to be
// lowercased already.
type RuleSet struct {
	name    string
	kind    Kind
	entries []string
	res     []*regexp.Regexp
}

// letter boundaries; \b in RE2 is ASCII-only and splits words at umlauts.
const (
	boundaryStart = `(?:^|[^\p{L}\p{N}])`
	boundaryEnd   = `(?:[^\p{L}\p{N}]|$)`
)

// NewRuleSet compiles entries according to kind.
func NewRuleSet(name string, kind Kind, entries ...string) (*RuleSet, error) {
	if name == "" {
		return nil, fmt.Errorf("rule set name is required")
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("rule set %q has no entries", name)
	}

	rs := &RuleSet{name: name, kind: kind}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if kind != Strong {
			e = strings.ToLower(e)
		}
		if e == "" {
			return nil, fmt.Errorf("rule set %q contains an empty entry", name)
		}
		rs.entries = append(rs.entries, e)

		switch kind {
		case Connector:
			phrase := strings.Join(strings.Fields(regexp.QuoteMeta(e)), `\s+`)
			rs.res = append(rs.res, regexp.MustCompile(boundaryStart+phrase+boundaryEnd))
		case Strong:
			re, err := regexp.Compile(e)
			if err != nil {
				return nil, fmt.Errorf("rule set %q: invalid pattern %q: %w", name, e, err)
			}
			rs.res = append(rs.res, re)
		}
	}
	return rs, nil
}

// MustRuleSet is NewRuleSet for package-level tables.
func MustRuleSet(name string, kind Kind, entries ...string) *RuleSet {
	rs, err := NewRuleSet(name, kind, entries...)
	if err != nil {
		panic(err)
	}
	return rs
}

// Name returns the rule set name.
func (r *RuleSet) Name() string { return r.name }

// Kind returns how the rule set matches.
func (r *RuleSet) Kind() Kind { return r.kind }

// Len returns the number of entries.
func (r *RuleSet) Len() int { return len(r.entries) }

// Hits returns the entries found in lowered, in declaration order.
func (r *RuleSet) Hits(lowered string) []string {
	var hits []string
	for i, e := range r.entries {
		if r.matches(i, lowered) {
			hits = append(hits, e)
		}
	}
	return hits
}

// Count returns the number of distinct entries found in lowered.
func (r *RuleSet) Count(lowered string) int {
	n := 0
	for i := range r.entries {
		if r.matches(i, lowered) {
			n++
		}
	}
	return n
}

// Present reports whether any entry is found in lowered.
func (r *RuleSet) Present(lowered string) bool {
	for i := range r.entries {
		if r.matches(i, lowered) {
			return true
		}
	}
	return false
}

func (r *RuleSet) matches(i int, lowered string) bool {
	if r.kind == Plain {
		return strings.Contains(lowered, r.entries[i])
	}
	return r.res[i].MatchString(lowered)
}
