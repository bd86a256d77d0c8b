package patterns

import "strings"

// Signals are the lexical cues found in one text.
type Signals struct {
	HasAnalyticalPhrase        bool `json:"has_analytical_phrase"`
	HasCriticalPhrase          bool `json:"has_critical_phrase"`
	MetacognitiveMatches       int  `json:"metacognitive_matches"`
	StrongMetacognitiveMatches int  `json:"strong_metacognitive_matches"`
	ActionMatches              int  `json:"action_matches"`
	StrongActionMatches        int  `json:"strong_action_matches"`
}

// Matcher evaluates one rule set per signal.
type Matcher struct {
	Analytical          *RuleSet
	Critical            *RuleSet
	Metacognitive       *RuleSet
	StrongMetacognitive *RuleSet
	Action              *RuleSet
	StrongAction        *RuleSet
}

var defaultMatcher = &Matcher{
	Analytical:          analyticalConnectors,
	Critical:            criticalConnectors,
	Metacognitive:       metacognitiveTerms,
	StrongMetacognitive: strongMetacognitivePatterns,
	Action:              actionTerms,
	StrongAction:        strongActionPatterns,
}

// Default returns the matcher built from the German lexicon.
func Default() *Matcher {
	return defaultMatcher
}

// Match runs the default matcher over text.
func Match(text string) Signals {
	return defaultMatcher.Match(text)
}

// Match lowercases text once and evaluates every rule set over it.
func (m *Matcher) Match(text string) Signals {
	lowered := strings.ToLower(text)
	return Signals{
		HasAnalyticalPhrase:        m.Analytical.Present(lowered),
		HasCriticalPhrase:          m.Critical.Present(lowered),
		MetacognitiveMatches:       m.Metacognitive.Count(lowered),
		StrongMetacognitiveMatches: m.StrongMetacognitive.Count(lowered),
		ActionMatches:              m.Action.Count(lowered),
		StrongActionMatches:        m.StrongAction.Count(lowered),
	}
}

// RuleSets returns the rule sets in a stable order.
func (m *Matcher) RuleSets() []*RuleSet {
	return []*RuleSet{m.Analytical, m.Critical, m.Metacognitive, m.StrongMetacognitive, m.Action, m.StrongAction}
}
