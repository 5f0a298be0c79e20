package domain

// =============================================================================
// Rule Tables
// =============================================================================

// RuleCategory holds the trigger phrases and optional metadata for one
// classification category. Tables are authored externally as JSON and may be
// edited between messages, so every field defaults safely.
type RuleCategory struct {
	Phrases          []string `json:"phrases"`
	OperatorRequired bool     `json:"operator_required,omitempty"`
	Goal             string   `json:"goal,omitempty"`
	PainPoints       []string `json:"pain_points,omitempty"`
	Description      string   `json:"description,omitempty"`
	Priority         int      `json:"priority,omitempty"`
}

// RuleTable maps a category name to its phrase set. The classifiers treat a
// table as an immutable snapshot for the duration of one call.
type RuleTable map[string]RuleCategory

// Category returns the named category and whether it exists with at least one
// phrase. Empty categories are treated as absent.
func (t RuleTable) Category(name string) (RuleCategory, bool) {
	if t == nil {
		return RuleCategory{}, false
	}
	c, ok := t[name]
	if !ok || len(c.Phrases) == 0 {
		return RuleCategory{}, false
	}
	return c, true
}

// StateRule is one externally authored emotional-state override: if any
// keyword appears in the message and the mood condition holds, State wins.
type StateRule struct {
	Keywords []string `json:"keywords"`
	Moods    []string `json:"moods,omitempty"`
	State    string   `json:"state"`
}

// StateRules maps an intent name to its ordered override rules.
type StateRules map[string][]StateRule

// RuleTables bundles everything the classification pipeline consumes for a
// single call. The host re-fetches this per message so rule edits apply
// immediately.
type RuleTables struct {
	Mood   RuleTable
	Intent RuleTable
	State  StateRules
}

// RuleSource provides the current rule tables. Implementations must tolerate
// missing or corrupt files and return empty tables rather than failing.
type RuleSource interface {
	Tables() RuleTables
	Reload() error
}
