package classify

import (
	"brain_server/core/domain"
)

// =============================================================================
// Mood Classifier
// =============================================================================

// moodCategoryOrder is the strict priority scan order. Severity categories
// come first: an ambiguous message is always interpreted as worst-case and
// never downgraded by a later category.
var moodCategoryOrder = []string{
	"abuse",
	"threat",
	"blackmail",
	"accusation",
	"harassment",
	"urgency",
	"anger",
	"frustration",
	"sadness",
	"stress",
	"joy",
	"satisfaction",
	"thinking_state",
	"non_emotional",
}

// criticalCategories always force operator escalation regardless of any
// per-category flag in the rule table.
var criticalCategories = map[string]bool{
	"abuse":      true,
	"threat":     true,
	"blackmail":  true,
	"accusation": true,
	"harassment": true,
	"urgency":    true,
}

var moodByCategory = map[string]string{
	"abuse":          "abuse",
	"threat":         "threat",
	"blackmail":      "blackmail",
	"accusation":     "accusation",
	"harassment":     "harassment",
	"urgency":        "urgency",
	"anger":          "angry",
	"frustration":    "frustrated",
	"sadness":        "sad",
	"stress":         "stressed",
	"joy":            "happy",
	"satisfaction":   "satisfied",
	"thinking_state": "thinking",
	"non_emotional":  "neutral",
}

var stateByCategory = map[string]string{
	"abuse":          "hostile",
	"threat":         "threatening",
	"blackmail":      "manipulative",
	"accusation":     "accusing",
	"harassment":     "insistent",
	"urgency":        "urgent",
	"anger":          "angry",
	"frustration":    "frustrated",
	"sadness":        "sad",
	"stress":         "tense",
	"joy":            "joyful",
	"satisfaction":   "satisfied",
	"thinking_state": "thinking",
	"non_emotional":  "calm",
}

// Word lists used only to guess a suspected category for unknown-phrase
// telemetry; they never influence classification.
var (
	suspectAbuseWords      = []string{"axmaq", "deli", "sefeh", "mal", "serefsiz", "it", "donuz"}
	suspectThreatWords     = []string{"polis", "mehkeme", "sikayet", "baglat", "pesman"}
	suspectAccusationWords = []string{"deleduz", "aldad", "firildaq", "yalan", "haqsizliq"}
)

// MoodResult is the outcome of a successful mood classification.
type MoodResult struct {
	Category         string
	Mood             string
	State            string
	MatchedPhrase    string
	OperatorRequired bool
	Confidence       float64
}

// MoodClassifier walks the priority-ordered category list against an
// externally supplied rule table. Stateless; the table is a per-call snapshot.
type MoodClassifier struct {
	telemetry domain.TelemetrySink
}

// NewMoodClassifier creates a classifier. The telemetry sink is optional.
func NewMoodClassifier(telemetry domain.TelemetrySink) *MoodClassifier {
	return &MoodClassifier{telemetry: telemetry}
}

// Classify returns the first category whose phrase set matches, or nil when
// no category matches. It never fabricates a label for an uncertain message.
func (c *MoodClassifier) Classify(message string, table domain.RuleTable) *MoodResult {
	normalized := Normalize(message)
	if normalized == "" {
		return nil
	}

	for _, name := range moodCategoryOrder {
		category, ok := table.Category(name)
		if !ok {
			continue
		}
		phrase, found := FindFirstMatch(normalized, category.Phrases)
		if !found {
			continue
		}

		// First match wins; later categories are never evaluated.
		operator := criticalCategories[name] || category.OperatorRequired
		return &MoodResult{
			Category:         name,
			Mood:             moodByCategory[name],
			State:            stateByCategory[name],
			MatchedPhrase:    phrase,
			OperatorRequired: operator,
			Confidence:       1.0,
		}
	}

	if c.telemetry != nil {
		c.telemetry.RecordUnknown(message, normalized, suspectCategory(normalized))
	}
	return nil
}

// suspectCategory guesses which category an unmatched phrase might belong to,
// purely as a rule-authoring hint.
func suspectCategory(normalized string) string {
	switch {
	case containsAny(normalized, suspectAbuseWords):
		return "abuse"
	case containsAny(normalized, suspectThreatWords):
		return "threat"
	case containsAny(normalized, suspectAccusationWords):
		return "accusation"
	default:
		return "unknown"
	}
}
