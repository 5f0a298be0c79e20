package classify

import (
	"strings"

	"brain_server/core/domain"
)

// =============================================================================
// Emotional-State Deriver
// =============================================================================

// Emotional-state labels form a small closed set.
const (
	StateAngry        = "angry"
	StateDissatisfied = "dissatisfied"
	StateSatisfied    = "satisfied"
	StateInquiring    = "inquiring"
	StateThinking     = "thinking"
	StateNeutral      = "neutral"
)

// Keyword sets for the cascade, in folded form.
var (
	priceComplaintWords = []string{"baha", "bahadir", "qiymet", "pahali", "ucuz deyil"}
	angryStateWords     = []string{"esebi", "hirsli", "qezebli", "aciqli", "kefim pis", "sinirlendim"}
	positiveStateWords  = []string{"yaxsi", "memnunam", "tesekkur", "sag ol", "ela", "cox yaxsi"}
)

// moodToState is the terminal fallback lookup. Unmapped moods fall to
// neutral — never to calm or anything upbeat, so an unresolved negative
// situation is not masked by a friendly default.
var moodToState = map[string]string{
	"angry":      StateAngry,
	"frustrated": "frustrated",
	"sad":        "sad",
	"stressed":   "tense",
	"happy":      "joyful",
	"satisfied":  StateSatisfied,
	"thinking":   StateThinking,
	"neutral":    StateNeutral,
	"abuse":      "hostile",
	"threat":     "threatening",
	"blackmail":  "manipulative",
	"accusation": "accusing",
	"harassment": "insistent",
	"urgency":    "urgent",
}

// DeriveEmotionalState computes the presentation affect from the current
// turn only. It is a pure function of (message, mood, intent, rules): no
// prior state is read, which is what prevents mood stickiness after a topic
// change. First matching cascade step wins.
func DeriveEmotionalState(message, mood, intent string, rules domain.StateRules) string {
	normalized := Normalize(message)

	// 1. Externally authored per-intent rules.
	if state := stateFromRules(normalized, mood, intent, rules); state != "" {
		return state
	}

	hasPriceComplaint := containsAny(normalized, priceComplaintWords)
	hasNegative := containsAny(normalized, negativeWords)

	// 2. A price objection is dissatisfaction, never anger: anger escalates
	// to an operator while a price complaint should not.
	if hasPriceComplaint && intent == IntentComplaint {
		return StateDissatisfied
	}

	// 3. Angry mood needs corroborating lexical evidence.
	if mood == "angry" && containsAny(normalized, angryStateWords) {
		return StateAngry
	}

	// 4. Question markers.
	if strings.Contains(message, "?") || containsAny(normalized, questionWords) {
		return StateInquiring
	}

	// 5. Positive feedback, unless a negative or price keyword co-occurs —
	// a negative always vetoes a positive reading.
	if intent == IntentPositive || containsAny(normalized, positiveStateWords) {
		if hasNegative || hasPriceComplaint {
			if intent == IntentComplaint {
				return StateDissatisfied
			}
			return StateNeutral
		}
		return StateSatisfied
	}

	// 6. Any remaining complaint.
	if intent == IntentComplaint || intent == IntentSlowResponse {
		return StateDissatisfied
	}

	// 7. Mood fallback.
	if state, ok := moodToState[mood]; ok {
		return state
	}
	return StateNeutral
}

// stateFromRules evaluates the optional JSON override rules for the intent:
// first rule whose keywords hit and whose mood condition holds wins.
func stateFromRules(normalized, mood, intent string, rules domain.StateRules) string {
	if len(rules) == 0 {
		return ""
	}
	for _, rule := range rules[intent] {
		if rule.State == "" || !containsAny(normalized, rule.Keywords) {
			continue
		}
		if len(rule.Moods) > 0 && !stringIn(mood, rule.Moods) {
			continue
		}
		return rule.State
	}
	return ""
}
