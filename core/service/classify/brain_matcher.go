package classify

import "strings"

// =============================================================================
// Phrase Matcher
// =============================================================================

// Matches reports whether the rule phrase occurs inside the message. The
// check is directional: a phrase variant must be contained in a message
// variant, never the reverse. Single-word phrases only match whole tokens so
// short phrases cannot fire inside unrelated longer words.
func Matches(message, phrase string) bool {
	if message == "" || phrase == "" {
		return false
	}

	messageVariants := Variants(message)
	phraseVariants := Variants(phrase)
	if len(messageVariants) == 0 || len(phraseVariants) == 0 {
		return false
	}

	for _, pv := range phraseVariants {
		singleWord := !strings.Contains(pv, " ")
		for _, mv := range messageVariants {
			if singleWord {
				if containsToken(mv, pv) {
					return true
				}
				continue
			}
			if strings.Contains(mv, pv) {
				return true
			}
		}
	}
	return false
}

// FindFirstMatch scans an ordered phrase list and returns the first phrase
// that matches. Order within a list carries no priority meaning; only
// category order does.
func FindFirstMatch(message string, phrases []string) (string, bool) {
	for _, phrase := range phrases {
		if Matches(message, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// containsToken checks word-boundary membership. A message variant without
// spaces (the merged form) only matches on full equality — substring hits
// there would fire inside unrelated longer words.
func containsToken(messageVariant, word string) bool {
	if !strings.Contains(messageVariant, " ") {
		return messageVariant == word
	}
	for _, tok := range strings.Fields(messageVariant) {
		if tok == word {
			return true
		}
	}
	return false
}
