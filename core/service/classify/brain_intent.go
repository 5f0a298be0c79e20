package classify

import (
	"regexp"
	"strings"
	"time"

	"brain_server/core/domain"
)

// =============================================================================
// Intent Classifier
// =============================================================================

// Intent names. Tier-1 names mirror the rule table categories; the heuristic
// tier may additionally produce positive_feedback, product_interest and
// confirmation.
const (
	IntentSlowResponse    = "slow_response"
	IntentAccusation      = "accusation"
	IntentRequestHelp     = "request_help"
	IntentRequestInfo     = "request_info"
	IntentComplaint       = "complaint"
	IntentPriceQuestion   = "price_question"
	IntentComparison      = "comparison"
	IntentGreeting        = "greeting"
	IntentThanks          = "thanks"
	IntentConfusion       = "confusion"
	IntentPositive        = "positive_feedback"
	IntentProductInterest = "product_interest"
	IntentConfirmation    = "confirmation"
)

// intentCategoryOrder is the tier-1 scan order over the intent rule table.
var intentCategoryOrder = []string{
	IntentSlowResponse,
	IntentAccusation,
	IntentRequestHelp,
	IntentRequestInfo,
	IntentComplaint,
	IntentPriceQuestion,
	IntentComparison,
	IntentGreeting,
	IntentThanks,
	IntentConfusion,
}

// Keyword sets for the heuristic fallback tier, in folded form.
var (
	questionWords     = []string{"nece", "niye", "nedir", "hardan", "hara", "harda", "kim", "ne vaxt", "ne qeder"}
	priceWords        = []string{"qiymet", "baha", "bahadir", "pahali", "ucuz", "endirim", "fiyat"}
	legalWords        = []string{"deleduz", "aldadirsiniz", "aldatma", "firildaq", "yalan", "haqsizliq", "mehkeme", "huquq"}
	positiveWords     = []string{"yaxsi", "memnunam", "tesekkur", "sag ol", "sagol", "ela", "super", "hell oldu"}
	negativeWords     = []string{"pis", "problem", "sikayet", "narazi", "berbad", "zerer", "itirdim", "islemir"}
	negativeVerbWords = []string{"beyenmedim", "narazi", "islemir", "begenmedim", "deyil"}
	slowWords         = []string{"gec", "gecikir", "yubanir"}
	replyWords        = []string{"cavab", "yazirsiniz", "cavablandirin"}
	productWords      = []string{"mehsul", "urun", "paket", "xidmet", "model", "almaq", "satin", "sifaris"}
	confirmWords      = []string{"oldu", "tamam", "ok", "okey", "razi", "beli", "aydindir"}
	hostileMoods      = []string{"abuse", "threat", "blackmail", "accusation", "harassment", "angry", "frustrated"}
	positiveMoods     = []string{"happy", "satisfied"}
)

// priceQuestionRe catches "qiymət(i) neçədir" style constructions that the
// plain question-word check can miss once word order varies.
var priceQuestionRe = regexp.MustCompile(`qiymet\w*\s*(necedir|nece\s*dir|nece|ne\s*qeder)`)

// IntentResult describes the customer's apparent goal for this message.
type IntentResult struct {
	Intent        string
	MatchedPhrase string
	Goal          string
	PainPoints    []string
	Confidence    float64
	IsQuestion    bool
	RequiresHuman bool
}

// Prior carries the last-known mood and intent used only by heuristic gates,
// never by the tier-1 table scan.
type Prior struct {
	Mood   string
	Intent string
}

// IntentClassifier resolves intent in two tiers: an ordered first-match-wins
// scan over the rule table, then a fixed heuristic cascade when no rule hits.
type IntentClassifier struct{}

func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{}
}

// Classify never returns nil: the heuristic tier always resolves to some
// intent, defaulting to request_info.
func (c *IntentClassifier) Classify(message string, table domain.RuleTable, prior Prior) *IntentResult {
	normalized := Normalize(message)
	if normalized == "" {
		return &IntentResult{Intent: IntentRequestInfo, Confidence: 0.3}
	}

	isQuestion := isDirectQuestion(message, normalized)

	// Tier 1: rule table, strict category order, first match wins.
	for _, name := range intentCategoryOrder {
		category, ok := table.Category(name)
		if !ok {
			continue
		}
		if phrase, found := FindFirstMatch(normalized, category.Phrases); found {
			return &IntentResult{
				Intent:        name,
				MatchedPhrase: phrase,
				Goal:          category.Goal,
				PainPoints:    domain.MergeLists(category.PainPoints, extractPainPoints(normalized)),
				Confidence:    1.0,
				IsQuestion:    isQuestion,
				RequiresHuman: name == IntentAccusation,
			}
		}
	}

	// Tier 2: heuristic fallback cascade.
	return c.fallback(message, normalized, isQuestion, prior)
}

func (c *IntentClassifier) fallback(message, normalized string, isQuestion bool, prior Prior) *IntentResult {
	pain := extractPainPoints(normalized)
	hasPrice := containsAny(normalized, priceWords)
	hasNegative := containsAny(normalized, negativeWords)

	// a. Direct question → price question or info request by keyword overlap.
	if isQuestion {
		if hasPrice || priceQuestionRe.MatchString(normalized) {
			return &IntentResult{Intent: IntentPriceQuestion, Goal: "learn_price", PainPoints: pain, Confidence: 0.85, IsQuestion: true}
		}
		return &IntentResult{Intent: IntentRequestInfo, Goal: "get_information", PainPoints: pain, Confidence: 0.75, IsQuestion: true}
	}

	// b. Legal / accusation language.
	if containsAny(normalized, legalWords) {
		return &IntentResult{Intent: IntentAccusation, Goal: "resolve_dispute", PainPoints: pain, Confidence: 0.8, RequiresHuman: true}
	}

	// c. Positive feedback, vetoed by any co-occurring negative keyword.
	if containsAny(normalized, positiveWords) && !hasNegative && !hasPrice {
		return &IntentResult{Intent: IntentPositive, Goal: "express_satisfaction", Confidence: 0.8}
	}

	// d. Price + explicit negative verb always resolves to cost reduction.
	if hasPrice && containsAny(normalized, negativeVerbWords) {
		return &IntentResult{Intent: IntentComplaint, Goal: "cost_reduction", PainPoints: domain.MergeLists(pain, []string{"price"}), Confidence: 0.8}
	}
	if hasPrice && hasNegative {
		return &IntentResult{Intent: IntentComplaint, Goal: "cost_reduction", PainPoints: domain.MergeLists(pain, []string{"price"}), Confidence: 0.75}
	}

	// e. Slow response: a delay word and a reply word must both be present.
	if containsAny(normalized, slowWords) && containsAny(normalized, replyWords) {
		return &IntentResult{Intent: IntentSlowResponse, Goal: "get_response", PainPoints: pain, Confidence: 0.75}
	}

	// f. Product interest, gated off for hostile prior moods.
	if containsAny(normalized, productWords) && !stringIn(prior.Mood, hostileMoods) {
		return &IntentResult{Intent: IntentProductInterest, Goal: "evaluate_product", PainPoints: pain, Confidence: 0.7}
	}

	// g. Bare price keywords.
	if hasPrice {
		return &IntentResult{Intent: IntentPriceQuestion, Goal: "learn_price", PainPoints: pain, Confidence: 0.65}
	}

	// h. Confirmation / acknowledgement.
	if containsAny(normalized, confirmWords) {
		return &IntentResult{Intent: IntentConfirmation, Goal: "confirm", Confidence: 0.65}
	}

	// i. Defaults: negative wording reads as complaint, otherwise mood decides.
	if hasNegative {
		return &IntentResult{Intent: IntentComplaint, Goal: "resolve_issue", PainPoints: pain, Confidence: 0.6}
	}
	if stringIn(prior.Mood, positiveMoods) {
		return &IntentResult{Intent: IntentProductInterest, Goal: "evaluate_product", Confidence: 0.5}
	}
	return &IntentResult{Intent: IntentRequestInfo, Goal: "get_information", PainPoints: pain, Confidence: 0.5}
}

// isDirectQuestion detects a trailing "?", a question word, or a price
// question construction.
func isDirectQuestion(raw, normalized string) bool {
	if strings.Contains(raw, "?") {
		return true
	}
	for _, w := range questionWords {
		if containsToken(normalized, w) || (strings.Contains(w, " ") && strings.Contains(normalized, w)) {
			return true
		}
	}
	return priceQuestionRe.MatchString(normalized)
}

// painPointWords maps pain-point labels to their trigger keywords.
var painPointWords = map[string][]string{
	"price":    {"qiymet", "baha", "odenis", "pul", "fiyat"},
	"delivery": {"catdirilma", "kargo", "gonderilme", "catdir"},
	"quality":  {"keyfiyyet", "material", "marka", "brend", "kalite"},
	"warranty": {"zemanet", "qaranti", "garanti", "temir", "servis"},
	"discount": {"endirim", "kampaniya", "teklif", "indirim"},
}

// painPointOrder keeps extraction deterministic.
var painPointOrder = []string{"price", "delivery", "quality", "warranty", "discount"}

func extractPainPoints(normalized string) []string {
	var out []string
	for _, label := range painPointOrder {
		if containsAny(normalized, painPointWords[label]) {
			out = append(out, label)
		}
	}
	return out
}

func stringIn(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

// =============================================================================
// Contextual override pass
// =============================================================================

// complaintIntents are the intents that open an active complaint.
var complaintIntents = map[string]bool{
	IntentComplaint:    true,
	IntentSlowResponse: true,
	IntentAccusation:   true,
}

// resolvingIntents close a previously open complaint when they follow one.
var resolvingIntents = map[string]bool{
	IntentPositive:        true,
	IntentThanks:          true,
	IntentProductInterest: true,
	IntentConfirmation:    true,
}

// ApplyContext updates the per-customer complaint context after raw intent
// classification. Raw classification itself is never altered: a direct
// question always stands regardless of an active complaint, which is what
// breaks the "stuck complaint" conversational state.
func ApplyContext(result *IntentResult, ctx domain.IntentContext, previousIntent, mood string, now time.Time) domain.IntentContext {
	if result == nil {
		return ctx
	}

	switch {
	case result.Intent == IntentPositive:
		ctx.HasActiveComplaint = false
		ctx.LastPositiveAt = now

	case complaintIntents[previousIntent] && resolvingIntents[result.Intent]:
		// Complaint followed by a positive turn is deemed resolved.
		ctx.HasActiveComplaint = false
		ctx.LastPositiveAt = now

	case complaintIntents[result.Intent]:
		ctx.HasActiveComplaint = true
		ctx.LastComplaintAt = now

	case result.Intent == IntentRequestInfo && stringIn(mood, []string{"angry", "frustrated"}):
		// Still in progress: an angry info request does not resolve anything.
	}

	return ctx
}
