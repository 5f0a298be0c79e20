package classify

import (
	"fmt"
	"strings"
	"time"

	"brain_server/core/domain"
	"brain_server/pkg/snowflake"
)

// =============================================================================
// Decision Engine
// =============================================================================

// Tone and length labels.
const (
	ToneCalm         = "calm"
	ToneEmpathetic   = "empathetic"
	ToneFriendly     = "friendly"
	ToneInformative  = "informative"
	ToneProfessional = "professional"
	ToneNeutral      = "neutral"

	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

// operatorKeywords are explicit requests for a human, matched on folded text.
var operatorKeywords = []string{"operator", "menecer", "insan", "canli"}

// moodToneMap picks the response tone for a classified mood when risk does
// not already force calm.
var moodToneMap = map[string]string{
	"angry":      ToneCalm,
	"frustrated": ToneCalm,
	"abuse":      ToneCalm,
	"threat":     ToneCalm,
	"blackmail":  ToneCalm,
	"accusation": ToneCalm,
	"harassment": ToneCalm,
	"urgency":    ToneCalm,
	"sad":        ToneEmpathetic,
	"stressed":   ToneEmpathetic,
	"happy":      ToneFriendly,
	"satisfied":  ToneFriendly,
	"thinking":   ToneInformative,
}

// shortIntents get one-line replies; longIntents warrant a full explanation.
var (
	shortIntents = map[string]bool{
		IntentGreeting:     true,
		IntentThanks:       true,
		IntentConfirmation: true,
		IntentPositive:     true,
	}
	longIntents = map[string]bool{
		IntentComplaint:    true,
		IntentAccusation:   true,
		IntentRequestHelp:  true,
		IntentSlowResponse: true,
		IntentConfusion:    true,
	}
)

// DecisionEngine folds the classifier outputs into one actionable record.
type DecisionEngine struct{}

func NewDecisionEngine() *DecisionEngine {
	return &DecisionEngine{}
}

// Decide builds the final decision. mood may be nil (unclassified message);
// intent, risk and sales are always present.
func (e *DecisionEngine) Decide(
	message string,
	mood *MoodResult,
	state string,
	intent *IntentResult,
	risk RiskAssessment,
	sales SalesAnalysis,
	snapshot domain.CustomerSnapshot,
	now time.Time,
) *domain.DecisionRecord {
	normalized := Normalize(message)

	moodLabel := snapshot.LastMood
	unclassified := true
	if mood != nil {
		moodLabel = mood.Mood
		unclassified = false
	}

	operator, reasons := e.operatorDecision(normalized, mood, intent, risk)

	d := &domain.DecisionRecord{
		ID:             snowflake.IDString(),
		Mood:           moodLabel,
		EmotionalState: state,
		Intent:         intent.Intent,
		Goal:           intent.Goal,
		PainPoints:     intent.PainPoints,

		OperatorRequired: operator,
		OperatorReasons:  reasons,

		RiskLevel:   risk.Level,
		RiskScore:   risk.Score,
		RiskFactors: risk.Factors,

		Tone:           e.tone(moodLabel, unclassified, risk),
		ResponseLength: e.responseLength(intent),
		SalesMode:      sales.Approach,
		NextAction:     e.nextAction(operator, intent, risk, sales),
		Confidence:     e.confidence(intent.Confidence, risk, sales),

		Unclassified: unclassified,
		CreatedAt:    now,
	}
	d.Rationale = e.rationale(d, mood, intent, risk)
	return d
}

// SafeDefault is the decision returned when classification fails outright:
// neutral, no handoff, no sales pressure, low confidence.
func (e *DecisionEngine) SafeDefault(now time.Time) *domain.DecisionRecord {
	return &domain.DecisionRecord{
		ID:             snowflake.IDString(),
		Mood:           "neutral",
		EmotionalState: StateNeutral,
		Intent:         IntentRequestInfo,
		RiskLevel:      domain.RiskNone,
		Tone:           ToneNeutral,
		ResponseLength: LengthMedium,
		SalesMode:      domain.SalesOff,
		NextAction:     "answer",
		Confidence:     0.3,
		Rationale:      "fallback_default",
		Unclassified:   true,
		CreatedAt:      now,
	}
}

// operatorDecision is an OR over four independent escalation triggers, so a
// single trigger is always sufficient.
func (e *DecisionEngine) operatorDecision(normalized string, mood *MoodResult, intent *IntentResult, risk RiskAssessment) (bool, []string) {
	var reasons []string

	if risk.Level == domain.RiskHigh || risk.Level == domain.RiskCritical {
		reasons = append(reasons, "risk_"+risk.Level)
	}
	if intent.RequiresHuman {
		reasons = append(reasons, "intent_"+intent.Intent)
	}
	if mood != nil && mood.OperatorRequired {
		reasons = append(reasons, "mood_"+mood.Category)
	}
	if word, ok := firstMatchOf(normalized, operatorKeywords); ok {
		reasons = append(reasons, "requested_"+word)
	}

	return len(reasons) > 0, reasons
}

func (e *DecisionEngine) tone(mood string, unclassified bool, risk RiskAssessment) string {
	if risk.Level == domain.RiskHigh || risk.Level == domain.RiskCritical {
		return ToneCalm
	}
	if unclassified {
		return ToneProfessional
	}
	if tone, ok := moodToneMap[mood]; ok {
		return tone
	}
	return ToneProfessional
}

func (e *DecisionEngine) responseLength(intent *IntentResult) string {
	switch {
	case shortIntents[intent.Intent]:
		return LengthShort
	case longIntents[intent.Intent]:
		return LengthLong
	default:
		return LengthMedium
	}
}

func (e *DecisionEngine) nextAction(operator bool, intent *IntentResult, risk RiskAssessment, sales SalesAnalysis) string {
	if operator {
		if risk.RecommendedAction == "immediate_handoff" || risk.RecommendedAction == "urgent_handoff" {
			return risk.RecommendedAction
		}
		return "handoff"
	}
	if sales.Approach != domain.SalesOff && (sales.HasSalesSignal || intent.Intent == IntentProductInterest) {
		return sales.RecommendedAction
	}
	return "answer"
}

// confidence averages three bounded signals: certainty of the risk read,
// intent confidence, and sales confidence.
func (e *DecisionEngine) confidence(intentConf float64, risk RiskAssessment, sales SalesAnalysis) float64 {
	riskConf := 0.5
	switch risk.Level {
	case domain.RiskCritical, domain.RiskHigh:
		riskConf = 0.9
	case domain.RiskMedium, domain.RiskLow:
		riskConf = 0.7
	}

	avg := (riskConf + intentConf + sales.Confidence) / 3
	// Two-decimal rounding keeps audit rows stable across runs.
	return float64(int(avg*100+0.5)) / 100
}

func (e *DecisionEngine) rationale(d *domain.DecisionRecord, mood *MoodResult, intent *IntentResult, risk RiskAssessment) string {
	parts := []string{"intent=" + intent.Intent}
	if mood != nil {
		parts = append(parts, "mood="+mood.Category)
		if mood.MatchedPhrase != "" {
			parts = append(parts, "phrase="+mood.MatchedPhrase)
		}
	} else {
		parts = append(parts, "mood=unmatched")
	}
	if risk.Score > 0 {
		parts = append(parts, fmt.Sprintf("risk=%d", risk.Score))
	}
	if d.OperatorRequired {
		parts = append(parts, "operator="+strings.Join(d.OperatorReasons, ","))
	}
	return strings.Join(parts, " ")
}
