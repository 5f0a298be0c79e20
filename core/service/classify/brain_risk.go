package classify

import (
	"brain_server/core/domain"
)

// =============================================================================
// Risk Analyzer
// =============================================================================

// Risk thresholds and weights. Scores accumulate and are capped at 20.
const (
	riskScoreCap = 20

	angerHighThreshold  = 7
	angerMedThreshold   = 5
	stressHighThreshold = 8
	stressMedThreshold  = 6
	lowTrustThreshold   = 30
)

var (
	hostileWords = []string{"pis", "axmaq", "idiot", "legv", "serefsiz", "rezil"}
	urgentWords  = []string{"tecili", "derhal", "acil", "indi"}
)

// RiskAssessment grades how volatile the conversation is. It never makes a
// decision itself; the decision engine consumes it.
type RiskAssessment struct {
	Level             string
	Score             int
	Factors           []string
	RecommendedAction string
}

// RiskAnalyzer scores prior-state indicators plus current-message signals.
type RiskAnalyzer struct{}

func NewRiskAnalyzer() *RiskAnalyzer {
	return &RiskAnalyzer{}
}

// Analyze accumulates weighted risk contributions and maps the total to a
// tier with a recommended immediacy action.
func (a *RiskAnalyzer) Analyze(message string, snapshot domain.CustomerSnapshot) RiskAssessment {
	normalized := Normalize(message)

	score := 0
	var factors []string

	// Prior affect indicators.
	switch {
	case snapshot.AngerLevel > angerHighThreshold:
		score += 8
		factors = append(factors, "high_anger")
	case snapshot.AngerLevel > angerMedThreshold:
		score += 5
		factors = append(factors, "medium_anger")
	}
	switch {
	case snapshot.StressLevel > stressHighThreshold:
		score += 6
		factors = append(factors, "high_stress")
	case snapshot.StressLevel > stressMedThreshold:
		score += 3
		factors = append(factors, "medium_stress")
	}

	// Complaint history.
	switch {
	case snapshot.IssuesReported >= 2:
		score += 4
		factors = append(factors, "repeat_issues")
	case snapshot.IssuesReported >= 1:
		score += 2
		factors = append(factors, "issue_history")
	}

	// Current-message signals.
	if containsAny(normalized, hostileWords) {
		score += 7
		factors = append(factors, "hostile_language")
	}
	if containsAny(normalized, urgentWords) {
		score += 3
		factors = append(factors, "urgent_demand")
	}

	// Trust.
	if snapshot.TrustScore < lowTrustThreshold {
		score += 3
		factors = append(factors, "low_trust")
	}

	if score > riskScoreCap {
		score = riskScoreCap
	}

	level, action := riskTier(score)
	return RiskAssessment{
		Level:             level,
		Score:             score,
		Factors:           factors,
		RecommendedAction: action,
	}
}

func riskTier(score int) (level, action string) {
	switch {
	case score >= 12:
		return domain.RiskCritical, "immediate_handoff"
	case score >= 8:
		return domain.RiskHigh, "urgent_handoff"
	case score >= 5:
		return domain.RiskMedium, "monitor"
	case score >= 2:
		return domain.RiskLow, "continue"
	default:
		return domain.RiskNone, "continue"
	}
}
