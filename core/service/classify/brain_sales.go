package classify

import (
	"brain_server/core/domain"
)

// =============================================================================
// Sales Judger
// =============================================================================

// Lead score thresholds.
const (
	leadColdThreshold = 30
	leadWarmThreshold = 60
	leadHotThreshold  = 80
)

// SalesAnalysis grades sales readiness. Sales pressure is never applied to a
// distressed customer: the Allowed flag blocks posture entirely.
type SalesAnalysis struct {
	Allowed              bool
	BlockReasons         []string
	Approach             string
	PricingStrategy      string
	HasSalesSignal       bool
	ConversionLikelihood int
	Confidence           float64
	RecommendedAction    string
}

// SalesJudger evaluates lead state against the current mood.
type SalesJudger struct{}

func NewSalesJudger() *SalesJudger {
	return &SalesJudger{}
}

func (j *SalesJudger) Analyze(message, mood string, snapshot domain.CustomerSnapshot) SalesAnalysis {
	normalized := Normalize(message)

	allowed := true
	var blockReasons []string

	if stringIn(mood, hostileMoods) {
		allowed = false
		blockReasons = append(blockReasons, "customer_hostile")
	}
	if snapshot.AngerLevel > angerMedThreshold {
		allowed = false
		blockReasons = append(blockReasons, "high_anger")
	}
	if snapshot.StressLevel > stressMedThreshold {
		allowed = false
		blockReasons = append(blockReasons, "high_stress")
	}

	approach := domain.SalesOff
	confidence := 0.1
	if allowed {
		switch {
		case snapshot.LeadScore > leadHotThreshold:
			approach = domain.SalesClosing
			confidence = 0.85
		case snapshot.LeadScore > leadWarmThreshold:
			approach = domain.SalesAggressive
			confidence = 0.70
		case snapshot.LeadScore > leadColdThreshold:
			approach = domain.SalesNormal
			confidence = 0.60
		default:
			approach = domain.SalesSoft
			confidence = 0.40
		}
	}

	hasSignal := containsAny(normalized, priceWords) || containsAny(normalized, productWords)

	return SalesAnalysis{
		Allowed:              allowed,
		BlockReasons:         blockReasons,
		Approach:             approach,
		PricingStrategy:      pricingStrategy(snapshot.PriceSensitivity),
		HasSalesSignal:       hasSignal,
		ConversionLikelihood: conversionLikelihood(snapshot.LeadScore, snapshot.SalesStage, mood),
		Confidence:           confidence,
		RecommendedAction:    salesAction(approach, hasSignal),
	}
}

func pricingStrategy(sensitivity int) string {
	switch {
	case sensitivity > 7:
		return "budget_focused"
	case sensitivity > 4:
		return "value_focused"
	default:
		return "premium_focused"
	}
}

func conversionLikelihood(leadScore int, stage, mood string) int {
	score := float64(leadScore)

	switch mood {
	case "happy", "satisfied":
		score += 20
	case "angry":
		score -= 30
	case "stressed":
		score -= 15
	}

	switch stage {
	case "cold":
		score *= 0.5
	case "hot":
		score *= 1.5
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}

func salesAction(approach string, hasSignal bool) string {
	switch approach {
	case domain.SalesOff:
		return "avoid_sales"
	case domain.SalesClosing:
		return "push_for_conversion"
	case domain.SalesAggressive:
		return "present_offer"
	case domain.SalesNormal:
		return "provide_information"
	case domain.SalesSoft:
		if hasSignal {
			return "build_interest"
		}
		return "wait_for_signal"
	default:
		return "monitor"
	}
}
