package domain

import (
	"context"
	"time"
)

// =============================================================================
// Decision Record (pipeline output)
// =============================================================================

// Risk tiers, ordered by severity.
const (
	RiskNone     = "none"
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Sales posture modes.
const (
	SalesOff        = "off"
	SalesSoft       = "soft"
	SalesNormal     = "normal"
	SalesAggressive = "aggressive"
	SalesClosing    = "closing"
)

// DecisionRecord is produced once per inbound message and handed back to the
// caller; the pipeline holds no reference to it afterward.
type DecisionRecord struct {
	ID             string   `json:"id"`
	Mood           string   `json:"mood"`
	EmotionalState string   `json:"emotional_state"`
	Intent         string   `json:"intent"`
	Goal           string   `json:"goal,omitempty"`
	PainPoints     []string `json:"pain_points,omitempty"`

	OperatorRequired bool     `json:"operator_required"`
	OperatorReasons  []string `json:"operator_reasons,omitempty"`

	RiskLevel   string   `json:"risk_level"`
	RiskScore   int      `json:"risk_score"`
	RiskFactors []string `json:"risk_factors,omitempty"`

	Tone           string  `json:"tone"`
	ResponseLength string  `json:"response_length"`
	SalesMode      string  `json:"sales_mode"`
	NextAction     string  `json:"next_action"`
	Confidence     float64 `json:"confidence"`
	Rationale      string  `json:"rationale,omitempty"`

	// Unclassified marks a message that matched no mood category. The mood
	// field then carries the caller-chosen display fallback, not a guess.
	Unclassified bool      `json:"unclassified,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// DecisionLog is the append-only audit trail of decisions.
type DecisionLog interface {
	Append(ctx context.Context, companyID, platform, userID, message string, d *DecisionRecord) error
}

// =============================================================================
// Unknown-phrase telemetry
// =============================================================================

// UnknownPhrase is a rule-authoring feedback record for messages no mood
// category matched. Deduplicated by normalized phrase.
type UnknownPhrase struct {
	Phrase            string    `json:"phrase" bson:"phrase"`
	Normalized        string    `json:"normalized" bson:"normalized"`
	SuspectedCategory string    `json:"suspected_category,omitempty" bson:"suspected_category,omitempty"`
	Count             int       `json:"count" bson:"count"`
	FirstSeen         time.Time `json:"first_seen" bson:"first_seen"`
	LastSeen          time.Time `json:"last_seen" bson:"last_seen"`
}

// TelemetrySink records unknown phrases. Best-effort: implementations must
// never let a sink failure surface into classification.
type TelemetrySink interface {
	RecordUnknown(phrase, normalized, suspectedCategory string)
}

// UnknownPhraseRepository is the durable store behind the telemetry pipeline.
type UnknownPhraseRepository interface {
	UpsertUnknown(ctx context.Context, p *UnknownPhrase) error
	ListUnknown(ctx context.Context, limit int) ([]*UnknownPhrase, error)
	ClearUnknown(ctx context.Context) (int, error)
}
