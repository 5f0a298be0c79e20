package domain

import (
	"context"
	"time"
)

// =============================================================================
// Customer Brain (six logical sections, persisted by the host)
// =============================================================================

// Identity describes who the customer is.
type Identity struct {
	UserID    string    `json:"user_id" bson:"user_id"`
	Username  string    `json:"username" bson:"username"`
	RealName  string    `json:"real_name,omitempty" bson:"real_name,omitempty"`
	Platform  string    `json:"platform" bson:"platform"`
	CompanyID string    `json:"company_id" bson:"company_id"`
	Language  string    `json:"language" bson:"language"`
	FirstSeen time.Time `json:"first_seen" bson:"first_seen"`
	LastSeen  time.Time `json:"last_seen" bson:"last_seen"`
	// TrustScore is 0..100, starts at 50 for a new customer.
	TrustScore int `json:"trust_score" bson:"trust_score"`
}

// Behavior tracks activity statistics.
type Behavior struct {
	MessageCount     int    `json:"message_count" bson:"message_count"`
	AvgMessageLength int    `json:"avg_message_length" bson:"avg_message_length"`
	MessageFrequency string `json:"message_frequency" bson:"message_frequency"`
	ActiveHours      []int  `json:"active_hours" bson:"active_hours"`
}

// Psychology is the per-customer affect snapshot. CurrentMood and
// EmotionalState are display values only: classification never reads them to
// bias the current message.
type Psychology struct {
	CurrentMood      string  `json:"current_mood" bson:"current_mood"`
	EmotionalState   string  `json:"emotional_state" bson:"emotional_state"`
	LastMood         string  `json:"last_mood" bson:"last_mood"`
	LastReason       string  `json:"last_reason" bson:"last_reason"`
	LastMessageType  string  `json:"last_message_type" bson:"last_message_type"`
	AngerLevel       int     `json:"anger_level" bson:"anger_level"`
	StressLevel      int     `json:"stress_level" bson:"stress_level"`
	ConfidenceLevel  float64 `json:"confidence_level" bson:"confidence_level"`
	OperatorRequired bool    `json:"operator_required" bson:"operator_required"`
}

// IntentInterest records what the customer wants, plus the small cross-turn
// complaint context the intent classifier is allowed to consult.
type IntentInterest struct {
	LastIntent  string        `json:"last_intent" bson:"last_intent"`
	Intents     []string      `json:"intents" bson:"intents"`
	Interests   []string      `json:"interests" bson:"interests"`
	CurrentGoal string        `json:"current_goal" bson:"current_goal"`
	PainPoints  []string      `json:"pain_points" bson:"pain_points"`
	Context     IntentContext `json:"context" bson:"context"`
}

// IntentContext is the deliberate exception to per-message statelessness: it
// biases intent continuity only, never mood or affect.
type IntentContext struct {
	HasActiveComplaint bool      `json:"has_active_complaint" bson:"has_active_complaint"`
	LastComplaintAt    time.Time `json:"last_complaint_at,omitempty" bson:"last_complaint_at,omitempty"`
	LastPositiveAt     time.Time `json:"last_positive_at,omitempty" bson:"last_positive_at,omitempty"`
}

// Relationship tracks the customer's standing with the business.
type Relationship struct {
	TrustLevel       float64 `json:"trust_level" bson:"trust_level"`
	Loyalty          float64 `json:"loyalty" bson:"loyalty"`
	InteractionCount int     `json:"interaction_count" bson:"interaction_count"`
	IssuesReported   int     `json:"issues_reported" bson:"issues_reported"`
	EngagementLevel  string  `json:"engagement_level" bson:"engagement_level"`
}

// Sales tracks lead state.
type Sales struct {
	LeadScore        int      `json:"lead_score" bson:"lead_score"`
	Stage            string   `json:"stage" bson:"stage"`
	PriceSensitivity int      `json:"price_sensitivity" bson:"price_sensitivity"`
	BuyingSignals    []string `json:"buying_signals" bson:"buying_signals"`
}

// CustomerBrain is the full persisted record.
type CustomerBrain struct {
	Identity     Identity       `json:"identity" bson:"identity"`
	Behavior     Behavior       `json:"behavior" bson:"behavior"`
	Psychology   Psychology     `json:"psychology" bson:"psychology"`
	Intent       IntentInterest `json:"intent_interest" bson:"intent_interest"`
	Relationship Relationship   `json:"relationship" bson:"relationship"`
	Sales        Sales          `json:"sales" bson:"sales"`
	UpdatedAt    time.Time      `json:"updated_at" bson:"updated_at"`
}

// NewCustomerBrain returns the initial record for a first-time customer.
func NewCustomerBrain(companyID, platform, userID, username string, now time.Time) *CustomerBrain {
	return &CustomerBrain{
		Identity: Identity{
			UserID:     userID,
			Username:   username,
			Platform:   platform,
			CompanyID:  companyID,
			Language:   "az",
			FirstSeen:  now,
			LastSeen:   now,
			TrustScore: 50,
		},
		Psychology: Psychology{
			CurrentMood:    "neutral",
			EmotionalState: "calm",
			LastMood:       "neutral",
			LastReason:     "initial_state",
		},
		Relationship: Relationship{EngagementLevel: "low"},
		Sales:        Sales{Stage: "cold", PriceSensitivity: 5},
		UpdatedAt:    now,
	}
}

// Snapshot extracts the read-only view the classification pipeline consumes.
func (b *CustomerBrain) Snapshot() CustomerSnapshot {
	if b == nil {
		return NewCustomerSnapshot()
	}
	return CustomerSnapshot{
		TrustScore:       b.Identity.TrustScore,
		AngerLevel:       b.Psychology.AngerLevel,
		StressLevel:      b.Psychology.StressLevel,
		IssuesReported:   b.Relationship.IssuesReported,
		LeadScore:        b.Sales.LeadScore,
		SalesStage:       b.Sales.Stage,
		PriceSensitivity: b.Sales.PriceSensitivity,
		LastMood:         b.Psychology.CurrentMood,
		LastIntent:       b.Intent.LastIntent,
		Intent:           b.Intent.Context,
	}
}

// CustomerSnapshot is the slice of prior state the core may read. LastMood is
// a display fallback for unclassifiable messages only.
type CustomerSnapshot struct {
	TrustScore       int
	AngerLevel       int
	StressLevel      int
	IssuesReported   int
	LeadScore        int
	SalesStage       string
	PriceSensitivity int
	LastMood         string
	LastIntent       string
	Intent           IntentContext
}

// NewCustomerSnapshot returns the defaults used for an unknown customer.
func NewCustomerSnapshot() CustomerSnapshot {
	return CustomerSnapshot{
		TrustScore:       50,
		SalesStage:       "cold",
		PriceSensitivity: 5,
		LastMood:         "neutral",
	}
}

// =============================================================================
// Repositories
// =============================================================================

// CustomerRepository persists customer brains. Merge semantics are field-level
// overwrite per section with list-field union; last-writer-wins per record.
type CustomerRepository interface {
	Get(ctx context.Context, companyID, platform, userID string) (*CustomerBrain, error)
	Upsert(ctx context.Context, brain *CustomerBrain) error
	ListRecent(ctx context.Context, limit int) ([]*CustomerBrain, error)
}

// HandoffStore tracks the per-customer "human-controlled" flag that silences
// the automated responder until cleared.
type HandoffStore interface {
	Set(ctx context.Context, companyID, platform, userID string, active bool, reason string) error
	Active(ctx context.Context, companyID, platform, userID string) (bool, error)
}

// MergeLists unions b into a, preserving order of first appearance.
func MergeLists(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
