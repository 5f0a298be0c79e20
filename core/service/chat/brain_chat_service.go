// Package chat orchestrates one inbound message end to end: load the
// customer brain, classify, fold the decision back into the brain, persist,
// escalate, audit, and render the reply.
package chat

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"brain_server/core/domain"
	"brain_server/core/service/classify"
	"brain_server/pkg/logger"
)

// StatsRecorder receives per-message counters. Failures are swallowed by the
// service; counters are advisory.
type StatsRecorder interface {
	Record(ctx context.Context, companyID, mood, intent string, operator, unclassified bool) error
}

// ChatRequest identifies the sender and carries the message text.
type ChatRequest struct {
	CompanyID string `json:"company_id"`
	Platform  string `json:"platform"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
}

// ChatReply is the service output. Silenced means a human currently owns the
// conversation, so no automated text goes out (Reply is empty).
type ChatReply struct {
	Reply    string                 `json:"reply"`
	Silenced bool                   `json:"silenced"`
	Decision *domain.DecisionRecord `json:"decision"`
}

// ChatService wires the classification engine to its surrounding stores.
type ChatService struct {
	customers domain.CustomerRepository
	engine    *classify.Engine
	handoff   domain.HandoffStore
	audit     domain.DecisionLog
	stats     StatsRecorder
	now       func() time.Time

	// locks serialize messages per customer; concurrent updates from the same
	// chat would otherwise race the read-modify-write on the brain.
	locks [64]sync.Mutex
}

// NewChatService creates a new ChatService. audit and stats may be nil.
func NewChatService(
	customers domain.CustomerRepository,
	engine *classify.Engine,
	handoff domain.HandoffStore,
	audit domain.DecisionLog,
	stats StatsRecorder,
) *ChatService {
	return &ChatService{
		customers: customers,
		engine:    engine,
		handoff:   handoff,
		audit:     audit,
		stats:     stats,
		now:       time.Now,
	}
}

// customerLock returns the stripe lock for one customer key.
func (s *ChatService) customerLock(companyID, platform, userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(companyID))
	h.Write([]byte{0})
	h.Write([]byte(platform))
	h.Write([]byte{0})
	h.Write([]byte(userID))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}

// HandleMessage processes one inbound message. The brain is updated and the
// decision audited even while a handoff is active, so the human operator keeps
// an up-to-date picture; only the automated reply is suppressed.
func (s *ChatService) HandleMessage(ctx context.Context, req *ChatRequest) (*ChatReply, error) {
	lock := s.customerLock(req.CompanyID, req.Platform, req.UserID)
	lock.Lock()
	defer lock.Unlock()

	now := s.now().UTC()

	brain, err := s.customers.Get(ctx, req.CompanyID, req.Platform, req.UserID)
	if err != nil {
		return nil, err
	}
	if brain == nil {
		brain = domain.NewCustomerBrain(req.CompanyID, req.Platform, req.UserID, req.Username, now)
	}

	result := s.engine.Classify(req.Message, brain.Snapshot())
	s.applyDecision(brain, req.Message, result, now)

	if err := s.customers.Upsert(ctx, brain); err != nil {
		return nil, err
	}

	silenced, err := s.handoff.Active(ctx, req.CompanyID, req.Platform, req.UserID)
	if err != nil {
		logger.WithError(err).Error("failed to check handoff state")
		silenced = false
	}

	if result.Decision.OperatorRequired && !silenced {
		reason := strings.Join(result.Decision.OperatorReasons, ",")
		if err := s.handoff.Set(ctx, req.CompanyID, req.Platform, req.UserID, true, reason); err != nil {
			logger.WithError(err).Error("failed to set handoff flag")
		}
	}

	if s.audit != nil {
		if err := s.audit.Append(ctx, req.CompanyID, req.Platform, req.UserID, req.Message, result.Decision); err != nil {
			logger.WithError(err).Error("failed to append decision log")
		}
	}
	if s.stats != nil {
		intentLabel := ""
		if result.Intent != nil {
			intentLabel = result.Intent.Intent
		}
		if err := s.stats.Record(ctx, req.CompanyID, result.Decision.Mood, intentLabel,
			result.Decision.OperatorRequired, result.Decision.Unclassified); err != nil {
			logger.WithError(err).Error("failed to record stats")
		}
	}

	reply := &ChatReply{Decision: result.Decision}
	if silenced {
		reply.Silenced = true
		return reply, nil
	}
	reply.Reply = RenderReply(result)
	return reply, nil
}

// Release clears the handoff flag and the persisted operator marker.
func (s *ChatService) Release(ctx context.Context, companyID, platform, userID string) error {
	if err := s.handoff.Set(ctx, companyID, platform, userID, false, ""); err != nil {
		return err
	}
	brain, err := s.customers.Get(ctx, companyID, platform, userID)
	if err != nil || brain == nil {
		return err
	}
	brain.Psychology.OperatorRequired = false
	return s.customers.Upsert(ctx, brain)
}

// =============================================================================
// Brain update rules
// =============================================================================

const (
	affectMax    = 10
	trustMax     = 100
	leadScoreMax = 100
)

// applyDecision folds one classification result into the persisted brain.
// Affect levels move in small steps and decay toward zero on neutral turns, so
// a single message never whipsaws the long-term picture.
func (s *ChatService) applyDecision(brain *domain.CustomerBrain, message string, result classify.Result, now time.Time) {
	d := result.Decision

	// Identity
	brain.Identity.LastSeen = now
	if brain.Identity.FirstSeen.IsZero() {
		brain.Identity.FirstSeen = now
	}
	brain.Identity.TrustScore = clamp(brain.Identity.TrustScore+trustDelta(d), 0, trustMax)

	// Behavior
	b := &brain.Behavior
	b.AvgMessageLength = (b.AvgMessageLength*b.MessageCount + len([]rune(message))) / (b.MessageCount + 1)
	b.MessageCount++
	b.MessageFrequency = messageFrequency(b.MessageCount)
	b.ActiveHours = appendHour(b.ActiveHours, now.Hour())

	// Psychology
	p := &brain.Psychology
	p.LastMood = p.CurrentMood
	p.CurrentMood = d.Mood
	p.EmotionalState = d.EmotionalState
	p.LastReason = d.Rationale
	p.LastMessageType = d.Intent
	p.AngerLevel = clamp(p.AngerLevel+angerDelta(d.Mood), 0, affectMax)
	p.StressLevel = clamp(p.StressLevel+stressDelta(d.Mood), 0, affectMax)
	p.ConfidenceLevel = d.Confidence
	if d.OperatorRequired {
		p.OperatorRequired = true
	}

	// Intent & interest
	in := &brain.Intent
	in.LastIntent = d.Intent
	in.Intents = domain.MergeLists(in.Intents, []string{d.Intent})
	in.PainPoints = domain.MergeLists(in.PainPoints, d.PainPoints)
	if d.Goal != "" {
		in.CurrentGoal = d.Goal
	}
	in.Context = result.Context

	// Relationship
	r := &brain.Relationship
	r.InteractionCount++
	if complaintLikeIntents[d.Intent] {
		r.IssuesReported++
	}
	r.TrustLevel = float64(brain.Identity.TrustScore) / trustMax
	r.EngagementLevel = engagementLevel(r.InteractionCount)

	// Sales
	sl := &brain.Sales
	sl.LeadScore = clamp(sl.LeadScore+leadDelta(d, result.Sales), 0, leadScoreMax)
	sl.Stage = salesStage(sl.LeadScore)
	if result.Sales.HasSalesSignal {
		sl.BuyingSignals = domain.MergeLists(sl.BuyingSignals, []string{d.Intent})
	}

	brain.UpdatedAt = now
}

var complaintLikeIntents = map[string]bool{
	classify.IntentComplaint:    true,
	classify.IntentSlowResponse: true,
	classify.IntentAccusation:   true,
}

// severityMoods are the critical categories that always escalate.
var severityMoods = map[string]bool{
	"abuse":      true,
	"threat":     true,
	"blackmail":  true,
	"accusation": true,
	"harassment": true,
	"urgency":    true,
}

func angerDelta(mood string) int {
	switch {
	case severityMoods[mood]:
		return 3
	case mood == "angry":
		return 2
	case mood == "frustrated":
		return 1
	case mood == "happy" || mood == "satisfied":
		return -2
	default:
		return -1
	}
}

func stressDelta(mood string) int {
	switch mood {
	case "stressed":
		return 2
	case "urgency", "sad":
		return 1
	case "happy", "satisfied":
		return -2
	default:
		return -1
	}
}

func trustDelta(d *domain.DecisionRecord) int {
	switch d.Intent {
	case classify.IntentAccusation:
		return -5
	case classify.IntentComplaint, classify.IntentSlowResponse:
		return -2
	case classify.IntentThanks, classify.IntentPositive:
		return 2
	case classify.IntentConfirmation:
		return 1
	default:
		return 0
	}
}

func leadDelta(d *domain.DecisionRecord, sales classify.SalesAnalysis) int {
	delta := 0
	switch d.Intent {
	case classify.IntentProductInterest:
		delta += 10
	case classify.IntentPriceQuestion, classify.IntentComparison:
		delta += 5
	case classify.IntentComplaint:
		delta -= 5
	case classify.IntentAccusation:
		delta -= 10
	}
	if sales.HasSalesSignal {
		delta += 5
	}
	return delta
}

func salesStage(leadScore int) string {
	switch {
	case leadScore > 80:
		return "hot"
	case leadScore > 30:
		return "warm"
	default:
		return "cold"
	}
}

func engagementLevel(interactions int) string {
	switch {
	case interactions > 50:
		return "high"
	case interactions > 10:
		return "medium"
	default:
		return "low"
	}
}

func messageFrequency(count int) string {
	switch {
	case count > 20:
		return "frequent"
	case count > 5:
		return "regular"
	default:
		return "occasional"
	}
}

func appendHour(hours []int, hour int) []int {
	for _, h := range hours {
		if h == hour {
			return hours
		}
	}
	return append(hours, hour)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
