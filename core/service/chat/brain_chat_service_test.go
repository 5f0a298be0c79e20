package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"brain_server/core/domain"
	"brain_server/core/service/classify"
)

// =============================================================================
// Test doubles
// =============================================================================

type memoryCustomers struct {
	brains map[string]*domain.CustomerBrain
}

func newMemoryCustomers() *memoryCustomers {
	return &memoryCustomers{brains: make(map[string]*domain.CustomerBrain)}
}

func customerKey(companyID, platform, userID string) string {
	return companyID + "/" + platform + "/" + userID
}

func (m *memoryCustomers) Get(_ context.Context, companyID, platform, userID string) (*domain.CustomerBrain, error) {
	return m.brains[customerKey(companyID, platform, userID)], nil
}

func (m *memoryCustomers) Upsert(_ context.Context, brain *domain.CustomerBrain) error {
	m.brains[customerKey(brain.Identity.CompanyID, brain.Identity.Platform, brain.Identity.UserID)] = brain
	return nil
}

func (m *memoryCustomers) ListRecent(_ context.Context, _ int) ([]*domain.CustomerBrain, error) {
	return nil, nil
}

type memoryHandoff struct {
	active map[string]string
}

func newMemoryHandoff() *memoryHandoff {
	return &memoryHandoff{active: make(map[string]string)}
}

func (m *memoryHandoff) Set(_ context.Context, companyID, platform, userID string, active bool, reason string) error {
	key := customerKey(companyID, platform, userID)
	if active {
		m.active[key] = reason
	} else {
		delete(m.active, key)
	}
	return nil
}

func (m *memoryHandoff) Active(_ context.Context, companyID, platform, userID string) (bool, error) {
	_, ok := m.active[customerKey(companyID, platform, userID)]
	return ok, nil
}

type memoryAudit struct {
	records []*domain.DecisionRecord
}

func (m *memoryAudit) Append(_ context.Context, _, _, _, _ string, d *domain.DecisionRecord) error {
	m.records = append(m.records, d)
	return nil
}

type memoryStats struct {
	calls    int
	handoffs int
}

func (m *memoryStats) Record(_ context.Context, _, _, _ string, operator, _ bool) error {
	m.calls++
	if operator {
		m.handoffs++
	}
	return nil
}

type staticRules struct {
	tables domain.RuleTables
}

func (s *staticRules) Tables() domain.RuleTables { return s.tables }
func (s *staticRules) Reload() error             { return nil }

type dropSink struct{}

func (dropSink) RecordUnknown(_, _, _ string) {}

func testRules() domain.RuleSource {
	return &staticRules{tables: domain.RuleTables{
		Mood: domain.RuleTable{
			"accusation": {Phrases: []string{"siz dələduzsunuz", "dələduzsunuz"}},
			"anger":      {Phrases: []string{"əsəbiyəm", "lap bezdirdiniz"}},
			"satisfaction": {
				Phrases: []string{"təşəkkür edirəm", "çox sağ olun"},
			},
		},
		Intent: domain.RuleTable{
			"greeting":  {Phrases: []string{"salam", "salam aleykum"}, Goal: "greet"},
			"thanks":    {Phrases: []string{"təşəkkür edirəm"}, Goal: "thank"},
			"complaint": {Phrases: []string{"şikayətim var"}, Goal: "resolve_issue"},
		},
	}}
}

type fixture struct {
	service   *ChatService
	customers *memoryCustomers
	handoff   *memoryHandoff
	audit     *memoryAudit
	stats     *memoryStats
}

func newFixture() *fixture {
	customers := newMemoryCustomers()
	handoff := newMemoryHandoff()
	audit := &memoryAudit{}
	stats := &memoryStats{}
	engine := classify.NewEngine(testRules(), dropSink{})
	service := NewChatService(customers, engine, handoff, audit, stats)
	service.now = func() time.Time { return time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC) }
	return &fixture{service: service, customers: customers, handoff: handoff, audit: audit, stats: stats}
}

func testRequest(message string) *ChatRequest {
	return &ChatRequest{
		CompanyID: "acme",
		Platform:  "telegram",
		UserID:    "u1",
		Username:  "orxan",
		Message:   message,
	}
}

// =============================================================================
// Tests
// =============================================================================

func TestHandleMessageNewCustomer(t *testing.T) {
	f := newFixture()

	reply, err := f.service.HandleMessage(context.Background(), testRequest("salam"))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply.Silenced {
		t.Fatal("Silenced = true for a plain greeting")
	}
	if !strings.Contains(reply.Reply, "Salam") {
		t.Errorf("Reply = %q, want greeting text", reply.Reply)
	}
	if reply.Decision.Intent != classify.IntentGreeting {
		t.Errorf("Decision.Intent = %q, want %q", reply.Decision.Intent, classify.IntentGreeting)
	}

	brain, _ := f.customers.Get(context.Background(), "acme", "telegram", "u1")
	if brain == nil {
		t.Fatal("customer brain was not created")
	}
	if brain.Behavior.MessageCount != 1 {
		t.Errorf("MessageCount = %d, want 1", brain.Behavior.MessageCount)
	}
	if brain.Identity.TrustScore != 50 {
		t.Errorf("TrustScore = %d, want 50", brain.Identity.TrustScore)
	}
	if brain.Intent.LastIntent != classify.IntentGreeting {
		t.Errorf("LastIntent = %q, want %q", brain.Intent.LastIntent, classify.IntentGreeting)
	}
	if len(f.audit.records) != 1 {
		t.Errorf("audit records = %d, want 1", len(f.audit.records))
	}
	if f.stats.calls != 1 {
		t.Errorf("stats calls = %d, want 1", f.stats.calls)
	}
}

func TestHandleMessageEscalation(t *testing.T) {
	f := newFixture()

	reply, err := f.service.HandleMessage(context.Background(), testRequest("siz dələduzsunuz"))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !reply.Decision.OperatorRequired {
		t.Fatal("OperatorRequired = false, want true for accusation")
	}
	if !strings.Contains(reply.Reply, "operator") {
		t.Errorf("Reply = %q, want operator handoff text", reply.Reply)
	}

	active, _ := f.handoff.Active(context.Background(), "acme", "telegram", "u1")
	if !active {
		t.Error("handoff flag not set after escalation")
	}
	if reason := f.handoff.active["acme/telegram/u1"]; !strings.Contains(reason, "mood_accusation") {
		t.Errorf("handoff reason = %q, want mood_accusation", reason)
	}

	brain, _ := f.customers.Get(context.Background(), "acme", "telegram", "u1")
	if !brain.Psychology.OperatorRequired {
		t.Error("Psychology.OperatorRequired not persisted")
	}
	if brain.Relationship.IssuesReported != 1 {
		t.Errorf("IssuesReported = %d, want 1", brain.Relationship.IssuesReported)
	}
	if brain.Identity.TrustScore != 45 {
		t.Errorf("TrustScore = %d, want 45 after accusation", brain.Identity.TrustScore)
	}
	if f.stats.handoffs != 1 {
		t.Errorf("stats handoffs = %d, want 1", f.stats.handoffs)
	}
}

func TestHandleMessageSilencedDuringHandoff(t *testing.T) {
	f := newFixture()
	f.handoff.Set(context.Background(), "acme", "telegram", "u1", true, "manual")

	reply, err := f.service.HandleMessage(context.Background(), testRequest("salam"))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !reply.Silenced {
		t.Fatal("Silenced = false while handoff active")
	}
	if reply.Reply != "" {
		t.Errorf("Reply = %q, want empty while silenced", reply.Reply)
	}

	// The brain and audit trail still update while a human owns the chat.
	brain, _ := f.customers.Get(context.Background(), "acme", "telegram", "u1")
	if brain == nil || brain.Behavior.MessageCount != 1 {
		t.Error("brain not updated while silenced")
	}
	if len(f.audit.records) != 1 {
		t.Errorf("audit records = %d, want 1", len(f.audit.records))
	}
}

func TestRelease(t *testing.T) {
	f := newFixture()

	if _, err := f.service.HandleMessage(context.Background(), testRequest("siz dələduzsunuz")); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if err := f.service.Release(context.Background(), "acme", "telegram", "u1"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	active, _ := f.handoff.Active(context.Background(), "acme", "telegram", "u1")
	if active {
		t.Error("handoff still active after Release")
	}
	brain, _ := f.customers.Get(context.Background(), "acme", "telegram", "u1")
	if brain.Psychology.OperatorRequired {
		t.Error("Psychology.OperatorRequired still set after Release")
	}
}

func TestBrainAffectTrajectory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Two angry turns push anger up, a thankful turn decays it.
	f.service.HandleMessage(ctx, testRequest("əsəbiyəm"))
	f.service.HandleMessage(ctx, testRequest("lap bezdirdiniz"))

	brain, _ := f.customers.Get(ctx, "acme", "telegram", "u1")
	if brain.Psychology.AngerLevel != 4 {
		t.Fatalf("AngerLevel = %d after two angry turns, want 4", brain.Psychology.AngerLevel)
	}

	f.service.HandleMessage(ctx, testRequest("təşəkkür edirəm"))
	brain, _ = f.customers.Get(ctx, "acme", "telegram", "u1")
	if brain.Psychology.AngerLevel != 2 {
		t.Errorf("AngerLevel = %d after satisfied turn, want 2", brain.Psychology.AngerLevel)
	}
	if brain.Intent.LastIntent != classify.IntentThanks {
		t.Errorf("LastIntent = %q, want %q", brain.Intent.LastIntent, classify.IntentThanks)
	}
}

func TestApplyDecisionSalesProgress(t *testing.T) {
	f := newFixture()
	brain := domain.NewCustomerBrain("acme", "telegram", "u1", "orxan", time.Now().UTC())

	d := &domain.DecisionRecord{Intent: classify.IntentProductInterest, Mood: "neutral", EmotionalState: "inquiring"}
	result := classify.Result{
		Decision: d,
		Intent:   &classify.IntentResult{Intent: classify.IntentProductInterest},
		Sales:    classify.SalesAnalysis{HasSalesSignal: true},
	}
	f.service.applyDecision(brain, "bu modeli almaq istəyirəm", result, time.Now().UTC())

	if brain.Sales.LeadScore != 15 {
		t.Errorf("LeadScore = %d, want 15 (product interest + sales signal)", brain.Sales.LeadScore)
	}
	if brain.Sales.Stage != "cold" {
		t.Errorf("Stage = %q, want cold at lead score 15", brain.Sales.Stage)
	}
	if len(brain.Sales.BuyingSignals) != 1 || brain.Sales.BuyingSignals[0] != classify.IntentProductInterest {
		t.Errorf("BuyingSignals = %v, want [product_interest]", brain.Sales.BuyingSignals)
	}

	// Enough accumulated interest moves the stage to warm.
	brain.Sales.LeadScore = 28
	f.service.applyDecision(brain, "qiyməti ilə maraqlanıram", classify.Result{
		Decision: &domain.DecisionRecord{Intent: classify.IntentPriceQuestion, Mood: "neutral"},
		Intent:   &classify.IntentResult{Intent: classify.IntentPriceQuestion},
	}, time.Now().UTC())
	if brain.Sales.Stage != "warm" {
		t.Errorf("Stage = %q, want warm at lead score %d", brain.Sales.Stage, brain.Sales.LeadScore)
	}
}

func TestRenderReply(t *testing.T) {
	tests := []struct {
		name   string
		result classify.Result
		want   string
	}{
		{
			name: "operator escalation uses handoff text",
			result: classify.Result{
				Decision: &domain.DecisionRecord{OperatorRequired: true, ResponseLength: classify.LengthShort},
				Intent:   &classify.IntentResult{Intent: classify.IntentGreeting},
			},
			want: "Sizi operatorla əlaqələndiririk.",
		},
		{
			name: "empty message decision renders nothing",
			result: classify.Result{
				Decision: &domain.DecisionRecord{NextAction: "ignore"},
			},
			want: "",
		},
		{
			name: "short greeting",
			result: classify.Result{
				Decision: &domain.DecisionRecord{Tone: classify.ToneFriendly, ResponseLength: classify.LengthShort},
				Intent:   &classify.IntentResult{Intent: classify.IntentGreeting},
			},
			want: "Salam! Sizə necə kömək edə bilərəm?",
		},
		{
			name: "empathetic prefix on non-apology template",
			result: classify.Result{
				Decision: &domain.DecisionRecord{Tone: classify.ToneEmpathetic, ResponseLength: classify.LengthShort},
				Intent:   &classify.IntentResult{Intent: classify.IntentConfusion},
			},
			want: "Sizi başa düşürük. İzah edək.",
		},
		{
			name: "no empathy prefix when template already apologizes",
			result: classify.Result{
				Decision: &domain.DecisionRecord{Tone: classify.ToneEmpathetic, ResponseLength: classify.LengthLong},
				Intent:   &classify.IntentResult{Intent: classify.IntentComplaint},
			},
			want: "Narahatlığınıza görə üzr istəyirik. Probleminizi araşdırıb ən qısa zamanda həll edəcəyik.",
		},
		{
			name: "unknown intent falls back to default",
			result: classify.Result{
				Decision: &domain.DecisionRecord{Tone: classify.ToneNeutral, ResponseLength: classify.LengthMedium},
				Intent:   &classify.IntentResult{Intent: "mystery"},
			},
			want: "Mesajınızı aldıq, qısa zamanda cavablandıracağıq.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderReply(tt.result); got != tt.want {
				t.Errorf("RenderReply() = %q, want %q", got, tt.want)
			}
		})
	}
}
