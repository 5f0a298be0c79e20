package classify

import (
	"testing"

	"brain_server/core/domain"
)

// staticRules serves fixed tables; Reload is a no-op.
type staticRules struct {
	tables domain.RuleTables
}

func (s *staticRules) Tables() domain.RuleTables { return s.tables }
func (s *staticRules) Reload() error             { return nil }

func testEngine(sink domain.TelemetrySink) *Engine {
	return NewEngine(&staticRules{tables: domain.RuleTables{
		Mood:   testMoodTable(),
		Intent: testIntentTable(),
	}}, sink)
}

func TestEngineClassify(t *testing.T) {
	engine := testEngine(nil)
	snapshot := domain.NewCustomerSnapshot()

	tests := []struct {
		name         string
		message      string
		wantMood     string
		wantState    string
		wantIntent   string
		wantOperator bool
	}{
		{
			name:         "accusation escalates with accusing state",
			message:      "siz dələduzsunuz",
			wantMood:     "accusation",
			wantState:    "accusing",
			wantIntent:   IntentAccusation,
			wantOperator: true,
		},
		{
			name:       "greeting stays automated",
			message:    "salam",
			wantMood:   "neutral",
			wantState:  StateNeutral,
			wantIntent: IntentGreeting,
		},
		{
			name:       "price question is inquiring",
			message:    "qiymət neçədir?",
			wantMood:   "neutral", // no mood category matches, falls to prior
			wantState:  StateInquiring,
			wantIntent: IntentPriceQuestion,
		},
		{
			name:       "gratitude",
			message:    "təşəkkür edirəm",
			wantMood:   "satisfied",
			wantState:  StateSatisfied,
			wantIntent: IntentThanks,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Classify(tt.message, snapshot)
			if got.Decision == nil {
				t.Fatal("expected a decision")
			}
			if got.Decision.Mood != tt.wantMood {
				t.Errorf("mood = %q, want %q", got.Decision.Mood, tt.wantMood)
			}
			if got.Decision.EmotionalState != tt.wantState {
				t.Errorf("state = %q, want %q", got.Decision.EmotionalState, tt.wantState)
			}
			if got.Decision.Intent != tt.wantIntent {
				t.Errorf("intent = %q, want %q", got.Decision.Intent, tt.wantIntent)
			}
			if got.Decision.OperatorRequired != tt.wantOperator {
				t.Errorf("operator = %v, want %v (reasons %v)",
					got.Decision.OperatorRequired, tt.wantOperator, got.Decision.OperatorReasons)
			}
			if got.Decision.ID == "" {
				t.Error("expected a decision id")
			}
		})
	}
}

func TestEngineEmptyMessage(t *testing.T) {
	engine := testEngine(nil)
	snapshot := domain.NewCustomerSnapshot()
	snapshot.Intent.HasActiveComplaint = true

	got := engine.Classify("   \t  ", snapshot)
	if got.Decision.NextAction != "ignore" {
		t.Errorf("nextAction = %q, want ignore", got.Decision.NextAction)
	}
	if got.Decision.Mood != "neutral" {
		t.Errorf("mood = %q, want neutral", got.Decision.Mood)
	}
	// Context must pass through untouched.
	if !got.Context.HasActiveComplaint {
		t.Error("empty message must not alter intent context")
	}
	if got.Mood != nil || got.Intent != nil {
		t.Error("empty message must skip classification")
	}
}

// Identical messages must classify identically regardless of prior affect.
func TestEngineStateless(t *testing.T) {
	engine := testEngine(nil)

	calm := domain.NewCustomerSnapshot()
	agitated := domain.CustomerSnapshot{
		TrustScore:  20,
		AngerLevel:  9,
		StressLevel: 9,
		LastMood:    "angry",
		SalesStage:  "cold",
	}

	first := engine.Classify("salam", calm)
	second := engine.Classify("salam", agitated)

	if first.Decision.Mood != second.Decision.Mood {
		t.Errorf("mood differs: %q vs %q", first.Decision.Mood, second.Decision.Mood)
	}
	if first.Decision.EmotionalState != second.Decision.EmotionalState {
		t.Errorf("state differs: %q vs %q", first.Decision.EmotionalState, second.Decision.EmotionalState)
	}
	if first.Decision.Intent != second.Decision.Intent {
		t.Errorf("intent differs: %q vs %q", first.Decision.Intent, second.Decision.Intent)
	}
	// Risk is allowed — and expected — to differ.
	if second.Risk.Score <= first.Risk.Score {
		t.Errorf("expected higher risk for agitated prior: %d vs %d", second.Risk.Score, first.Risk.Score)
	}
}

// Escalation only goes one way: adding a critical phrase to a benign message
// flips operator_required on, and surrounding a critical phrase with benign
// text never clears it.
func TestEngineEscalationMonotonic(t *testing.T) {
	engine := testEngine(nil)
	snapshot := domain.NewCustomerSnapshot()

	benign := engine.Classify("salam", snapshot)
	if benign.Decision.OperatorRequired {
		t.Fatal("greeting alone must not require an operator")
	}

	escalated := engine.Classify("salam siz dələduzsunuz", snapshot)
	if !escalated.Decision.OperatorRequired {
		t.Error("appending an accusation must require an operator")
	}
	if escalated.Decision.Mood != "accusation" {
		t.Errorf("mood = %q, want accusation", escalated.Decision.Mood)
	}

	padded := engine.Classify("siz dələduzsunuz salam təşəkkür edirəm", snapshot)
	if !padded.Decision.OperatorRequired {
		t.Error("benign padding must not clear the escalation")
	}
	if padded.Decision.Mood != "accusation" {
		t.Errorf("mood = %q, want accusation over satisfaction", padded.Decision.Mood)
	}
}

func TestEngineUnclassifiedMood(t *testing.T) {
	sink := &recordingSink{}
	engine := testEngine(sink)

	snapshot := domain.NewCustomerSnapshot()
	snapshot.LastMood = "happy"

	got := engine.Classify("kitab oxuyuram", snapshot)
	if got.Mood != nil {
		t.Fatalf("expected no mood match, got %+v", got.Mood)
	}
	if !got.Decision.Unclassified {
		t.Error("expected unclassified decision")
	}
	if got.Decision.Mood != "happy" {
		t.Errorf("display mood = %q, want the prior mood", got.Decision.Mood)
	}
	if len(sink.phrases) != 1 {
		t.Errorf("expected one unknown-phrase record, got %d", len(sink.phrases))
	}
	// Intent still resolves; a happy prior mood biases toward product interest.
	if got.Intent == nil || got.Intent.Intent != IntentProductInterest {
		t.Errorf("intent = %+v, want product_interest", got.Intent)
	}
}

func TestEngineComplaintContextLifecycle(t *testing.T) {
	engine := testEngine(nil)
	snapshot := domain.NewCustomerSnapshot()

	// Turn 1: a complaint opens the context.
	first := engine.Classify("şikayətim var", snapshot)
	if !first.Context.HasActiveComplaint {
		t.Fatal("complaint should open an active complaint")
	}

	// Turn 2: gratitude resolves it.
	snapshot.Intent = first.Context
	snapshot.LastIntent = first.Intent.Intent
	second := engine.Classify("təşəkkür edirəm", snapshot)
	if second.Context.HasActiveComplaint {
		t.Error("gratitude after a complaint should clear the active complaint")
	}
}

func TestEnginePanicRecovery(t *testing.T) {
	// A rule source that panics simulates a corrupt table mid-reload.
	engine := NewEngine(panicRules{}, nil)
	snapshot := domain.NewCustomerSnapshot()

	got := engine.Classify("salam", snapshot)
	if got.Decision == nil {
		t.Fatal("expected the safe default decision")
	}
	if got.Decision.Confidence != 0.3 {
		t.Errorf("confidence = %f, want 0.3", got.Decision.Confidence)
	}
	if got.Decision.OperatorRequired {
		t.Error("safe default must not escalate")
	}
}

type panicRules struct{}

func (panicRules) Tables() domain.RuleTables { panic("corrupt rule table") }
func (panicRules) Reload() error             { return nil }
