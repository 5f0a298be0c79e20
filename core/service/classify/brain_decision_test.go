package classify

import (
	"testing"
	"time"

	"brain_server/core/domain"
)

func TestDecisionEngineOperator(t *testing.T) {
	engine := NewDecisionEngine()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snapshot := domain.NewCustomerSnapshot()

	tests := []struct {
		name         string
		message      string
		mood         *MoodResult
		intent       *IntentResult
		risk         RiskAssessment
		wantOperator bool
		wantReason   string
	}{
		{
			name:         "high risk alone escalates",
			message:      "yenə eyni problem",
			intent:       &IntentResult{Intent: IntentComplaint, Confidence: 0.6},
			risk:         RiskAssessment{Level: domain.RiskHigh, Score: 9, RecommendedAction: "urgent_handoff"},
			wantOperator: true,
			wantReason:   "risk_high",
		},
		{
			name:         "human-requiring intent alone escalates",
			message:      "siz dələduzsunuz",
			intent:       &IntentResult{Intent: IntentAccusation, Confidence: 0.8, RequiresHuman: true},
			risk:         RiskAssessment{Level: domain.RiskNone},
			wantOperator: true,
			wantReason:   "intent_accusation",
		},
		{
			name:         "mood severity flag alone escalates",
			message:      "hədə qorxu",
			mood:         &MoodResult{Category: "threat", Mood: "threat", OperatorRequired: true, Confidence: 1.0},
			intent:       &IntentResult{Intent: IntentRequestInfo, Confidence: 0.5},
			risk:         RiskAssessment{Level: domain.RiskNone},
			wantOperator: true,
			wantReason:   "mood_threat",
		},
		{
			name:         "explicit operator request alone escalates",
			message:      "operator ilə danışmaq istəyirəm",
			intent:       &IntentResult{Intent: IntentRequestHelp, Confidence: 0.7},
			risk:         RiskAssessment{Level: domain.RiskLow, Score: 2},
			wantOperator: true,
			wantReason:   "requested_operator",
		},
		{
			name:         "manager keyword counts as an operator request",
			message:      "menecer çağırın",
			intent:       &IntentResult{Intent: IntentRequestHelp, Confidence: 0.7},
			risk:         RiskAssessment{Level: domain.RiskNone},
			wantOperator: true,
			wantReason:   "requested_menecer",
		},
		{
			name:         "calm conversation stays automated",
			message:      "çatdırılma nə vaxt olur",
			mood:         &MoodResult{Category: "non_emotional", Mood: "neutral", Confidence: 1.0},
			intent:       &IntentResult{Intent: IntentRequestInfo, Confidence: 0.75},
			risk:         RiskAssessment{Level: domain.RiskNone},
			wantOperator: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sales := SalesAnalysis{Approach: domain.SalesSoft, Confidence: 0.4}
			got := engine.Decide(tt.message, tt.mood, StateNeutral, tt.intent, tt.risk, sales, snapshot, now)
			if got.OperatorRequired != tt.wantOperator {
				t.Errorf("operator = %v, want %v (reasons %v)", got.OperatorRequired, tt.wantOperator, got.OperatorReasons)
			}
			if tt.wantReason != "" && !stringIn(tt.wantReason, got.OperatorReasons) {
				t.Errorf("reasons %v missing %q", got.OperatorReasons, tt.wantReason)
			}
		})
	}
}

func TestDecisionEngineToneAndLength(t *testing.T) {
	engine := NewDecisionEngine()
	now := time.Now().UTC()
	snapshot := domain.NewCustomerSnapshot()
	sales := SalesAnalysis{Approach: domain.SalesSoft, Confidence: 0.4}

	tests := []struct {
		name       string
		mood       *MoodResult
		intent     *IntentResult
		risk       RiskAssessment
		wantTone   string
		wantLength string
	}{
		{
			name:       "high risk forces calm tone",
			mood:       &MoodResult{Category: "satisfaction", Mood: "satisfied", Confidence: 1.0},
			intent:     &IntentResult{Intent: IntentThanks, Confidence: 1.0},
			risk:       RiskAssessment{Level: domain.RiskHigh, Score: 9},
			wantTone:   ToneCalm,
			wantLength: LengthShort,
		},
		{
			name:       "sad mood gets empathetic long complaint reply",
			mood:       &MoodResult{Category: "sadness", Mood: "sad", Confidence: 1.0},
			intent:     &IntentResult{Intent: IntentComplaint, Confidence: 0.6},
			risk:       RiskAssessment{Level: domain.RiskLow, Score: 2},
			wantTone:   ToneEmpathetic,
			wantLength: LengthLong,
		},
		{
			name:       "happy mood gets friendly tone",
			mood:       &MoodResult{Category: "joy", Mood: "happy", Confidence: 1.0},
			intent:     &IntentResult{Intent: IntentPositive, Confidence: 0.8},
			risk:       RiskAssessment{Level: domain.RiskNone},
			wantTone:   ToneFriendly,
			wantLength: LengthShort,
		},
		{
			name:       "unclassified mood gets professional medium",
			mood:       nil,
			intent:     &IntentResult{Intent: IntentRequestInfo, Confidence: 0.5},
			risk:       RiskAssessment{Level: domain.RiskNone},
			wantTone:   ToneProfessional,
			wantLength: LengthMedium,
		},
		{
			name:       "thinking mood gets informative tone",
			mood:       &MoodResult{Category: "thinking_state", Mood: "thinking", Confidence: 1.0},
			intent:     &IntentResult{Intent: IntentPriceQuestion, Confidence: 0.85},
			risk:       RiskAssessment{Level: domain.RiskNone},
			wantTone:   ToneInformative,
			wantLength: LengthMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Decide("test", tt.mood, StateNeutral, tt.intent, tt.risk, sales, snapshot, now)
			if got.Tone != tt.wantTone {
				t.Errorf("tone = %q, want %q", got.Tone, tt.wantTone)
			}
			if got.ResponseLength != tt.wantLength {
				t.Errorf("length = %q, want %q", got.ResponseLength, tt.wantLength)
			}
		})
	}
}

func TestDecisionEngineConfidence(t *testing.T) {
	engine := NewDecisionEngine()
	now := time.Now().UTC()
	snapshot := domain.NewCustomerSnapshot()

	intent := &IntentResult{Intent: IntentRequestInfo, Confidence: 1.0}
	risk := RiskAssessment{Level: domain.RiskNone}
	sales := SalesAnalysis{Approach: domain.SalesSoft, Confidence: 0.4}

	got := engine.Decide("salam", nil, StateNeutral, intent, risk, sales, snapshot, now)
	// (0.5 + 1.0 + 0.4) / 3 rounded to two decimals.
	if got.Confidence != 0.63 {
		t.Errorf("confidence = %f, want 0.63", got.Confidence)
	}
}

func TestDecisionEngineUnclassifiedFallback(t *testing.T) {
	engine := NewDecisionEngine()
	now := time.Now().UTC()

	snapshot := domain.NewCustomerSnapshot()
	snapshot.LastMood = "happy"

	intent := &IntentResult{Intent: IntentRequestInfo, Confidence: 0.5}
	got := engine.Decide("nədirsə", nil, StateNeutral, intent, RiskAssessment{Level: domain.RiskNone},
		SalesAnalysis{Approach: domain.SalesSoft, Confidence: 0.4}, snapshot, now)

	if !got.Unclassified {
		t.Error("expected unclassified flag")
	}
	// Display mood falls back to the last known mood, never a guess.
	if got.Mood != "happy" {
		t.Errorf("mood = %q, want happy", got.Mood)
	}
}

func TestDecisionEngineSafeDefault(t *testing.T) {
	engine := NewDecisionEngine()
	now := time.Now().UTC()

	got := engine.SafeDefault(now)
	if got.Tone != ToneNeutral {
		t.Errorf("tone = %q, want neutral", got.Tone)
	}
	if got.ResponseLength != LengthMedium {
		t.Errorf("length = %q, want medium", got.ResponseLength)
	}
	if got.OperatorRequired {
		t.Error("safe default must not escalate")
	}
	if got.SalesMode != domain.SalesOff {
		t.Errorf("sales mode = %q, want off", got.SalesMode)
	}
	if got.Confidence != 0.3 {
		t.Errorf("confidence = %f, want 0.3", got.Confidence)
	}
	if got.ID == "" {
		t.Error("expected a generated decision id")
	}
}

func TestDecisionEngineNextAction(t *testing.T) {
	engine := NewDecisionEngine()
	now := time.Now().UTC()
	snapshot := domain.NewCustomerSnapshot()

	t.Run("critical risk picks immediate handoff", func(t *testing.T) {
		intent := &IntentResult{Intent: IntentComplaint, Confidence: 0.6}
		risk := RiskAssessment{Level: domain.RiskCritical, Score: 14, RecommendedAction: "immediate_handoff"}
		got := engine.Decide("problem", nil, StateNeutral, intent, risk,
			SalesAnalysis{Approach: domain.SalesOff, Confidence: 0.1}, snapshot, now)
		if got.NextAction != "immediate_handoff" {
			t.Errorf("nextAction = %q, want immediate_handoff", got.NextAction)
		}
	})

	t.Run("sales signal routes to the sales action", func(t *testing.T) {
		intent := &IntentResult{Intent: IntentPriceQuestion, Confidence: 0.85}
		sales := SalesAnalysis{Approach: domain.SalesNormal, HasSalesSignal: true, Confidence: 0.6, RecommendedAction: "provide_information"}
		got := engine.Decide("qiymət neçədir", nil, StateNeutral, intent,
			RiskAssessment{Level: domain.RiskNone}, sales, snapshot, now)
		if got.NextAction != "provide_information" {
			t.Errorf("nextAction = %q, want provide_information", got.NextAction)
		}
	})

	t.Run("no signal and no risk just answers", func(t *testing.T) {
		intent := &IntentResult{Intent: IntentRequestInfo, Confidence: 0.5}
		got := engine.Decide("salam", nil, StateNeutral, intent,
			RiskAssessment{Level: domain.RiskNone},
			SalesAnalysis{Approach: domain.SalesSoft, Confidence: 0.4}, snapshot, now)
		if got.NextAction != "answer" {
			t.Errorf("nextAction = %q, want answer", got.NextAction)
		}
	})
}
