package classify

import (
	"testing"
	"time"

	"brain_server/core/domain"
)

func testIntentTable() domain.RuleTable {
	return domain.RuleTable{
		"complaint":      {Phrases: []string{"şikayətim var"}, Goal: "resolve_issue", PainPoints: []string{"service"}},
		"price_question": {Phrases: []string{"qiymət neçədir"}, Goal: "learn_price"},
		"greeting":       {Phrases: []string{"salam"}, Goal: "greet"},
		"thanks":         {Phrases: []string{"təşəkkür"}, Goal: "thank"},
	}
}

func TestIntentClassifierRuleTable(t *testing.T) {
	classifier := NewIntentClassifier()
	table := testIntentTable()

	tests := []struct {
		name           string
		message        string
		wantIntent     string
		wantGoal       string
		wantConfidence float64
	}{
		{
			name:           "explicit complaint phrase",
			message:        "şikayətim var sizdən",
			wantIntent:     IntentComplaint,
			wantGoal:       "resolve_issue",
			wantConfidence: 1.0,
		},
		{
			name:           "price question phrase",
			message:        "qiymət neçədir bu paltar üçün",
			wantIntent:     IntentPriceQuestion,
			wantGoal:       "learn_price",
			wantConfidence: 1.0,
		},
		{
			name:           "greeting",
			message:        "salam",
			wantIntent:     IntentGreeting,
			wantGoal:       "greet",
			wantConfidence: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.message, table, Prior{})
			if got.Intent != tt.wantIntent {
				t.Errorf("intent = %q, want %q", got.Intent, tt.wantIntent)
			}
			if got.Goal != tt.wantGoal {
				t.Errorf("goal = %q, want %q", got.Goal, tt.wantGoal)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %f, want %f", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestIntentClassifierFallback(t *testing.T) {
	classifier := NewIntentClassifier()
	// Empty table forces the heuristic tier.
	var table domain.RuleTable

	tests := []struct {
		name          string
		message       string
		prior         Prior
		wantIntent    string
		wantGoal      string
		wantHuman     bool
		wantQuestion  bool
		wantPainPoint string
	}{
		{
			name:          "price question by question mark and keyword",
			message:       "qiymət neçədir?",
			wantIntent:    IntentPriceQuestion,
			wantGoal:      "learn_price",
			wantQuestion:  true,
			wantPainPoint: "price",
		},
		{
			name:         "plain question falls to info request",
			message:      "çatdırılma harda olur",
			wantIntent:   IntentRequestInfo,
			wantGoal:     "get_information",
			wantQuestion: true,
		},
		{
			name:       "legal language is an accusation needing a human",
			message:    "siz dələduzsunuz",
			wantIntent: IntentAccusation,
			wantGoal:   "resolve_dispute",
			wantHuman:  true,
		},
		{
			name:       "positive feedback",
			message:    "çox sağ olun, hər şey əladır",
			wantIntent: IntentPositive,
			wantGoal:   "express_satisfaction",
		},
		{
			name:          "price with negative verb is a cost complaint",
			message:       "bəyənmədim çox baha",
			wantIntent:    IntentComplaint,
			wantGoal:      "cost_reduction",
			wantPainPoint: "price",
		},
		{
			name:         "question marker wins over slow-response wording",
			message:      "niyə gec cavab yazırsınız",
			wantIntent:   IntentRequestInfo,
			wantGoal:     "get_information",
			wantQuestion: true,
		},
		{
			name:       "delay plus reply without question marker",
			message:    "çox gec cavab verirsiniz daim",
			wantIntent: IntentSlowResponse,
			wantGoal:   "get_response",
		},
		{
			name:       "product words with neutral prior",
			message:    "bu mehsul haqda fikirləşirəm, sifariş verərəm",
			wantIntent: IntentProductInterest,
			wantGoal:   "evaluate_product",
		},
		{
			name:       "product words gated off when prior mood hostile",
			message:    "paket sifariş baxıram",
			prior:      Prior{Mood: "angry"},
			wantIntent: IntentRequestInfo,
			wantGoal:   "get_information",
		},
		{
			name:       "bare negative reads as complaint",
			message:    "yaxşıdır amma problem var",
			wantIntent: IntentComplaint,
			wantGoal:   "resolve_issue",
		},
		{
			name:       "nothing matches defaults to info request",
			message:    "sabah görüşərik",
			wantIntent: IntentRequestInfo,
			wantGoal:   "get_information",
		},
		{
			name:       "positive prior mood biases toward product interest",
			message:    "davam edək",
			prior:      Prior{Mood: "happy"},
			wantIntent: IntentProductInterest,
			wantGoal:   "evaluate_product",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.message, table, tt.prior)
			if got.Intent != tt.wantIntent {
				t.Errorf("intent = %q, want %q", got.Intent, tt.wantIntent)
			}
			if got.Goal != tt.wantGoal {
				t.Errorf("goal = %q, want %q", got.Goal, tt.wantGoal)
			}
			if got.RequiresHuman != tt.wantHuman {
				t.Errorf("requiresHuman = %v, want %v", got.RequiresHuman, tt.wantHuman)
			}
			if got.IsQuestion != tt.wantQuestion {
				t.Errorf("isQuestion = %v, want %v", got.IsQuestion, tt.wantQuestion)
			}
			if tt.wantPainPoint != "" && !stringIn(tt.wantPainPoint, got.PainPoints) {
				t.Errorf("pain points %v missing %q", got.PainPoints, tt.wantPainPoint)
			}
			if got.Confidence <= 0 || got.Confidence > 1 {
				t.Errorf("confidence %f out of range", got.Confidence)
			}
		})
	}
}

func TestIntentClassifierEmptyMessage(t *testing.T) {
	classifier := NewIntentClassifier()

	got := classifier.Classify("   ", testIntentTable(), Prior{})
	if got.Intent != IntentRequestInfo {
		t.Errorf("intent = %q, want %q", got.Intent, IntentRequestInfo)
	}
	if got.Confidence != 0.3 {
		t.Errorf("confidence = %f, want 0.3", got.Confidence)
	}
}

func TestApplyContext(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		result         *IntentResult
		ctx            domain.IntentContext
		previousIntent string
		mood           string
		wantActive     bool
	}{
		{
			name:       "complaint opens an active complaint",
			result:     &IntentResult{Intent: IntentComplaint},
			wantActive: true,
		},
		{
			name:           "thanks after complaint resolves it",
			result:         &IntentResult{Intent: IntentThanks},
			ctx:            domain.IntentContext{HasActiveComplaint: true},
			previousIntent: IntentComplaint,
			wantActive:     false,
		},
		{
			name:       "positive feedback always clears",
			result:     &IntentResult{Intent: IntentPositive},
			ctx:        domain.IntentContext{HasActiveComplaint: true},
			wantActive: false,
		},
		{
			name:           "question during complaint leaves it open",
			result:         &IntentResult{Intent: IntentRequestInfo},
			ctx:            domain.IntentContext{HasActiveComplaint: true},
			previousIntent: IntentComplaint,
			mood:           "angry",
			wantActive:     true,
		},
		{
			name:   "nil result leaves context untouched",
			result: nil,
			ctx:    domain.IntentContext{HasActiveComplaint: true},

			wantActive: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyContext(tt.result, tt.ctx, tt.previousIntent, tt.mood, now)
			if got.HasActiveComplaint != tt.wantActive {
				t.Errorf("hasActiveComplaint = %v, want %v", got.HasActiveComplaint, tt.wantActive)
			}
		})
	}

	t.Run("complaint stamps timestamp", func(t *testing.T) {
		got := ApplyContext(&IntentResult{Intent: IntentSlowResponse}, domain.IntentContext{}, "", "", now)
		if !got.LastComplaintAt.Equal(now) {
			t.Errorf("lastComplaintAt = %v, want %v", got.LastComplaintAt, now)
		}
	})
}
