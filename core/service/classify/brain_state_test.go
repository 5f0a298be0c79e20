package classify

import (
	"testing"

	"brain_server/core/domain"
)

func TestDeriveEmotionalState(t *testing.T) {
	tests := []struct {
		name    string
		message string
		mood    string
		intent  string
		want    string
	}{
		{
			name:    "price complaint is dissatisfaction not anger",
			message: "çox bahadır",
			mood:    "angry",
			intent:  IntentComplaint,
			want:    StateDissatisfied,
		},
		{
			name:    "angry mood with corroborating words",
			message: "əsəbiyəm sizin ucbatınızdan",
			mood:    "angry",
			intent:  IntentComplaint,
			want:    StateAngry,
		},
		{
			name:    "angry mood without lexical evidence falls through",
			message: "bu işi düzəldin",
			mood:    "angry",
			intent:  IntentRequestInfo,
			want:    StateAngry, // via moodToState fallback
		},
		{
			name:    "question marker yields inquiring",
			message: "qiymət neçədir?",
			mood:    "neutral",
			intent:  IntentPriceQuestion,
			want:    StateInquiring,
		},
		{
			name:    "positive feedback yields satisfied",
			message: "təşəkkür edirəm hər şey əla",
			mood:    "satisfied",
			intent:  IntentThanks,
			want:    StateSatisfied,
		},
		{
			name:    "negative vetoes positive on complaint",
			message: "yaxşıdır amma çox baha problem var",
			mood:    "neutral",
			intent:  IntentComplaint,
			want:    StateDissatisfied,
		},
		{
			name:    "negative vetoes positive on non-complaint",
			message: "yaxşıdır amma problem var",
			mood:    "neutral",
			intent:  IntentRequestInfo,
			want:    StateNeutral,
		},
		{
			name:    "plain complaint is dissatisfied",
			message: "xidmət məni qane etmir",
			mood:    "neutral",
			intent:  IntentComplaint,
			want:    StateDissatisfied,
		},
		{
			name:    "thinking mood falls back through the mood map",
			message: "fikirləşəcəm",
			mood:    "thinking",
			intent:  IntentRequestInfo,
			want:    StateThinking,
		},
		{
			name:    "accusation mood maps to accusing",
			message: "siz dələduzsunuz",
			mood:    "accusation",
			intent:  IntentAccusation,
			want:    "accusing",
		},
		{
			name:    "unknown mood defaults to neutral never calm",
			message: "sabah görüşərik",
			mood:    "",
			intent:  IntentRequestInfo,
			want:    StateNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveEmotionalState(tt.message, tt.mood, tt.intent, nil)
			if got != tt.want {
				t.Errorf("DeriveEmotionalState(%q, %q, %q) = %q, want %q",
					tt.message, tt.mood, tt.intent, got, tt.want)
			}
		})
	}
}

func TestDeriveEmotionalStateRuleOverride(t *testing.T) {
	rules := domain.StateRules{
		IntentComplaint: {
			{Keywords: []string{"zeng"}, State: "waiting_callback"},
			{Keywords: []string{"baha"}, Moods: []string{"angry"}, State: "price_angry"},
		},
	}

	tests := []struct {
		name    string
		message string
		mood    string
		intent  string
		want    string
	}{
		{
			name:    "keyword rule wins over the cascade",
			message: "mənə zəng edin",
			mood:    "neutral",
			intent:  IntentComplaint,
			want:    "waiting_callback",
		},
		{
			name:    "mood-conditioned rule applies only on matching mood",
			message: "çox bahadır",
			mood:    "angry",
			intent:  IntentComplaint,
			want:    "price_angry",
		},
		{
			name:    "mood condition fails so the cascade decides",
			message: "çox bahadır",
			mood:    "neutral",
			intent:  IntentComplaint,
			want:    StateDissatisfied,
		},
		{
			name:    "rules for other intents are ignored",
			message: "mənə zəng edin",
			mood:    "neutral",
			intent:  IntentRequestInfo,
			want:    StateNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveEmotionalState(tt.message, tt.mood, tt.intent, rules)
			if got != tt.want {
				t.Errorf("state = %q, want %q", got, tt.want)
			}
		})
	}
}
