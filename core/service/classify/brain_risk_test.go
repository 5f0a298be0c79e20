package classify

import (
	"testing"

	"brain_server/core/domain"
)

func TestRiskAnalyzer(t *testing.T) {
	analyzer := NewRiskAnalyzer()

	tests := []struct {
		name       string
		message    string
		snapshot   domain.CustomerSnapshot
		wantLevel  string
		wantScore  int
		wantAction string
	}{
		{
			name:       "fresh customer with plain message",
			message:    "salam",
			snapshot:   domain.NewCustomerSnapshot(),
			wantLevel:  domain.RiskNone,
			wantScore:  0,
			wantAction: "continue",
		},
		{
			name:       "single reported issue",
			message:    "sifarişim gəlmədi",
			snapshot:   domain.CustomerSnapshot{TrustScore: 50, IssuesReported: 1},
			wantLevel:  domain.RiskLow,
			wantScore:  2,
			wantAction: "continue",
		},
		{
			name:       "medium anger alone",
			message:    "nə vaxt hazır olar",
			snapshot:   domain.CustomerSnapshot{TrustScore: 50, AngerLevel: 6},
			wantLevel:  domain.RiskMedium,
			wantScore:  5,
			wantAction: "monitor",
		},
		{
			name:       "high anger with repeat issues",
			message:    "yenə eyni problem",
			snapshot:   domain.CustomerSnapshot{TrustScore: 50, AngerLevel: 8, IssuesReported: 2},
			wantLevel:  domain.RiskCritical,
			wantScore:  12,
			wantAction: "immediate_handoff",
		},
		{
			name:       "hostile wording in the current message",
			message:    "siz rəzil adamlarsınız",
			snapshot:   domain.NewCustomerSnapshot(),
			wantLevel:  domain.RiskMedium,
			wantScore:  7,
			wantAction: "monitor",
		},
		{
			name:       "urgent demand plus low trust",
			message:    "təcili cavab verin",
			snapshot:   domain.CustomerSnapshot{TrustScore: 20},
			wantLevel:  domain.RiskMedium,
			wantScore:  6,
			wantAction: "monitor",
		},
		{
			name:    "everything at once is capped at twenty",
			message: "təcili, siz rəzil adamlarsınız",
			snapshot: domain.CustomerSnapshot{
				TrustScore:     10,
				AngerLevel:     9,
				StressLevel:    9,
				IssuesReported: 3,
			},
			wantLevel:  domain.RiskCritical,
			wantScore:  20,
			wantAction: "immediate_handoff",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzer.Analyze(tt.message, tt.snapshot)
			if got.Level != tt.wantLevel {
				t.Errorf("level = %q, want %q (factors %v)", got.Level, tt.wantLevel, got.Factors)
			}
			if got.Score != tt.wantScore {
				t.Errorf("score = %d, want %d (factors %v)", got.Score, tt.wantScore, got.Factors)
			}
			if got.RecommendedAction != tt.wantAction {
				t.Errorf("action = %q, want %q", got.RecommendedAction, tt.wantAction)
			}
		})
	}
}

// Rising anger must never lower the score.
func TestRiskAnalyzerMonotonicInAnger(t *testing.T) {
	analyzer := NewRiskAnalyzer()

	prev := -1
	for _, anger := range []int{0, 4, 6, 8, 10} {
		snapshot := domain.CustomerSnapshot{TrustScore: 50, AngerLevel: anger}
		got := analyzer.Analyze("sifariş haqqında", snapshot)
		if got.Score < prev {
			t.Fatalf("score dropped from %d to %d at anger %d", prev, got.Score, anger)
		}
		prev = got.Score
	}
}
