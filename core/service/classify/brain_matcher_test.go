package classify

import "testing"

func TestMatches(t *testing.T) {
	tests := []struct {
		name    string
		message string
		phrase  string
		want    bool
	}{
		{
			name:    "phrase contained in longer message",
			message: "məncə qiymət çox bahadır",
			phrase:  "çox bahadır",
			want:    true,
		},
		{
			name:    "direction is one-way: message inside phrase never matches",
			message: "bahadır",
			phrase:  "qiymət çox bahadır",
			want:    false,
		},
		{
			name:    "diacritic variants match plain spelling",
			message: "coxbahadir",
			phrase:  "çox bahadır",
			want:    true,
		},
		{
			name:    "ne contraction matches",
			message: "noldu",
			phrase:  "nə oldu",
			want:    true,
		},
		{
			name:    "single-word phrase matches whole token",
			message: "mal aldım dünən",
			phrase:  "mal",
			want:    true,
		},
		{
			name:    "single-word phrase does not fire inside longer word",
			message: "normal bir gündür",
			phrase:  "mal",
			want:    false,
		},
		{
			name:    "empty phrase never matches",
			message: "salam",
			phrase:  "",
			want:    false,
		},
		{
			name:    "empty message never matches",
			message: "",
			phrase:  "salam",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.message, tt.phrase); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.message, tt.phrase, got, tt.want)
			}
		})
	}
}

func TestFindFirstMatch(t *testing.T) {
	phrases := []string{"zəhləm gedir", "əsəbiyəm", "bezmişəm"}

	phrase, found := FindFirstMatch(Normalize("daha bezmişəm sizdən"), phrases)
	if !found {
		t.Fatal("expected a match")
	}
	if phrase != "bezmişəm" {
		t.Errorf("expected phrase 'bezmişəm', got %q", phrase)
	}

	if _, found := FindFirstMatch(Normalize("sabah görüşərik"), phrases); found {
		t.Error("expected no match for unrelated message")
	}
}
