package chat

import (
	"testing"
)

func TestIsInScope(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{
			name:    "weather question rejected",
			message: "What's the weather like in Berlin today?",
			want:    false,
		},
		{
			name:    "poem request rejected",
			message: "Please write a poem about the sea",
			want:    false,
		},
		{
			name:    "pricing question accepted",
			message: "How should I price my SaaS for small agencies?",
			want:    true,
		},
		{
			name:    "competitor question accepted",
			message: "Who are the strongest competitors in this niche?",
			want:    true,
		},
		{
			name:    "short smalltalk accepted",
			message: "ok thanks bye",
			want:    true,
		},
		{
			name:    "long keywordless rambling rejected",
			message: "can you tell me the best way to cook pasta tonight for my family",
			want:    false,
		},
		{
			name:    "keyword must match whole word",
			message: "the moderators banned some abusers from the forum yesterday evening",
			want:    false,
		},
		{
			name:    "keyword beats length",
			message: "I have been thinking for a long time about how my startup could finally grow",
			want:    true,
		},
		{
			name:    "case insensitive",
			message: "WHAT IS A GOOD PRICING MODEL?",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInScope(tt.message); got != tt.want {
				t.Errorf("IsInScope(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}
