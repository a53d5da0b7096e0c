package fuzzy

import "testing"

func TestNormalizer_NormalizeQuery(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple query",
			input:    "The Beatles",
			expected: "The Beatles",
		},
		{
			name:     "Punctuation collapses",
			input:    "P!nk - So What",
			expected: "P nk So What",
		},
		{
			name:     "Accents stripped",
			input:    "Beyoncé",
			expected: "Beyonce",
		},
		{
			name:     "Whitespace folded",
			input:    "  hello   world  ",
			expected: "hello world",
		},
		{
			name:     "CJK preserved",
			input:    "周杰伦 晴天",
			expected: "周杰伦 晴天",
		},
		{
			name:     "Empty query",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizer.NormalizeQuery(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeQuery() = %q, want %q", result, tt.expected)
			}
		})
	}
}
