package database

import "testing"

func TestRemoveDiacritics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Jiří", "Jiri"},
		{"Tomáš", "Tomas"},
		{"Zoë", "Zoe"},
		{"plain", "plain"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := RemoveDiacritics(tt.input); got != tt.expected {
				t.Errorf("RemoveDiacritics(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeProfileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Jiří Novák", "jiri novak"},
		{"  Tomáš ", "tomas"},
		{"ANNA   MARIE", "anna marie"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeProfileName(tt.input); got != tt.expected {
				t.Errorf("NormalizeProfileName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
