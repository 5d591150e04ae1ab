package extract

import "testing"

var catalogNames = []string{
	"Complete Blood Count (CBC)",
	"Blood Count",
	"Blood Sugar Fasting",
	"Thyroid Function Test",
	"ALBUMIN",
}

func TestTestNameDirectMatch(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"exact name", "Book Blood Sugar Fasting for me", "Blood Sugar Fasting"},
		{"case insensitive", "book albumin", "ALBUMIN"},
		{"longest name wins", "I need a complete blood count (cbc) today", "Complete Blood Count (CBC)"},
		{"shorter name still findable", "book blood count", "Blood Count"},
		{"no match", "hello there", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TestName(tt.input, catalogNames); got != tt.want {
				t.Errorf("TestName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTestNameFuzzyFallback(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"phrase inside name", "book blood sugar", "Blood Sugar Fasting"},
		{"trailing test stripped", "book thyroid function test", "Thyroid Function Test"},
		{"marker form", "test: albumin please", "ALBUMIN"},
		{"article skipped", "book a thyroid function", "Thyroid Function Test"},
		{"unknown phrase", "book something weird", ""},
		{"no booking marker", "blood sugar information", ""},
		{"phrase stops before my", "book cbc my name is jane doe", "Complete Blood Count (CBC)"},
		{"phrase stops before email", "book thyroid function email jane@gmail.com", "Thyroid Function Test"},
		{"phrase stops at comma", "book albumin, jane doe here", "ALBUMIN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TestName(tt.input, catalogNames); got != tt.want {
				t.Errorf("TestName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
