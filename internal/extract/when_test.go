package extract

import (
	"testing"
	"time"
)

// fixedNow is Saturday 2025-06-14 08:30 local.
func fixedNow(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2025, time.June, 14, 8, 30, 0, 0, time.Local)
}

func TestWhen(t *testing.T) {
	now := fixedNow(t)
	want := func(y int, m time.Month, d, hh, mm int) *time.Time {
		at := time.Date(y, m, d, hh, mm, 0, 0, time.Local)
		return &at
	}

	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{"today with pm clock", "Today at 2:00 PM", want(2025, time.June, 14, 14, 0)},
		{"tomorrow morning", "Tomorrow morning", want(2025, time.June, 15, 9, 0)},
		{"tomorrow afternoon", "tomorrow afternoon", want(2025, time.June, 15, 14, 0)},
		{"tomorrow at noon", "tomorrow at noon", want(2025, time.June, 15, 14, 0)},
		{"tomorrow evening", "tomorrow evening pls", want(2025, time.June, 15, 18, 0)},
		{"tomorrow no time defaults", "tomorrow", want(2025, time.June, 15, 10, 0)},
		{"hour without minutes", "today 5 pm", want(2025, time.June, 14, 17, 0)},
		{"dotted meridiem", "today at 9 A.M.", want(2025, time.June, 14, 9, 0)},
		{"midnight", "today 12 am", want(2025, time.June, 14, 0, 0)},
		{"twelve pm stays noon", "today 12 pm", want(2025, time.June, 14, 12, 0)},
		{"absolute future date", "14 Feb at 3:30 PM", want(2026, time.February, 14, 15, 30)},
		{"absolute date this year", "20 June", want(2025, time.June, 20, 10, 0)},
		{"absolute today not rolled", "14 june", want(2025, time.June, 14, 10, 0)},
		{"ordinal suffix", "2nd July evening", want(2025, time.July, 2, 18, 0)},
		{"past date rolls forward", "12 feb 1:00 am", want(2026, time.February, 12, 1, 0)},
		{"24h clock", "today 16:45", want(2025, time.June, 14, 16, 45)},
		{"no phrase", "I want a blood test", nil},
		{"phone digits not a time", "call me at 555-1234", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := When(tt.input, now)
			switch {
			case got == nil && tt.want == nil:
			case got == nil || tt.want == nil:
				t.Fatalf("When(%q) = %v, want %v", tt.input, got, tt.want)
			case !got.Equal(*tt.want):
				t.Fatalf("When(%q) = %v, want %v", tt.input, *got, *tt.want)
			}
		})
	}
}

func TestTo24Hour(t *testing.T) {
	tests := []struct {
		hour     int
		meridiem string
		want     int
	}{
		{9, "am", 9},
		{12, "am", 0},
		{1, "pm", 13},
		{12, "pm", 12},
		{11, "pm", 23},
	}
	for _, tt := range tests {
		if got := to24Hour(tt.hour, tt.meridiem); got != tt.want {
			t.Errorf("to24Hour(%d, %q) = %d, want %d", tt.hour, tt.meridiem, got, tt.want)
		}
	}
}
