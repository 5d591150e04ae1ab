package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Appointment defaults when the message names a day but no clock time.
const (
	defaultHour   = 10
	morningHour   = 9
	afternoonHour = 14
	eveningHour   = 18
)

var (
	meridiemClockRE = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	plainClockRE    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	dayMonthRE      = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)

	monthsByPrefix = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	}
)

// to24Hour converts a 12-hour clock reading to 24-hour form. This is
// the only place meridiem normalization happens.
func to24Hour(hour int, meridiem string) int {
	switch meridiem {
	case "pm":
		if hour != 12 {
			return hour + 12
		}
		return 12
	case "am":
		if hour == 12 {
			return 0
		}
	}
	return hour
}

// When parses an appointment phrase out of the message. Relative days
// ("today", "tomorrow") are tried first, then absolute "<day> <month>"
// dates, rolled into next year when the date has already passed. A day
// without a clock time gets the part-of-day default, or 10:00.
// Messages with no recognizable phrase return nil.
func When(message string, now time.Time) *time.Time {
	lower := strings.ToLower(message)
	lower = strings.ReplaceAll(lower, "a.m.", "am")
	lower = strings.ReplaceAll(lower, "p.m.", "pm")

	var day time.Time
	switch {
	case strings.Contains(lower, "today"):
		day = now
	case strings.Contains(lower, "tomorrow"):
		day = now.AddDate(0, 0, 1)
	default:
		m := dayMonthRE.FindStringSubmatch(lower)
		if m == nil {
			return nil
		}
		dom, err := strconv.Atoi(m[1])
		if err != nil || dom < 1 || dom > 31 {
			return nil
		}
		month := monthsByPrefix[m[2]]
		day = time.Date(now.Year(), month, dom, 0, 0, 0, 0, now.Location())
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if day.Before(today) {
			day = day.AddDate(1, 0, 0)
		}
	}

	hour, minute := clockTime(lower)
	at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
	return &at
}

func clockTime(lower string) (hour, minute int) {
	if m := meridiemClockRE.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h >= 1 && h <= 12 {
			if m[2] != "" {
				minute, _ = strconv.Atoi(m[2])
			}
			if minute <= 59 {
				return to24Hour(h, m[3]), minute
			}
		}
	}
	if m := plainClockRE.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if h <= 23 && min <= 59 {
			return h, min
		}
	}
	switch {
	case strings.Contains(lower, "morning"):
		return morningHour, 0
	case strings.Contains(lower, "afternoon"), strings.Contains(lower, "noon"):
		return afternoonHour, 0
	case strings.Contains(lower, "evening"):
		return eveningHour, 0
	}
	return defaultHour, 0
}
