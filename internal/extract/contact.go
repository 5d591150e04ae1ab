package extract

import (
	"regexp"
	"strings"
)

var (
	nameRE  = regexp.MustCompile(`(?i)\b(?:my name is|name is|name:|i am|i'm|this is)\s+([^,\n]+)`)
	emailRE = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// 3-3-4 with separators, a bare 10-digit run, or a local 3-4 number.
	phoneREs = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`),
		regexp.MustCompile(`\b\d{10}\b`),
		regexp.MustCompile(`\b\d{3}[-.]\d{4}\b`),
	}
)

// PersonName extracts a name from phrases like "my name is John Smith"
// or "Name: Alex". The capture stops at a comma, the word "email", or
// end of line, and is rejected if it still looks like contact data.
func PersonName(message string) string {
	m := nameRE.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	name := m[1]
	if i := strings.Index(strings.ToLower(name), " email"); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(strings.ToLower(name), " and "); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(strings.Trim(name, " .,"))
	if name == "" || strings.ContainsAny(name, "@0123456789") {
		return ""
	}
	return name
}

// Email extracts the first email address, lowercased, and returns the
// message with that address removed so later fields don't match inside it.
func Email(message string) (email, remainder string) {
	loc := emailRE.FindStringIndex(message)
	if loc == nil {
		return "", message
	}
	return strings.ToLower(message[loc[0]:loc[1]]), message[:loc[0]] + message[loc[1]:]
}

// Phone extracts the first phone-shaped digit group. Call it on the
// remainder from Email so digits inside an address are not picked up.
func Phone(message string) string {
	for _, re := range phoneREs {
		if m := re.FindString(message); m != "" {
			return m
		}
	}
	return ""
}
