// Package extract pulls structured booking fields out of free-text chat
// messages. Extraction is best-effort: a field that cannot be found is
// left as its zero value, never an error.
package extract

import "time"

// Fields holds whatever booking details a message contained.
type Fields struct {
	TestName   string
	PersonName string
	Email      string
	Phone      string
	When       *time.Time
}

// HasContact reports whether enough detail was found to reach a user.
func (f Fields) HasContact() bool {
	return f.PersonName != "" && f.Email != ""
}

// DetailExtractor turns a chat message into booking fields. The regex
// implementation is the default; the seam exists so the heuristics can
// be swapped without touching the dialogue engine.
type DetailExtractor interface {
	Details(message string, now time.Time) Fields
}

// RegexDetailExtractor extracts fields with the package's regexes.
type RegexDetailExtractor struct{}

// Details extracts person name, email, phone and appointment time.
func (RegexDetailExtractor) Details(message string, now time.Time) Fields {
	email, remainder := Email(message)
	return Fields{
		PersonName: PersonName(message),
		Email:      email,
		Phone:      Phone(remainder),
		When:       When(message, now),
	}
}
