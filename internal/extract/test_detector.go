package extract

import (
	"regexp"
	"strings"
)

var (
	bookPhraseRE  = regexp.MustCompile(`\bbook(?:ing)?\s+(?:a\s+|an\s+|the\s+)?([a-z0-9][a-z0-9 ()\-]*)`)
	testMarkerRE  = regexp.MustCompile(`\btest:\s*([a-z0-9][a-z0-9 ()\-]*)`)
	phraseStopRE  = regexp.MustCompile(`\b(?:email|my)\b`)
	phraseNoiseRE = regexp.MustCompile(`\s+(?:test|for me|please|now)$`)
)

// TestName finds which catalog test a message refers to. Direct
// containment of a catalog name wins, longest name first, so "complete
// blood count" is not shadowed by a shorter "blood count" entry. When
// no name appears verbatim, the phrase after a "book"/"test:" marker is
// matched fuzzily against the names in both directions.
func TestName(message string, names []string) string {
	lower := strings.ToLower(message)

	best := ""
	for _, name := range names {
		ln := strings.ToLower(name)
		if ln != "" && strings.Contains(lower, ln) && len(name) > len(best) {
			best = name
		}
	}
	if best != "" {
		return best
	}

	phrase := bookingPhrase(lower)
	if phrase == "" {
		return ""
	}
	for _, name := range names {
		ln := strings.ToLower(name)
		if ln == "" {
			continue
		}
		if (strings.Contains(ln, phrase) || strings.Contains(phrase, ln)) && len(name) > len(best) {
			best = name
		}
	}
	return best
}

// bookingPhrase pulls the candidate test phrase after a booking
// marker. The phrase ends at a comma, the word "email" or "my", or
// end of string.
func bookingPhrase(lower string) string {
	var phrase string
	if m := bookPhraseRE.FindStringSubmatch(lower); m != nil {
		phrase = m[1]
	} else if m := testMarkerRE.FindStringSubmatch(lower); m != nil {
		phrase = m[1]
	}
	if loc := phraseStopRE.FindStringIndex(phrase); loc != nil {
		phrase = phrase[:loc[0]]
	}
	phrase = strings.TrimSpace(phrase)
	phrase = phraseNoiseRE.ReplaceAllString(phrase, "")
	return strings.TrimSpace(phrase)
}
