package booking

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeRE matches booking codes like LAB3-TST12-A7K.
var codeRE = regexp.MustCompile(`^LAB\d+-TST\d+-[A-Z0-9]{3}$`)

// GenerateCode builds a booking code of the form
// LAB<labID>-TST<testID>-<suffix> with a random 3-character suffix.
func GenerateCode(labID, testID int64) (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("booking: read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return fmt.Sprintf("LAB%d-TST%d-%s", labID, testID, buf), nil
}

// ValidCode reports whether s looks like a booking code.
func ValidCode(s string) bool {
	return codeRE.MatchString(s)
}
