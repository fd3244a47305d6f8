package id

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 returns a random (v4) UUID as exactly 32 lowercase hex characters.
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsID32 reports whether s has the shape produced by NewID32.
func IsID32(s string) bool { return reHex32.MatchString(s) }

// ValidKey accepts either a canonical lowercase UUID or a 32-hex id.
// Used for client supplied keys such as Idempotency-Key.
func ValidKey(s string) bool {
	s = strings.TrimSpace(s)
	if IsID32(s) {
		return true
	}
	if len(s) != 36 || strings.ToLower(s) != s {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
