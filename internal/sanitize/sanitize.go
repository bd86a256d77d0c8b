// Package sanitize validates and normalizes identifiers and short labels that
// arrive from clients before they reach the store.
package sanitize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	// MaxUserIDLength bounds user identifiers.
	MaxUserIDLength = 128

	// MaxLabelRunes bounds titles, categories and display names.
	MaxLabelRunes = 200
)

// ErrInvalidUserID indicates the user ID format is invalid.
var ErrInvalidUserID = errors.New("invalid user ID format")

// userIDPattern accepts opaque IDs from identity providers: letters, digits
// and . _ @ : - after an alphanumeric first character.
var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@:-]*$`)

// ValidateUserID checks that id is a non-empty, printable identifier of at
// most MaxUserIDLength bytes.
func ValidateUserID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidUserID)
	}
	if len(id) > MaxUserIDLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidUserID, MaxUserIDLength)
	}
	if !userIDPattern.MatchString(id) {
		return fmt.Errorf("%w: unsupported characters", ErrInvalidUserID)
	}
	return nil
}

// IsReflectionID reports whether id has the shape of a reflection ID (a UUID).
func IsReflectionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Label normalizes a title, category or display name: control characters are
// dropped, whitespace runs become a single space, the ends are trimmed and
// the result is cut to MaxLabelRunes.
func Label(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	n := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = b.Len() > 0
			continue
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			continue
		}
		if space {
			if n+1 >= MaxLabelRunes {
				break
			}
			b.WriteByte(' ')
			n++
			space = false
		}
		if n >= MaxLabelRunes {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
