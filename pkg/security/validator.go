package security

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	apperrors "user-directory/pkg/errors"
)

const (
	// MaxSearchTermLength defines the maximum allowed length, in characters,
	// for a search term
	MaxSearchTermLength = 100
)

// ValidateSearchTerm rejects search input that is too long or carries control
// characters. Filtering happens in memory, so any printable text is accepted
// as typed.
func ValidateSearchTerm(term string) error {
	if term == "" {
		return nil
	}

	if !utf8.ValidString(term) {
		return apperrors.NewValidationError("search term is not valid UTF-8")
	}

	// Check length
	if n := utf8.RuneCountInString(term); n > MaxSearchTermLength {
		return apperrors.NewValidationError(fmt.Sprintf("search term too long: %d characters (max %d)", n, MaxSearchTermLength))
	}

	for _, char := range term {
		if !isValidSearchChar(char) {
			return apperrors.NewValidationError("search term contains invalid characters")
		}
	}

	return nil
}

// isValidSearchChar checks if a character may appear in a search term
func isValidSearchChar(char rune) bool {
	// Tabs are tolerated since they are trimmed before filtering
	return char == '\t' || !unicode.IsControl(char)
}
