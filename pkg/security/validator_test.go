package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "user-directory/pkg/errors"
)

func TestValidateSearchTerm(t *testing.T) {
	tests := []struct {
		name        string
		term        string
		expectError bool
		errorMsg    string
	}{
		{
			name: "valid empty term",
			term: "",
		},
		{
			name: "valid simple term",
			term: "jane",
		},
		{
			name: "valid term with spaces",
			term: "  jane smith ",
		},
		{
			name: "valid email-like term",
			term: "john.doe+test@example.com",
		},
		{
			name: "punctuation is just text",
			term: "o'brien; <b> & 100%",
		},
		{
			name: "non-latin letters",
			term: "Zoë Ångström 李",
		},
		{
			name: "exactly at the limit",
			term: strings.Repeat("a", MaxSearchTermLength),
		},
		{
			name: "limit counts characters not bytes",
			term: strings.Repeat("é", MaxSearchTermLength),
		},
		{
			name: "tab is tolerated",
			term: "jane\tsmith",
		},
		{
			name:        "term too long",
			term:        strings.Repeat("a", MaxSearchTermLength+1),
			expectError: true,
			errorMsg:    "search term too long",
		},
		{
			name:        "newline",
			term:        "jane\nsmith",
			expectError: true,
			errorMsg:    "search term contains invalid characters",
		},
		{
			name:        "null byte",
			term:        "jane\x00",
			expectError: true,
			errorMsg:    "search term contains invalid characters",
		},
		{
			name:        "escape sequence",
			term:        "\x1b[31mred",
			expectError: true,
			errorMsg:    "search term contains invalid characters",
		},
		{
			name:        "invalid utf-8",
			term:        "jane\xff",
			expectError: true,
			errorMsg:    "not valid UTF-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSearchTerm(tt.term)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestIsValidSearchChar(t *testing.T) {
	tests := []struct {
		name     string
		char     rune
		expected bool
	}{
		{name: "lowercase letter", char: 'a', expected: true},
		{name: "digit", char: '5', expected: true},
		{name: "space", char: ' ', expected: true},
		{name: "symbol", char: '#', expected: true},
		{name: "tab", char: '\t', expected: true},
		{name: "carriage return", char: '\r', expected: false},
		{name: "delete", char: 0x7f, expected: false},
		{name: "c1 control", char: 0x85, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isValidSearchChar(tt.char))
		})
	}
}
