package identity

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUsernameFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9]+\.[a-z0-9]+\d{4}$`)

	username := GenerateUsername("Arda", "Yilmaz")
	assert.Regexp(t, pattern, username)
	assert.Regexp(t, regexp.MustCompile(`^arda\.yilmaz\d{4}$`), username)
}

func TestGenerateUsernameSanitization(t *testing.T) {
	username := GenerateUsername("  Müge-Su ", "O'Brien")
	// Letters survive lowercased, punctuation and spaces are stripped
	assert.Regexp(t, regexp.MustCompile(`^mügesu\.obrien\d{4}$`), username)
}

func TestGenerateUsernameMissingParts(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^user\d{4}$`), GenerateUsername("", ""))
	assert.Regexp(t, regexp.MustCompile(`^yilmaz\d{4}$`), GenerateUsername("", "Yilmaz"))
	assert.Regexp(t, regexp.MustCompile(`^arda\d{4}$`), GenerateUsername("Arda", ""))
}

func TestGenerateTemporaryPassword(t *testing.T) {
	password := GenerateTemporaryPassword()
	require.Len(t, password, passwordLength)

	for _, c := range password {
		assert.Contains(t, passwordChars, string(c))
	}

	// Two draws colliding would mean the generator is broken
	assert.NotEqual(t, password, GenerateTemporaryPassword())
}
