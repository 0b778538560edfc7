package identity

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

const (
	passwordChars  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	passwordLength = 10
	suffixBound    = 10000
)

// GenerateUsername derives a login name from the profile's name fields plus a
// numeric disambiguation suffix. The credentials email shown to guardians
// contains this exact value, so the rule is part of the provisioning contract.
func GenerateUsername(firstName, lastName string) string {
	first := sanitizeNamePart(firstName)
	last := sanitizeNamePart(lastName)

	switch {
	case first == "" && last == "":
		first = "user"
	case first == "":
		first = last
		last = ""
	}

	suffix := randomInt(suffixBound)
	if last == "" {
		return fmt.Sprintf("%s%04d", first, suffix)
	}
	return fmt.Sprintf("%s.%s%04d", first, last, suffix)
}

// GenerateTemporaryPassword creates the fixed-length random alphanumeric
// credential handed to the identity service and delivered by email.
func GenerateTemporaryPassword() string {
	result := make([]byte, passwordLength)
	for i := range result {
		result[i] = passwordChars[randomInt(len(passwordChars))]
	}
	return string(result)
}

// sanitizeNamePart lowercases and strips everything but letters and digits
func sanitizeNamePart(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// randomInt returns a uniform random int in [0, bound) using crypto/rand
func randomInt(bound int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(bound)))
	if err != nil {
		// crypto/rand is not expected to fail; a zero suffix is still a
		// valid credential, just less unique.
		return 0
	}
	return int(n.Int64())
}
