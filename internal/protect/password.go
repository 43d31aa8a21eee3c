package protect

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	lowercaseAlphabet = "abcdefghijklmnopqrstuvwxyz"
	uppercaseAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitAlphabet     = "0123456789"
	// Modest and broadly accepted subset of symbols to avoid shell and
	// filename issues.
	symbolAlphabet = "!@#$%^&*()-_=+[]{}:,.?"

	minCredentialLength = 8
)

// GenerateCredential produces a random credential containing at least one
// character from every enabled class: one pick per class is seeded first,
// the remainder is drawn uniformly from the combined alphabet, and the
// result is shuffled with a Fisher-Yates pass driven by the secure random
// source. Lengths below 8 are raised to 8.
func GenerateCredential(length int, includeSymbols bool) (string, error) {
	if length < minCredentialLength {
		length = minCredentialLength
	}

	groups := []string{lowercaseAlphabet, uppercaseAlphabet, digitAlphabet}
	if includeSymbols {
		groups = append(groups, symbolAlphabet)
	}

	chars := make([]byte, 0, length)
	for _, group := range groups {
		c, err := secureByte(group)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	combined := strings.Join(groups, "")
	for len(chars) < length {
		c, err := secureByte(combined)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	for i := len(chars) - 1; i > 0; i-- {
		j, err := secureIndex(i + 1)
		if err != nil {
			return "", err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars), nil
}

func secureByte(alphabet string) (byte, error) {
	idx, err := secureIndex(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[idx], nil
}

func secureIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("secure random index: %w", err)
	}
	return int(v.Int64()), nil
}
