package protect

import (
	"strings"
	"testing"
)

func classCoverage(credential string) (lower, upper, digit, symbol bool) {
	for _, r := range credential {
		switch {
		case strings.ContainsRune(lowercaseAlphabet, r):
			lower = true
		case strings.ContainsRune(uppercaseAlphabet, r):
			upper = true
		case strings.ContainsRune(digitAlphabet, r):
			digit = true
		case strings.ContainsRune(symbolAlphabet, r):
			symbol = true
		}
	}
	return lower, upper, digit, symbol
}

func TestGenerateCredentialClassCoverage(t *testing.T) {
	for i := 0; i < 50; i++ {
		credential, err := GenerateCredential(20, true)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(credential) != 20 {
			t.Fatalf("length = %d, want 20", len(credential))
		}
		lower, upper, digit, symbol := classCoverage(credential)
		if !lower || !upper || !digit || !symbol {
			t.Fatalf("credential %q missing a character class", credential)
		}
	}
}

func TestGenerateCredentialWithoutSymbols(t *testing.T) {
	for i := 0; i < 50; i++ {
		credential, err := GenerateCredential(12, false)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if strings.ContainsAny(credential, symbolAlphabet) {
			t.Fatalf("credential %q contains a symbol despite symbols=false", credential)
		}
		lower, upper, digit, _ := classCoverage(credential)
		if !lower || !upper || !digit {
			t.Fatalf("credential %q missing a character class", credential)
		}
	}
}

func TestGenerateCredentialMinimumLength(t *testing.T) {
	for _, length := range []int{-5, 0, 1, 7} {
		credential, err := GenerateCredential(length, true)
		if err != nil {
			t.Fatalf("generate(%d): %v", length, err)
		}
		if len(credential) != minCredentialLength {
			t.Errorf("generate(%d) length = %d, want %d", length, len(credential), minCredentialLength)
		}
	}
}

func TestGenerateCredentialVaries(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		credential, err := GenerateCredential(16, true)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if _, dup := seen[credential]; dup {
			t.Fatalf("duplicate credential generated: %q", credential)
		}
		seen[credential] = struct{}{}
	}
}
