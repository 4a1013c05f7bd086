package credentials

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		alphabet string
	}{
		{"access key", AccessKeyLength, AlphaNum},
		{"verification code", VerificationCodeLength, UpperDigits},
		{"single char", 1, "x"},
		{"long token", 128, UpperDigits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := Generate(tt.length, tt.alphabet)
			require.Len(t, token, tt.length)
			for _, r := range token {
				assert.True(t, strings.ContainsRune(tt.alphabet, r),
					"token %q contains %q outside alphabet", token, r)
			}
		})
	}
}

func TestGenerate_DegenerateInputs(t *testing.T) {
	assert.Equal(t, "", Generate(0, AlphaNum))
	assert.Equal(t, "", Generate(-1, AlphaNum))
	assert.Equal(t, "", Generate(10, ""))
}

func TestGenerate_IndependentCalls(t *testing.T) {
	// Two independent draws of a 15-char token over 62 symbols colliding
	// would point at a broken randomness source.
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		token := NewAccessKey()
		require.False(t, seen[token], "duplicate token %q", token)
		seen[token] = true
	}
}

func TestGenerate_CoversAlphabet(t *testing.T) {
	// Smoke test for uniformity: over 2000 draws from a 36-char alphabet,
	// every symbol should appear at least once.
	counts := map[rune]int{}
	for i := 0; i < 200; i++ {
		for _, r := range Generate(10, UpperDigits) {
			counts[r]++
		}
	}
	assert.Len(t, counts, len(UpperDigits))
}

func TestNewAccessKey_And_NewVerificationCode(t *testing.T) {
	key := NewAccessKey()
	code := NewVerificationCode()
	assert.Len(t, key, 15)
	assert.Len(t, code, 10)
	assert.NotEqual(t, key, code)
}
