package credentials

import (
	"crypto/rand"
	"math/big"
)

// Alphabets for generated tokens.
const (
	// AlphaNum is the 62-character mixed-case alphanumeric set used for
	// access keys.
	AlphaNum = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// UpperDigits is the 36-character set used for verification codes
	// (uppercase + digits only, easier to read out loud).
	UpperDigits = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Token lengths fixed by the registration workflow.
const (
	AccessKeyLength        = 15
	VerificationCodeLength = 10
)

// Generate returns a random token of the given length where every position
// is drawn uniformly and independently from alphabet. Callers pick the
// length and alphabet per token kind; two calls are never correlated.
func Generate(length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform entropy source is
			// broken; there is no sane fallback for credential material.
			panic("credentials: rand.Int: " + err.Error())
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out)
}

// NewAccessKey returns a fresh 15-character access key.
func NewAccessKey() string {
	return Generate(AccessKeyLength, AlphaNum)
}

// NewVerificationCode returns a fresh 10-character verification code.
func NewVerificationCode() string {
	return Generate(VerificationCodeLength, UpperDigits)
}
