package credentials

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost must stay at 10 to match the digests already stored in
// provisioned tenant databases.
const bcryptCost = 10

// HashKey returns the bcrypt digest of a plaintext access key. The plaintext
// is never persisted anywhere; only digests are stored.
func HashKey(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash access key: %w", err)
	}
	return string(digest), nil
}

// VerifyKey reports whether plaintext matches a stored digest.
func VerifyKey(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
