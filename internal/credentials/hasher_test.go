package credentials

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashKey_RoundTrip(t *testing.T) {
	plain := NewAccessKey()

	digest, err := HashKey(plain)
	require.NoError(t, err)
	assert.NotEqual(t, plain, digest)
	assert.True(t, strings.HasPrefix(digest, "$2a$10$"), "unexpected digest format: %s", digest)

	assert.True(t, VerifyKey(plain, digest))
	assert.False(t, VerifyKey(plain+"x", digest))
	assert.False(t, VerifyKey("", digest))
}

func TestHashKey_DifferentPlaintextsNeverVerify(t *testing.T) {
	a, err := HashKey("chave-a")
	require.NoError(t, err)
	b, err := HashKey("chave-b")
	require.NoError(t, err)

	assert.False(t, VerifyKey("chave-a", b))
	assert.False(t, VerifyKey("chave-b", a))
}

func TestHashKey_SaltedDigestsDiffer(t *testing.T) {
	first, err := HashKey("same-plaintext")
	require.NoError(t, err)
	second, err := HashKey("same-plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyKey("same-plaintext", first))
	assert.True(t, VerifyKey("same-plaintext", second))
}
