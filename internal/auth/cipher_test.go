package auth

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher(DeriveKey("session-secret"))
	require.NoError(t, err)

	sealed, err := c.Encrypt("pnw-api-key-123")
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "pnw-api-key-123")

	plain, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "pnw-api-key-123", plain)

	again, err := c.Encrypt("pnw-api-key-123")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonces must differ")
}

func TestCipherRejectsTampering(t *testing.T) {
	c, err := NewCipher(DeriveKey("session-secret"))
	require.NoError(t, err)

	sealed, err := c.Encrypt("key")
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xff
	_, err = c.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrCiphertextInvalid)

	_, err = c.Decrypt([]byte("short"))
	assert.ErrorIs(t, err, ErrCiphertextInvalid)

	other, err := NewCipher(DeriveKey("different-secret"))
	require.NoError(t, err)
	fresh, err := c.Encrypt("key")
	require.NoError(t, err)
	_, err = other.Decrypt(fresh)
	assert.ErrorIs(t, err, ErrCiphertextInvalid)
}

func TestParseKey(t *testing.T) {
	raw := DeriveKey("x")

	for _, encoded := range []string{
		hex.EncodeToString(raw),
		base64.StdEncoding.EncodeToString(raw),
		base64.RawURLEncoding.EncodeToString(raw),
	} {
		key, err := ParseKey(encoded)
		require.NoError(t, err, encoded)
		assert.Equal(t, raw, key)
	}

	_, err := ParseKey("too-short")
	assert.Error(t, err)
}

func TestNewCipherFromSecrets(t *testing.T) {
	explicit := base64.StdEncoding.EncodeToString(DeriveKey("explicit"))

	a, err := NewCipherFromSecrets(explicit, "ignored")
	require.NoError(t, err)
	b, err := NewCipherFromSecrets("", "ignored")
	require.NoError(t, err)
	direct, err := NewCipher(DeriveKey("explicit"))
	require.NoError(t, err)

	sealed, err := a.Encrypt("k")
	require.NoError(t, err)
	_, err = b.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrCiphertextInvalid, "session secret must not be used when a credential key is set")

	opened, err := direct.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "k", opened)

	_, err = NewCipherFromSecrets("bogus", "secret")
	assert.Error(t, err)
}
