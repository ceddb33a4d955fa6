package auth

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var ErrCiphertextInvalid = errors.New("ciphertext invalid")

const credentialKeyInfo = "lotus credential key v1"

// Cipher seals per-account game API keys with XChaCha20-Poly1305. Sealed
// values are nonce || ciphertext || tag.
type Cipher struct {
	aead cipher.AEAD
}

func NewCipher(key []byte) (*Cipher, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// NewCipherFromSecrets uses the encoded credential key when set and
// otherwise derives one from the session secret.
func NewCipherFromSecrets(credentialKey, sessionSecret string) (*Cipher, error) {
	if credentialKey == "" {
		return NewCipher(DeriveKey(sessionSecret))
	}
	key, err := ParseKey(credentialKey)
	if err != nil {
		return nil, err
	}
	return NewCipher(key)
}

// ParseKey accepts a 32-byte key as hex or base64 (standard or URL, padded
// or not).
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) == hex.EncodedLen(chacha20poly1305.KeySize) {
		if key, err := hex.DecodeString(s); err == nil {
			return key, nil
		}
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		key, err := enc.DecodeString(s)
		if err == nil && len(key) == chacha20poly1305.KeySize {
			return key, nil
		}
	}
	return nil, fmt.Errorf("credential key must encode %d bytes as hex or base64", chacha20poly1305.KeySize)
}

func DeriveKey(secret string) []byte {
	key := make([]byte, chacha20poly1305.KeySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(credentialKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		panic("hkdf: " + err.Error())
	}
	return key
}

func (c *Cipher) Encrypt(plaintext string) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

func (c *Cipher) Decrypt(sealed []byte) (string, error) {
	if len(sealed) < c.aead.NonceSize()+c.aead.Overhead() {
		return "", ErrCiphertextInvalid
	}
	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrCiphertextInvalid
	}
	return string(plaintext), nil
}
