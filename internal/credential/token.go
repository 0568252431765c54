// Package credential is the credential engine: it mints and hashes session
// tokens and API keys, validates session tokens, and hashes/verifies
// passwords, using side-channel-resistant primitives throughout. API keys
// are not validated here; nothing in this package looks an API key up.
package credential

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// tokenBytes is the amount of entropy minted for a session token or API key,
// before base64 encoding.
const tokenBytes = 32

// MintToken generates a fresh random token and returns both its plaintext
// (URL-safe base64, no padding — the transport form, returned to the caller
// exactly once) and its hash (the generic cryptographic hash of the raw
// bytes, URL-safe base64, no padding — the only form persisted).
func MintToken() (plaintext, hash string, err error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("credential: generating token entropy: %w", err)
	}
	plaintext = encode(raw)
	hash, err = hashPlaintext(plaintext)
	if err != nil {
		return "", "", err
	}
	return plaintext, hash, nil
}

// HashToken decodes a plaintext token back to its raw bytes and returns the
// hash that would have been persisted for it. Malformed base64 input
// yields an error — callers treat that the same as "session not found".
func HashToken(plaintext string) (string, error) {
	return hashPlaintext(plaintext)
}

func hashPlaintext(plaintext string) (string, error) {
	raw, err := decode(plaintext)
	if err != nil {
		return "", fmt.Errorf("credential: decoding token: %w", err)
	}
	sum := blake2b.Sum256(raw)
	return encode(sum[:]), nil
}

func encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func decode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
