// Package cipherx implements the reversible transform used to protect stored
// account passwords. Ciphertext is bound to the owning login by prefixing the
// plaintext with "login:" before sealing, so a stored secret cannot be
// silently relinked to a renamed login, and a successful decrypt can be
// sanity-checked against the expected prefix.
package cipherx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrUndecryptable reports ciphertext that cannot be opened with any
// configured key. Callers should treat it as a failed credential check,
// never as a fatal condition.
var ErrUndecryptable = errors.New("cipherx: ciphertext cannot be decrypted")

const loginSeparator = ":"

// Cipher seals and opens login-bound password ciphertext using
// ChaCha20-Poly1305 with a process-wide secret. An optional legacy key is
// tried on decrypt for data sealed before the current secret was rotated in;
// no global state is mutated during the fallback.
type Cipher struct {
	key       []byte
	legacyKey []byte
}

// New derives the sealing key from the given secret.
func New(secret string) *Cipher {
	return &Cipher{key: deriveKey(secret)}
}

// NewWithLegacy derives the sealing key from secret and keeps a second
// decrypt-only key derived from legacySecret. Encrypt always uses the
// current key.
func NewWithLegacy(secret, legacySecret string) *Cipher {
	c := New(secret)
	if legacySecret != "" {
		c.legacyKey = deriveKey(legacySecret)
	}
	return c
}

func deriveKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// Encrypt seals plaintext bound to login. The result is deterministic for a
// given (login, plaintext, key) triple: the nonce is derived from the message
// rather than drawn at random, so equal inputs produce equal ciphertext.
func (c *Cipher) Encrypt(login, plaintext string) (string, error) {
	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return "", err
	}

	msg := []byte(login + loginSeparator + plaintext)
	nonce := deriveNonce(c.key, msg, aead.NonceSize())

	sealed := aead.Seal(nonce, nonce, msg, nil)
	return base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens ciphertext and strips the login binding. Opening is attempted
// with the current key first, then the legacy key if one is configured. If
// the opened message lacks the expected "login:" prefix it is treated as
// pre-binding data and only len(login) characters are stripped, matching the
// historical scheme.
func (c *Cipher) Decrypt(login, ciphertext string) (string, error) {
	raw, err := base64.RawStdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrUndecryptable
	}

	msg, err := c.open(c.key, raw)
	if err != nil && c.legacyKey != nil {
		msg, err = c.open(c.legacyKey, raw)
	}
	if err != nil {
		return "", ErrUndecryptable
	}

	return stripLogin(login, string(msg)), nil
}

func (c *Cipher) open(key, raw []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	if len(raw) < aead.NonceSize() {
		return nil, ErrUndecryptable
	}

	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	return aead.Open(nil, nonce, sealed, nil)
}

// stripLogin removes the login binding from a decrypted message. Messages
// without the expected prefix fall back to dropping len(login) leading
// characters; a post-strip mismatch then surfaces as a failed credential
// comparison in the caller.
func stripLogin(login, msg string) string {
	if prefixed, ok := strings.CutPrefix(msg, login+loginSeparator); ok {
		return prefixed
	}
	if len(msg) >= len(login) {
		return msg[len(login):]
	}
	return ""
}

// deriveNonce computes a synthetic nonce as HMAC-SHA256(key, msg) truncated
// to size. Nonce reuse across distinct messages is impossible because the
// nonce is a function of the message itself.
func deriveNonce(key, msg []byte, size int) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)[:size]
}
