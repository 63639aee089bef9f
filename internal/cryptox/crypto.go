// Package cryptox holds the server's symmetric cryptography: the envelope
// cipher that protects stored credential secrets and the password hashing
// used for account logins.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/securepass/internal/common"
)

const (
	// NonceSize is the AES-GCM nonce length prepended to every envelope.
	NonceSize = 12
	// TagSize is the GCM authentication tag length appended by Seal.
	TagSize = 16

	// AESKeySetting names the setting that carries the envelope key.
	AESKeySetting = "SECUREPASS_AES_KEY"
)

var (
	// ErrMalformedCiphertext means the stored value is not an envelope at
	// all, typically data written by an older encryption scheme.
	ErrMalformedCiphertext = errors.New("ciphertext has an incompatible format; delete and re-add this credential")

	// ErrAuthenticationFailed means the envelope parsed but its tag did not
	// verify: tampering, or a value sealed under a different key.
	ErrAuthenticationFailed = errors.New("ciphertext could not be authenticated; delete and re-add this credential")
)

// Envelope encrypts single secret strings with AES-GCM. The output format is
// base64(nonce || ciphertext || tag) using standard padding.
//
// An Envelope is safe for concurrent use; it holds no mutable state.
type Envelope struct {
	aead cipher.AEAD
	rand io.Reader
	bits int
}

// NewEnvelope validates key and prepares the AEAD. Keys of 16, 24 or 32
// bytes select AES-128/192/256; 32 is what production should use. Empty keys
// and the sample-config placeholder are refused with a *common.ConfigError.
func NewEnvelope(key []byte, dev bool) (*Envelope, error) {
	if err := checkKey(key, dev); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}

	return &Envelope{aead: aead, rand: rand.Reader, bits: len(key) * 8}, nil
}

func checkKey(key []byte, dev bool) error {
	trimmed := strings.TrimSpace(string(key))
	if trimmed == "" || trimmed == common.PlaceholderSecret {
		return &common.ConfigError{Setting: AESKeySetting, Reason: "value is empty or a placeholder", Dev: dev}
	}
	switch len(key) {
	case 16, 24, 32:
		return nil
	}
	return &common.ConfigError{
		Setting: AESKeySetting,
		Reason:  fmt.Sprintf("must be 16, 24, or 32 bytes (got %d bytes); use 32 bytes for AES-256", len(key)),
		Dev:     dev,
	}
}

// KeyBits reports the AES key size, for the startup log line.
func (e *Envelope) KeyBits() int {
	return e.bits
}

// Encrypt seals plaintext under a fresh random nonce. Encrypting the same
// value twice yields different envelopes.
func (e *Envelope) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := io.ReadFull(e.rand, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an envelope produced by Encrypt. The returned error is either
// ErrMalformedCiphertext or ErrAuthenticationFailed; callers classify it with
// errors.Is. Neither error carries key or plaintext material.
func (e *Envelope) Decrypt(envelope string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(envelope))
	if err != nil {
		return "", ErrMalformedCiphertext
	}
	if len(data) < NonceSize {
		return "", ErrMalformedCiphertext
	}

	nonce, sealed := data[:NonceSize], data[NonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrAuthenticationFailed
	}

	return string(plaintext), nil
}
