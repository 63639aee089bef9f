package cryptox

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/securepass/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestEnvelope(t *testing.T) *Envelope {
	t.Helper()
	e, err := NewEnvelope(testKey, false)
	require.NoError(t, err)
	return e
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestEnvelope_RoundTrip(t *testing.T) {
	e := newTestEnvelope(t)

	for _, plaintext := range []string{"p@ss", "", "ünïcødé 🔐", strings.Repeat("x", 4096)} {
		blob, err := e.Encrypt(plaintext)
		require.NoError(t, err)

		got, err := e.Decrypt(blob)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestEnvelope_FreshNoncePerCall(t *testing.T) {
	e := newTestEnvelope(t)

	a, err := e.Encrypt("same secret")
	require.NoError(t, err)
	b, err := e.Encrypt("same secret")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	rawA, _ := base64.StdEncoding.DecodeString(a)
	rawB, _ := base64.StdEncoding.DecodeString(b)
	assert.NotEqual(t, rawA[:NonceSize], rawB[:NonceSize])

	for _, blob := range []string{a, b} {
		got, err := e.Decrypt(blob)
		require.NoError(t, err)
		assert.Equal(t, "same secret", got)
	}
}

func TestEnvelope_Layout(t *testing.T) {
	e := newTestEnvelope(t)

	blob, err := e.Encrypt("abc")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)
	assert.Len(t, raw, NonceSize+3+TagSize)
}

func TestEnvelope_DecryptMalformed(t *testing.T) {
	e := newTestEnvelope(t)

	short := base64.StdEncoding.EncodeToString([]byte("tooshort"))
	for _, in := range []string{"", short, "not base64 at all!!", "legacy-plaintext"} {
		_, err := e.Decrypt(in)
		assert.ErrorIs(t, err, ErrMalformedCiphertext, "input %q", in)
	}
}

func TestEnvelope_DecryptTamperedTag(t *testing.T) {
	e := newTestEnvelope(t)

	blob, err := e.Encrypt("p@ss")
	require.NoError(t, err)

	raw, _ := base64.StdEncoding.DecodeString(blob)
	raw[len(raw)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)

	_, err = e.Decrypt(tampered)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.NotContains(t, err.Error(), "p@ss")
}

func TestEnvelope_DecryptWithOtherKey(t *testing.T) {
	e := newTestEnvelope(t)
	other, err := NewEnvelope([]byte("fedcba9876543210fedcba9876543210"), false)
	require.NoError(t, err)

	blob, err := e.Encrypt("p@ss")
	require.NoError(t, err)

	_, err = other.Decrypt(blob)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestEnvelope_NonceShorterThanTag(t *testing.T) {
	e := newTestEnvelope(t)

	// long enough to hold a nonce, too short for a tag
	raw := make([]byte, NonceSize+4)
	_, err := e.Decrypt(base64.StdEncoding.EncodeToString(raw))
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestEnvelope_EntropyFailure(t *testing.T) {
	e := newTestEnvelope(t)
	e.rand = failingReader{}

	_, err := e.Encrypt("p@ss")
	assert.Error(t, err)
}

func TestNewEnvelope_KeyValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		wantErr bool
	}{
		{name: "aes-128", key: []byte("0123456789abcdef")},
		{name: "aes-192", key: []byte("0123456789abcdef01234567")},
		{name: "aes-256", key: testKey},
		{name: "nil", key: nil, wantErr: true},
		{name: "blank", key: []byte("   "), wantErr: true},
		{name: "placeholder", key: []byte(common.PlaceholderSecret), wantErr: true},
		{name: "wrong length", key: []byte("short"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEnvelope(tt.key, false)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, len(tt.key)*8, e.KeyBits())
				return
			}
			var cfgErr *common.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, AESKeySetting, cfgErr.Setting)
		})
	}
}

func TestNewEnvelope_DevModeWording(t *testing.T) {
	_, prodErr := NewEnvelope(nil, false)
	_, devErr := NewEnvelope(nil, true)

	require.Error(t, prodErr)
	require.Error(t, devErr)
	assert.Contains(t, prodErr.Error(), "required in production")
	assert.Contains(t, devErr.Error(), "development config file")
}
