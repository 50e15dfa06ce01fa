package secrets

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBox(t *testing.T) *Box {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	b, err := NewBox(key)
	require.NoError(t, err)
	return b
}

func TestBox_RoundTrip(t *testing.T) {
	b := newBox(t)

	sealed, err := b.Seal("shpat_abc123")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "shpat_abc123")

	again, err := b.Seal("shpat_abc123")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	pt, err := b.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "shpat_abc123", pt)
}

func TestBox_OpenWithOtherKeyFails(t *testing.T) {
	sealed, err := newBox(t).Seal("secret")
	require.NoError(t, err)

	_, err = newBox(t).Open(sealed)
	assert.ErrorIs(t, err, ErrDecryptionFailure)
}

func TestBox_Malformed(t *testing.T) {
	b := newBox(t)

	_, err := b.Open("***")
	assert.ErrorIs(t, err, ErrMalformedCipher)

	_, err = b.Open(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrMalformedCipher)
}

func TestNewBox_RejectsBadKey(t *testing.T) {
	_, err := NewBox("not-base64!")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = NewBox(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.ErrorIs(t, err, ErrInvalidKey)
}
