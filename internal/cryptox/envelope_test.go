package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *[KeySize]byte {
	t.Helper()
	a, err := NewKeyPair()
	require.NoError(t, err)
	b, err := NewKeyPair()
	require.NoError(t, err)
	k, err := SharedKey(&a.Private, &b.Public)
	require.NoError(t, err)
	return k
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := testKey(t)

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("hi")},
		{"unicode", []byte("привет, шепот")},
		{"binary", []byte{0, 1, 2, 255, 254, 0, 0, 7}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env, err := Seal(key, tc.plaintext)
			require.NoError(t, err)

			got, err := Open(key, env)
			require.NoError(t, err)
			assert.Equal(t, tc.plaintext, got)
		})
	}
}

func TestSeal_FreshNoncePerCall(t *testing.T) {
	key := testKey(t)

	e1, err := Seal(key, []byte("msg"))
	require.NoError(t, err)
	e2, err := Seal(key, []byte("msg"))
	require.NoError(t, err)

	assert.NotEqual(t, e1.Nonce, e2.Nonce)
	assert.NotEqual(t, e1.Ciphertext, e2.Ciphertext)
}

func TestOpen_TamperedCiphertextFails(t *testing.T) {
	key := testKey(t)
	env, err := Seal(key, []byte("important whisper"))
	require.NoError(t, err)

	for i := range env.Ciphertext {
		tampered := &Envelope{Nonce: env.Nonce, Ciphertext: append([]byte(nil), env.Ciphertext...)}
		tampered.Ciphertext[i] ^= 0x01

		_, err := Open(key, tampered)
		require.ErrorIs(t, err, ErrDecryptFailed, "flipped byte %d must fail authentication", i)
	}
}

func TestOpen_WrongKeyFails(t *testing.T) {
	env, err := Seal(testKey(t), []byte("secret"))
	require.NoError(t, err)

	_, err = Open(testKey(t), env)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestOpen_WrongNonceFails(t *testing.T) {
	key := testKey(t)
	env, err := Seal(key, []byte("secret"))
	require.NoError(t, err)

	env.Nonce[0] ^= 0xff
	_, err = Open(key, env)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestEnvelope_BytesParseRoundTrip(t *testing.T) {
	key := testKey(t)
	env, err := Seal(key, []byte("wire format"))
	require.NoError(t, err)

	parsed, err := ParseEnvelope(env.Bytes())
	require.NoError(t, err)

	got, err := Open(key, parsed)
	require.NoError(t, err)
	assert.Equal(t, []byte("wire format"), got)
}

func TestParseEnvelope_TooShort(t *testing.T) {
	_, err := ParseEnvelope(make([]byte, NonceSize))
	assert.ErrorIs(t, err, ErrDecryptFailed)
}
