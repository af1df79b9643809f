// Package cryptox implements the client-side encryption primitives:
// authenticated secret-key envelopes and X25519 key agreement.
package cryptox

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// KeySize is the length of a shared symmetric key.
	KeySize = 32
	// NonceSize is the length of an envelope nonce (extended-nonce cipher).
	NonceSize = 24
)

// ErrDecryptFailed is returned when an envelope fails authentication:
// the ciphertext was tampered with, or the key/nonce do not match.
var ErrDecryptFailed = errors.New("decryption failed or ciphertext tampered")

// Envelope is the transmittable result of Seal. The nonce is not secret
// and travels alongside the ciphertext.
type Envelope struct {
	Nonce      [NonceSize]byte
	Ciphertext []byte
}

// Seal encrypts plaintext with XSalsa20-Poly1305 under key. A fresh random
// nonce is generated on every call; callers must never reuse an Envelope's
// nonce with the same key, which Seal guarantees by construction.
func Seal(key *[KeySize]byte, plaintext []byte) (*Envelope, error) {
	env := &Envelope{}
	if _, err := rand.Read(env.Nonce[:]); err != nil {
		return nil, fmt.Errorf("nonce generation: %w", err)
	}
	env.Ciphertext = secretbox.Seal(nil, plaintext, &env.Nonce, key)
	return env, nil
}

// Open decrypts an envelope sealed with the same key. It fails atomically
// with ErrDecryptFailed: no partially decrypted data is ever returned.
func Open(key *[KeySize]byte, env *Envelope) ([]byte, error) {
	plaintext, ok := secretbox.Open(nil, env.Ciphertext, &env.Nonce, key)
	if !ok {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

// Bytes serializes the envelope as nonce || ciphertext, the layout the
// original web client uses on the wire.
func (e *Envelope) Bytes() []byte {
	out := make([]byte, NonceSize+len(e.Ciphertext))
	copy(out, e.Nonce[:])
	copy(out[NonceSize:], e.Ciphertext)
	return out
}

// ParseEnvelope splits a nonce || ciphertext buffer back into an Envelope.
func ParseEnvelope(b []byte) (*Envelope, error) {
	if len(b) < NonceSize+secretbox.Overhead {
		return nil, ErrDecryptFailed
	}
	env := &Envelope{Ciphertext: make([]byte, len(b)-NonceSize)}
	copy(env.Nonce[:], b[:NonceSize])
	copy(env.Ciphertext, b[NonceSize:])
	return env, nil
}
