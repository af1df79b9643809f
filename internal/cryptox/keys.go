package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"fmt"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/curve25519"
)

// KeyPair is an X25519 key pair usable for Diffie-Hellman key agreement.
type KeyPair struct {
	Public  [KeySize]byte
	Private [KeySize]byte
}

// NewKeyPair returns a fresh X25519 key pair. The private scalar is clamped
// per RFC 7748.
func NewKeyPair() (*KeyPair, error) {
	kp := &KeyPair{}
	if _, err := rand.Read(kp.Private[:]); err != nil {
		return nil, fmt.Errorf("key generation: %w", err)
	}
	clamp(&kp.Private)
	pub, err := curve25519.X25519(kp.Private[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("key generation: %w", err)
	}
	copy(kp.Public[:], pub)
	return kp, nil
}

// KeyPairFromBytes reconstructs a key pair from stored raw key material.
func KeyPairFromBytes(pub, priv []byte) (*KeyPair, error) {
	if len(pub) != KeySize || len(priv) != KeySize {
		return nil, fmt.Errorf("key material: expected %d-byte keys, got %d/%d", KeySize, len(pub), len(priv))
	}
	kp := &KeyPair{}
	copy(kp.Public[:], pub)
	copy(kp.Private[:], priv)
	return kp, nil
}

// RotateEphemeral returns a fresh key pair unrelated to any long-term
// identity, for forward-secrecy use.
func RotateEphemeral() (*KeyPair, error) {
	return NewKeyPair()
}

// SharedKey computes the X25519 shared secret between a private key and a
// counterpart public key. The result is symmetric: SharedKey(aPriv, bPub)
// equals SharedKey(bPriv, aPub).
func SharedKey(priv, pub *[KeySize]byte) (*[KeySize]byte, error) {
	secret, err := curve25519.X25519(priv[:], pub[:])
	if err != nil {
		return nil, fmt.Errorf("key agreement: %w", err)
	}
	out := &[KeySize]byte{}
	copy(out[:], secret)
	return out, nil
}

// SigningKeyPair is a long-term Ed25519 identity key pair. The signing
// representation is what the key store persists; DH use goes through
// DHKeyPair.
type SigningKeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// NewSigningKeyPair generates a fresh Ed25519 identity key pair.
func NewSigningKeyPair() (*SigningKeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("identity generation: %w", err)
	}
	return &SigningKeyPair{Public: pub, Private: priv}, nil
}

// DHKeyPair converts the signing pair to its X25519 representation.
// The conversion is deterministic and pure: the private scalar is the
// clamped SHA-512 prefix of the seed, the public key is the Montgomery
// form of the Edwards point.
func (kp *SigningKeyPair) DHKeyPair() (*KeyPair, error) {
	out := &KeyPair{}

	h := sha512.Sum512(kp.Private.Seed())
	copy(out.Private[:], h[:KeySize])
	clamp(&out.Private)

	p, err := new(edwards25519.Point).SetBytes(kp.Public)
	if err != nil {
		return nil, fmt.Errorf("identity conversion: %w", err)
	}
	copy(out.Public[:], p.BytesMontgomery())
	return out, nil
}

// ConvertPublicKey converts a peer's Ed25519 public key to X25519 form.
func ConvertPublicKey(pub ed25519.PublicKey) (*[KeySize]byte, error) {
	p, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return nil, fmt.Errorf("identity conversion: %w", err)
	}
	out := &[KeySize]byte{}
	copy(out[:], p.BytesMontgomery())
	return out, nil
}

// EncodeKey renders key bytes as unpadded URL-safe base64, the encoding the
// key directory stores and serves.
func EncodeKey(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeKey parses a key encoded with EncodeKey into a 32-byte array.
func DecodeKey(s string) (*[KeySize]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("key decoding: %w", err)
	}
	if len(b) != KeySize {
		return nil, fmt.Errorf("key decoding: expected %d bytes, got %d", KeySize, len(b))
	}
	out := &[KeySize]byte{}
	copy(out[:], b)
	return out, nil
}

func clamp(k *[KeySize]byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
