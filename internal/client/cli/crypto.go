package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/whispervault/whispervault/internal/cryptox"
)

// sharedKeyWith derives the symmetric envelope key between the device
// identity and a peer's encoded public key.
func (a *App) sharedKeyWith(ctx context.Context, encodedPeerKey string) (*[cryptox.KeySize]byte, error) {
	kp, err := a.identity.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	peer, err := cryptox.DecodeKey(encodedPeerKey)
	if err != nil {
		return nil, err
	}
	return cryptox.SharedKey(&kp.Private, peer)
}

// Seal encrypts a message for a peer. The output is the standard base64 of
// the nonce-prefixed envelope, suitable for any transport.
func (a *App) Seal(ctx context.Context) error {
	peerKey, err := getSimpleText(a.reader, "Enter recipient public key", os.Stdout)
	if err != nil {
		return err
	}
	message, err := GetMultiline(a.reader, "Enter message", os.Stdout)
	if err != nil {
		return err
	}

	key, err := a.sharedKeyWith(ctx, peerKey)
	if err != nil {
		fmt.Println("Key agreement failed:", err.Error())
		return err
	}

	env, err := cryptox.Seal(key, []byte(message))
	if err != nil {
		fmt.Println("Encryption failed:", err.Error())
		return err
	}

	fmt.Println("Sealed message:")
	fmt.Println(base64.StdEncoding.EncodeToString(env.Bytes()))
	return nil
}

// Open decrypts a sealed message from a peer.
func (a *App) Open(ctx context.Context) error {
	peerKey, err := getSimpleText(a.reader, "Enter sender public key", os.Stdout)
	if err != nil {
		return err
	}
	encoded, err := getSimpleText(a.reader, "Enter sealed message", os.Stdout)
	if err != nil {
		return err
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		fmt.Println("Not a valid sealed message:", err.Error())
		return err
	}
	env, err := cryptox.ParseEnvelope(raw)
	if err != nil {
		fmt.Println("Not a valid sealed message:", err.Error())
		return err
	}

	key, err := a.sharedKeyWith(ctx, peerKey)
	if err != nil {
		fmt.Println("Key agreement failed:", err.Error())
		return err
	}

	plaintext, err := cryptox.Open(key, env)
	if err != nil {
		fmt.Println("Decryption failed: message is corrupted or keys do not match.")
		return err
	}

	fmt.Println("Message:")
	fmt.Println(string(plaintext))
	return nil
}
