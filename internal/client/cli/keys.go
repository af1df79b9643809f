package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/whispervault/whispervault/internal/cryptox"
)

// PublishKey uploads the device identity public key to the server directory.
func (a *App) PublishKey(ctx context.Context) error {
	kp, err := a.identity.GetOrCreate(ctx)
	if err != nil {
		fmt.Println("Key store error:", err.Error())
		return err
	}

	encoded := cryptox.EncodeKey(kp.Public[:])
	if err := a.api.PublishKey(ctx, a.sessionToken, encoded); err != nil {
		fmt.Println("Publish failed:", err.Error())
		return err
	}

	fmt.Println("Public key published:", encoded)
	return nil
}

// FetchKey looks up another user's public key in the directory.
func (a *App) FetchKey(ctx context.Context) error {
	userID, err := getSimpleText(a.reader, "Enter user id", os.Stdout)
	if err != nil {
		return err
	}

	key, err := a.api.FetchKey(ctx, a.sessionToken, userID)
	if err != nil {
		fmt.Println("Lookup failed:", err.Error())
		return err
	}
	if key == nil {
		fmt.Println("That user has not published a key.")
		return nil
	}

	fmt.Println("Public key:", *key)
	return nil
}
