package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/whispervault/whispervault/internal/client/client"
	"github.com/whispervault/whispervault/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the account details and creates an unconfirmed
// account. The server sends the confirmation email; the user continues with
// the confirm command.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	firstName, err := getSimpleText(a.reader, "Enter first name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Enter last name", os.Stdout)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Enter phone (optional, E.164)", os.Stdout)
	if err != nil {
		return err
	}

	err = a.api.Register(ctx, client.RegisterRequest{
		Email:     email,
		Password:  string(password),
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
	})
	if err != nil {
		fmt.Println("Registration failed:", err.Error())
		return err
	}

	fmt.Println("Registered! Check your email for the confirmation link, then run 'confirm'.")
	return nil
}

// Confirm redeems a confirmation token from the email and prints the
// authenticator enrollment info. The resulting challenge token is kept so
// the user can verify the second factor right away.
func (a *App) Confirm(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter confirmation token", os.Stdout)
	if err != nil {
		return err
	}

	res, err := a.api.Confirm(ctx, token)
	if err != nil {
		fmt.Println("Confirmation failed:", err.Error())
		return err
	}

	fmt.Println("Email confirmed.")
	fmt.Println("Add this secret to your authenticator app:", res.ManualCode)
	fmt.Println("Or scan:", res.OtpauthURL)
	a.tempToken = res.TempToken
	return a.secondFactor(ctx)
}

// Resend asks the server to rotate and re-send the confirmation email.
func (a *App) Resend(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.api.ResendConfirmation(ctx, email); err != nil {
		fmt.Println("Resend failed:", err.Error())
		return err
	}
	fmt.Println("Confirmation email resent.")
	return nil
}

// Login performs the password step and then the second factor. The session
// token lives only in memory.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	temp, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, client.ErrEmailNotConfirmed) {
			fmt.Println("Email not confirmed yet; use 'resend' to get a new link.")
		} else {
			fmt.Println("Login failed:", err.Error())
		}
		return err
	}

	a.tempToken = temp
	return a.secondFactor(ctx)
}

// secondFactor drives the challenge step: an authenticator code, or 'sms' to
// fall back to a text message.
func (a *App) secondFactor(ctx context.Context) error {
	code, err := getSimpleText(a.reader, "Enter authenticator code (or 'sms' for a text message)", os.Stdout)
	if err != nil {
		return err
	}

	var session *client.Session
	if code == "sms" {
		if err := a.api.SendSMS(ctx, a.tempToken); err != nil {
			fmt.Println("SMS send failed:", err.Error())
			return err
		}
		smsCode, err := getSimpleText(a.reader, "Enter SMS code", os.Stdout)
		if err != nil {
			return err
		}
		session, err = a.api.VerifySMS(ctx, a.tempToken, smsCode)
		if err != nil {
			fmt.Println("Verification failed:", err.Error())
			return err
		}
	} else {
		session, err = a.api.VerifyTOTP(ctx, a.tempToken, code)
		if err != nil {
			fmt.Println("Verification failed:", err.Error())
			return err
		}
	}

	a.setSession(session)
	fmt.Println("Logged in.")
	return nil
}

// Logout drops the in-memory tokens. The identity key stays on the device.
func (a *App) Logout(ctx context.Context) error {
	a.sessionToken = ""
	a.tempToken = ""
	a.userID = ""
	a.userEmail = ""
	fmt.Println("Logged out.")
	return nil
}
