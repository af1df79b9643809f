// Package totp wraps time-based one-time password handling: secret
// generation at registration, drift-tolerant verification, and the
// provisioning artifacts (otpauth URI, QR image) shown to the user at
// enrollment.
package totp

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

// Period is the TOTP time step in seconds.
const Period = 30

// Skew is the tolerated clock drift, in time steps, on either side of now.
const Skew = 1

// GenerateSecret returns a fresh base32-encoded TOTP secret. The secret is
// fixed at registration; it is never regenerated implicitly.
func GenerateSecret(issuer, account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		SecretSize:  20,
	})
	if err != nil {
		return "", fmt.Errorf("totp secret generation: %w", err)
	}
	return key.Secret(), nil
}

// ProvisioningURI builds the otpauth:// URI for an existing secret, suitable
// for authenticator-app enrollment.
func ProvisioningURI(secret, issuer, account string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + account,
		RawQuery: v.Encode(),
	}
	return u.String()
}

// Normalize strips everything but digits from a submitted code, so users can
// paste codes with spaces or dashes.
func Normalize(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Verify checks a normalized code against the secret, accepting codes from
// the previous, current, and next time step.
func Verify(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    Period,
		Skew:      Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// GenerateCode computes the code for the given secret at time t. Used by the
// client CLI and by tests; the server only verifies.
func GenerateCode(secret string, t time.Time) (string, error) {
	return totp.GenerateCode(secret, t)
}

// QRDataURL encodes the provisioning URI as a PNG QR code packaged in a
// data: URL, the format the web client embeds directly in an <img> tag.
func QRDataURL(uri string) (string, error) {
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("qr encoding: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
