package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from environment variables. Variable names
// follow the deployment conventions of the original service (JWT_SECRET,
// SMTP_HOST, TWILIO_SID, ...). Unset variables leave the current value.
func parseEnv(c *Config) {
	setString(&c.EndpointAddrHTTP, "ADDRESS")
	setString(&c.DatabaseDSN, "DATABASE_DSN")
	setString(&c.SecretKey, "JWT_SECRET")
	setDuration(&c.ChallengeTokenValidityDuration, "CHALLENGE_TOKEN_TTL")
	setDuration(&c.SessionTokenValidityDuration, "SESSION_TOKEN_TTL")
	setDuration(&c.SMSCodeValidityDuration, "SMS_CODE_TTL")
	setString(&c.TOTPIssuer, "TOTP_ISSUER")
	setString(&c.ClientOrigin, "CLIENT_ORIGIN")
	setString(&c.SMTPHost, "SMTP_HOST")
	setInt(&c.SMTPPort, "SMTP_PORT")
	setString(&c.SMTPUser, "SMTP_USER")
	setString(&c.SMTPPassword, "SMTP_PASS")
	setString(&c.EmailFrom, "EMAIL_FROM")
	setString(&c.TwilioSID, "TWILIO_SID")
	setString(&c.TwilioAuthToken, "TWILIO_AUTH_TOKEN")
	setString(&c.TwilioFromNumber, "TWILIO_PHONE_NUMBER")
}

func setString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok {
		*dst = v
	}
}

func setInt(dst *int, name string) {
	if v, ok := os.LookupEnv(name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, name string) {
	if v, ok := os.LookupEnv(name); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
