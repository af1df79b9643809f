package config

import (
	"flag"
	"os"
	"time"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":4000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      challenge token validity, minutes
//	-l int      session token validity, minutes
//	-i string   TOTP issuer label
//	-o string   client origin for confirmation links
//
// Duration flags are accepted as integers in minutes and converted to
// time.Duration values.
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	challengeValidity := fs.Int("t", int(config.ChallengeTokenValidityDuration.Minutes()), "challenge token validity (in minutes)")
	sessionValidity := fs.Int("l", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")

	fs.StringVar(&config.TOTPIssuer, "i", config.TOTPIssuer, "TOTP issuer")
	fs.StringVar(&config.ClientOrigin, "o", config.ClientOrigin, "client origin")

	if err := fs.Parse(os.Args[1:]); err != nil {
		panic(err)
	}

	config.ChallengeTokenValidityDuration = time.Duration(*challengeValidity) * time.Minute
	config.SessionTokenValidityDuration = time.Duration(*sessionValidity) * time.Minute
}
