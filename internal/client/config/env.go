package config

import "os"

// parseEnv overlays Config with values from environment variables.
func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv("SERVER_URL"); ok {
		cfg.ServerURL = v
	}
	if v, ok := os.LookupEnv("DATABASE_PATH"); ok {
		cfg.DatabaseDSN = v
	}
}
