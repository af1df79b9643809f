// Package config handles configuration for the client CLI, including
// defaults, environment variables, and command-line flags.
package config

// Config holds runtime settings for the WhisperVault CLI.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP API.
//   - DatabaseDSN: path of the local sqlite key store.
type Config struct {
	ServerURL   string
	DatabaseDSN string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:4000"
	c.DatabaseDSN = "whispervault.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// environment variables and command-line flags. Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
