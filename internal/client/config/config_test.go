package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:4000", c.ServerURL)
	assert.Equal(t, "whispervault.db", c.DatabaseDSN)
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("SERVER_URL", "https://vault.example")
	t.Setenv("DATABASE_PATH", "/tmp/keys.db")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	require.Equal(t, "https://vault.example", c.ServerURL)
	require.Equal(t, "/tmp/keys.db", c.DatabaseDSN)
}
