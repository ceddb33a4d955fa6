package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"LOTUS_PORT", "DATABASE_URL", "ALLIANCE_ID", "ADMIN_RANKS", "SECRET_KEY", "SESSION_MAX_AGE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, "sqlite://./data/lotus.db", cfg.DatabaseURL)
	assert.Equal(t, 7*86400, cfg.SessionMaxAge)
	assert.Equal(t, int64(0), cfg.AllianceID)
	assert.Equal(t, []string{"Bushido", "Daimyo", "Shogun"}, cfg.AdminRanks)
	assert.Contains(t, cfg.Warnings(), "SECRET_KEY is the built-in default")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOTUS_PORT", "8080")
	t.Setenv("ALLIANCE_ID", "12345")
	t.Setenv("ADMIN_RANKS", " Leader , Heir,, ")
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("DATABASE_URL", "postgres://lotus@localhost/lotus")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, int64(12345), cfg.AllianceID)
	assert.Equal(t, []string{"Leader", "Heir"}, cfg.AdminRanks)
	assert.True(t, cfg.SessionSecure)
	assert.Equal(t, "postgres://lotus@localhost/lotus", cfg.DatabaseURL)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOTUS_PORT", "not-a-port")
	t.Setenv("ALLIANCE_ID", "abc")

	cfg := Load()

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, int64(0), cfg.AllianceID)
	assert.Contains(t, cfg.Warnings(), "ALLIANCE_ID is not set, no nation can be linked")
}
