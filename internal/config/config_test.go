package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_PORT", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("ELEVATED_ROLES", "")
	t.Setenv("JWT_TTL", "")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"GERENTE", "SISTEMAS"}, cfg.Auth.ElevatedRoles)
	assert.Equal(t, "America/Mexico_City", cfg.Plant.Timezone)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.False(t, cfg.MongoDB.Enabled())
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load("does-not-exist.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_TTL", "twelve hours")

	_, err := Load("does-not-exist.env")
	require.Error(t, err)
}

func TestValidateRejectsUnknownTimezone(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: "8080"},
		Database:  DatabaseConfig{DSN: "host=localhost"},
		Auth:      AuthConfig{JWTSecret: "s", TokenTTL: time.Hour, ElevatedRoles: []string{"GERENTE"}},
		Plant:     PlantConfig{Timezone: "Mars/Olympus_Mons"},
		Reporting: ReportingConfig{CronSchedule: "5 6 * * *"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIMEZONE")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, splitList(" A, ,B ,"))
	assert.Empty(t, splitList(""))
}

func TestDatabaseInMemory(t *testing.T) {
	assert.True(t, DatabaseConfig{DSN: MemoryDSN}.InMemory())
	assert.False(t, DatabaseConfig{DSN: "host=localhost"}.InMemory())
}
