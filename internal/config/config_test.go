package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:            "8080",
		Env:             "development",
		JWTSecret:       "secure-secret-at-least-32-chars-long",
		JWTExpiresIn:    7 * 24 * time.Hour,
		BcryptCost:      10,
		AdminBcryptCost: 10,
		DBPassword:      "secure-password",
		DBSSLMode:       "require",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Valid development config", func(_ *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Zero token lifetime", func(c *Config) { c.JWTExpiresIn = 0 }, true},
		{"Bcrypt cost too low", func(c *Config) { c.BcryptCost = 2 }, true},
		{"Bcrypt cost too high", func(c *Config) { c.BcryptCost = 40 }, true},
		{"Admin cost out of range", func(c *Config) { c.AdminBcryptCost = 0 }, true},
		{"Admin email without password", func(c *Config) { c.AdminEmail = "admin@example.com" }, true},
		{"Admin email with password", func(c *Config) {
			c.AdminEmail = "admin@example.com"
			c.AdminPassword = "secret"
		}, false},
		{"Production default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"Production short secret", func(c *Config) {
			c.Env = "prod"
			c.JWTSecret = "short"
		}, true},
		{"Production default DB password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, true},
		{"Production strong settings", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer os.Unsetenv("ADMIN_PASSWORD")
	defer viper.Reset()

	os.Setenv("APP_ENV", "test")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("ADMIN_EMAIL", "  Admin@Example.COM ")
	os.Setenv("ADMIN_PASSWORD", "changeme")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, "1.0.0", cfg.AppVersion)
	assert.False(t, cfg.GoogleEnabled())
	assert.False(t, cfg.IsProduction())
}
