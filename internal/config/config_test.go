package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.GoEnv)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.True(t, cfg.ConfirmationSingleUse)
	assert.Equal(t, "log", cfg.MailBackend)
	assert.Equal(t, 10*time.Second, cfg.MailTimeout)
	assert.Equal(t, 10, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Empty(t, cfg.RedisURL)
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("CONFIRMATION_SINGLE_USE", "false")
	t.Setenv("MAIL_BACKEND", "smtp")
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("GO_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.False(t, cfg.ConfirmationSingleUse)
	assert.Equal(t, "mail.example.com", cfg.SMTPHost)
	assert.True(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	t.Run("InvalidPort", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "eighty")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("InvalidDuration", func(t *testing.T) {
		t.Setenv("MAIL_TIMEOUT", "soon")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPPort:          8080,
			JWTSecret:         testSecret,
			AccessTokenTTL:    time.Hour,
			MailBackend:       "log",
			MailTimeout:       time.Second,
			RateLimitRequests: 5,
			RateLimitWindow:   time.Minute,
			LogLevel:          "info",
			LogFormat:         "json",
		}
	}

	assert.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"short secret":    func(c *Config) { c.JWTSecret = "short" },
		"bad port":        func(c *Config) { c.HTTPPort = 0 },
		"bad log level":   func(c *Config) { c.LogLevel = "verbose" },
		"bad log format":  func(c *Config) { c.LogFormat = "xml" },
		"bad backend":     func(c *Config) { c.MailBackend = "pigeon" },
		"smtp no host":    func(c *Config) { c.MailBackend = "smtp" },
		"zero rate limit": func(c *Config) { c.RateLimitRequests = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadImportConfig_NoSecretNeeded(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("IMPORT_DATA_DIR", "/srv/fixtures")

	cfg, err := LoadImportConfig()
	require.NoError(t, err)
	assert.Equal(t, "/srv/fixtures", cfg.ImportDataDir)
	assert.Empty(t, cfg.JWTSecret)
}
