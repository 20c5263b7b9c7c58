package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("CodeTTL converts seconds to duration", func(t *testing.T) {
		cfg := &Config{CodeTTLSeconds: 420}
		assert.Equal(t, 420*time.Second, cfg.CodeTTL())
	})

	t.Run("Origins splits and trims the list", func(t *testing.T) {
		cfg := &Config{AllowedOrigins: "https://a.example, https://b.example"}
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
	})
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 8080, CodeTTLSeconds: 420, RateLimitPerMin: 120}

	t.Run("accepts defaults", func(t *testing.T) {
		cfg := valid
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rejects an out-of-range port", func(t *testing.T) {
		cfg := valid
		cfg.Port = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects a non-positive code TTL", func(t *testing.T) {
		cfg := valid
		cfg.CodeTTLSeconds = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects a non-positive rate limit", func(t *testing.T) {
		cfg := valid
		cfg.RateLimitPerMin = -1
		assert.Error(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"PORT":               os.Getenv("PORT"),
		"LOG_LEVEL":          os.Getenv("LOG_LEVEL"),
		"CODE_TTL_SECONDS":   os.Getenv("CODE_TTL_SECONDS"),
		"RATE_LIMIT_PER_MIN": os.Getenv("RATE_LIMIT_PER_MIN"),
		"ALLOWED_ORIGINS":    os.Getenv("ALLOWED_ORIGINS"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	t.Run("loads config with defaults", func(t *testing.T) {
		for k := range originalEnv {
			os.Unsetenv(k)
		}

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 420, cfg.CodeTTLSeconds)
		assert.Equal(t, 120, cfg.RateLimitPerMin)
		assert.Equal(t, "*", cfg.AllowedOrigins)
	})

	t.Run("loads custom values", func(t *testing.T) {
		os.Setenv("PORT", "3000")
		os.Setenv("CODE_TTL_SECONDS", "600")
		os.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, 600, cfg.CodeTTLSeconds)
		assert.Equal(t, "debug", cfg.LogLevel)
	})
}
