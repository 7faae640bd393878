package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		JWTSecret:     "a-development-secret",
		Port:          "8590",
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "inkwell",
		Env:           "development",
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid development config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing mongo uri", func(t *testing.T) {
		cfg := validConfig()
		cfg.MongoURI = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing mongo database", func(t *testing.T) {
		cfg := validConfig()
		cfg.MongoDatabase = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestValidateProduction(t *testing.T) {
	t.Run("rejects default secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.Env = "production"
		cfg.JWTSecret = "your-secret-key-change-in-production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects short secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.Env = "production"
		cfg.JWTSecret = "short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("accepts strong secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.Env = "production"
		cfg.JWTSecret = strings.Repeat("s", 48)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("prod alias gets the same checks", func(t *testing.T) {
		cfg := validConfig()
		cfg.Env = "prod"
		cfg.JWTSecret = "short"
		assert.Error(t, cfg.Validate())
	})
}
