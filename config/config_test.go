package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_CORSAllowedOrigins(t *testing.T) {
	t.Run("defaults to permissive", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg := Load()
		assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	})

	t.Run("splits a comma-separated list", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
		cfg := Load()
		assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	})

	t.Run("single origin stays intact", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com")
		cfg := Load()
		assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSAllowedOrigins)
	})

	t.Run("blank entries are dropped", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", ",,")
		cfg := Load()
		assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	})
}
