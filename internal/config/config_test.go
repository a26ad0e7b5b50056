package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 168*time.Hour, cfg.Redis.CartTTL)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "250", cfg.WhatsApp.CountryCode)
	assert.Equal(t, "RWF", cfg.Store.Currency)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example, https://admin.example ,")
	t.Setenv("CART_TTL_HOURS", "24")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg := Load()

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Redis.CartTTL)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr())
}
