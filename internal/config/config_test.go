package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg := Load()
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 3, cfg.Billing.PaymentRetries)
	assert.Equal(t, 24*time.Hour, cfg.Billing.IdempotencyTTL)
	assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowThreshold)
	assert.False(t, cfg.App.IsProduction())
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable", Timezone: "Asia/Manila"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=Asia/Manila", c.DSN())
}
