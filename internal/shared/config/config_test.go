package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Redis.SeatHoldTTL)
	assert.Equal(t, "usd", cfg.Payment.Currency)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Contains(t, cfg.Database.DSN, "dbname=busline_db")
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com/api/")
	t.Setenv("PAYMENT_CURRENCY", "INR")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	t.Setenv("REDIS_SEAT_HOLD_TTL", "90s")
	t.Setenv("RATE_LIMIT_ENABLED", "nope")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.GetServerAddress())
	assert.Equal(t, "https://api.example.com/api", cfg.Backend.BaseURL)
	assert.Equal(t, "inr", cfg.Payment.Currency)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 90*time.Second, cfg.Redis.SeatHoldTTL)
	// unparsable values keep the default
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestBookingLocation(t *testing.T) {
	t.Setenv("BOOKING_TIMEZONE", "Not/AZone")
	assert.Equal(t, time.UTC, Load().BookingLocation())

	t.Setenv("BOOKING_TIMEZONE", "Asia/Kolkata")
	assert.Equal(t, "Asia/Kolkata", Load().BookingLocation().String())
}
