package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Values come from the
// environment so main stays lean.
type Server struct {
	Addr string

	// Timezone is the IANA zone used for calendar-day and week bucketing.
	// Verdicts must not depend on the runtime local zone.
	Timezone string

	PostgresDSN string
	RedisURL    string

	KafkaBrokers []string
	KafkaTopic   string

	JWTSigningKey string

	GeofenceRadiusMeters float64
}

// RedisConfig tunes the shared Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:                 envOr("SHIFTGUARD_ADDR", ":8080"),
		Timezone:             envOr("SHIFTGUARD_TIMEZONE", "Europe/Madrid"),
		PostgresDSN:          os.Getenv("SHIFTGUARD_POSTGRES_DSN"),
		RedisURL:             os.Getenv("SHIFTGUARD_REDIS_URL"),
		KafkaTopic:           envOr("SHIFTGUARD_KAFKA_TOPIC", "shiftguard.audit.entries"),
		JWTSigningKey:        envOr("SHIFTGUARD_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		GeofenceRadiusMeters: envFloat("SHIFTGUARD_GEOFENCE_RADIUS_M", 50),
	}
	if brokers := os.Getenv("SHIFTGUARD_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

// Redis builds the Redis client configuration with pool defaults.
func (s Server) Redis() RedisConfig {
	return RedisConfig{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
