package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds shared runtime configuration for the API server and the
// automation trigger binary.
type Config struct {
	Env               string
	HTTPPort          string
	PostgresDSN       string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	JWTSigningKey     string
	JWTIssuer         string
	JWTTTL            time.Duration
	RateLimitCapacity int
	RateLimitRefill   float64
	RateLimitTTL      time.Duration
}

// Load reads configuration from environment variables with sane defaults for
// local development. An empty POSTGRES_DSN selects the in-memory store; an
// empty REDIS_ADDR disables submission rate limiting.
func Load() Config {
	return Config{
		Env:               getEnv("APP_ENV", "dev"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		PostgresDSN:       getEnv("POSTGRES_DSN", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		JWTSigningKey:     getEnv("JWT_SIGNING_KEY", "dev-only-signing-key"),
		JWTIssuer:         getEnv("JWT_ISSUER", "ats"),
		JWTTTL:            getEnvDuration("JWT_TTL", time.Hour),
		RateLimitCapacity: getEnvInt("RATE_LIMIT_CAPACITY", 10),
		RateLimitRefill:   getEnvFloat("RATE_LIMIT_REFILL_PER_SEC", 0.5),
		RateLimitTTL:      getEnvDuration("RATE_LIMIT_TTL", time.Hour),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
