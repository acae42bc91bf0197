package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr       string
	CORSOrigin string
	// Redis - empty means in-memory session storage
	RedisURL   string
	SessionTTL time.Duration
	// Pipeline tuning
	AutoApproveThreshold string
	ProviderTimeout      time.Duration
	MaxNegotiationRounds int
}

func Load() Config {
	return Config{
		Addr:                 getenv("API_ADDR", ":8014"),
		CORSOrigin:           getenv("CONTRACT_CORS_ORIGIN", "*"),
		RedisURL:             getenv("REDIS_URL", ""),
		SessionTTL:           time.Duration(getenvInt("CONTRACT_SESSION_TTL_SECONDS", 3600)) * time.Second,
		AutoApproveThreshold: getenv("CONTRACT_AUTO_APPROVE_THRESHOLD", "low"),
		ProviderTimeout:      time.Duration(getenvInt("CONTRACT_PROVIDER_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxNegotiationRounds: getenvInt("CONTRACT_MAX_NEGOTIATION_ROUNDS", 3),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
