package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port             int
	NatsURL          string
	NatsToken        string
	DatabaseURL      string
	LogLevel         string
	DefaultRegion    string
	SafetyURL        string
	SafetyTimeout    time.Duration
	GeneratorTimeout time.Duration
	AnthropicAPIKey  string
	AnthropicModel   string
	SlackBotToken    string
	SlackChannel     string
	PersonaHints     string
}

func Load() Config {
	return Config{
		Port:             envInt("DECOY_PORT", 8770),
		NatsURL:          envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:        envStr("NATS_TOKEN", ""),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		DefaultRegion:    envStr("DECOY_DEFAULT_REGION", "IN"),
		SafetyURL:        envStr("SAFETY_SCREEN_URL", ""),
		SafetyTimeout:    envDur("SAFETY_TIMEOUT", 5*time.Second),
		GeneratorTimeout: envDur("GENERATOR_TIMEOUT", 10*time.Second),
		AnthropicAPIKey:  envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   envStr("DECOY_MODEL", "claude-sonnet-4-20250514"),
		SlackBotToken:    envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:     envStr("SLACK_INTEL_CHANNEL", ""),
		PersonaHints:     envStr("DECOY_PERSONA_HINTS", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
