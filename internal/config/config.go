package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	Env        string
	DBPath     string // empty means the per-user default location
	ListenAddr string
	LoginDelay time.Duration

	// Gemini
	GeminiAPIKey        string
	GeminiBaseURL       string
	GeminiModel         string
	GeminiAnalysisModel string
	AITimeout           time.Duration
	AIRatePerMinute     int

	// Observability (optional)
	SentryDSN string
}

// Load reads .env files (if any) and then the process environment.
func Load(files ...string) *Config {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("no .env file loaded, using environment variables")
	}

	return &Config{
		Env:        envString("AURANUT_ENV", "production"),
		DBPath:     envString("AURANUT_DB", ""),
		ListenAddr: envString("AURANUT_ADDR", "127.0.0.1:8787"),
		LoginDelay: envDuration("AURANUT_LOGIN_DELAY", 0),

		GeminiAPIKey:        envString("GEMINI_API_KEY", envString("API_KEY", "")),
		GeminiBaseURL:       envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:         envString("GEMINI_MODEL", "gemini-3-flash-preview"),
		GeminiAnalysisModel: envString("GEMINI_ANALYSIS_MODEL", "gemini-3-pro-preview"),
		AITimeout:           envDuration("AURANUT_AI_TIMEOUT", 45*time.Second),
		AIRatePerMinute:     envInt("AURANUT_AI_RATE_PER_MINUTE", 30),

		SentryDSN: envString("SENTRY_DSN", ""),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) HasGemini() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

func envString(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	value := envString(key, "")
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func envDuration(key string, defaultValue time.Duration) time.Duration {
	value := envString(key, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}
