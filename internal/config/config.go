package config

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	cfg := Config{
		DBName:         getEnv("DB_NAME"),
		Port:           getEnv("PORT"),
		LogLevel:       getEnvDefault("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnvDefault("ALLOWED_ORIGINS", "http://localhost:5173")),
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET"),
			TokenTTL:  parseDuration("TOKEN_TTL", 24*time.Hour),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnvDefault("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvDefault("TURSO_AUTH_TOKEN", ""),
		},
		Redis: RedisConfig{
			URL: getEnvDefault("REDIS_URL", ""),
		},
		Slack: SlackConfig{
			Token:     getEnvDefault("SLACK_BOT_TOKEN", ""),
			ChannelID: getEnvDefault("SLACK_CHANNEL_ID", ""),
		},
		PubSub: PubSubConfig{
			ProjectID: getEnvDefault("GCP_PROJECT", ""),
			Topic:     getEnvDefault("PUBSUB_TOPIC", "padel-match-events"),
		},
		Playtomic: PlaytomicConfig{
			TenantID: getEnvDefault("PLAYTOMIC_TENANT_ID", ""),
			Timezone: getEnvDefault("CLUB_TIMEZONE", "Local"),
		},
		DryRun: getEnvDefault("DRY_RUN", "false") == "true",
	}
	return cfg
}

func getEnvDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnvDefault(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn("Invalid duration, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
