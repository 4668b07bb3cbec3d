package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName         string
	Port           string
	LogLevel       string
	AllowedOrigins []string
	Auth           AuthConfig
	Turso          TursoConfig
	Redis          RedisConfig
	Slack          SlackConfig
	PubSub         PubSubConfig
	Playtomic      PlaytomicConfig
	// DryRun logs Slack announcements instead of posting them.
	DryRun bool
}
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
type RedisConfig struct {
	URL string
}
type SlackConfig struct {
	Token     string
	ChannelID string
}
type PubSubConfig struct {
	ProjectID string
	Topic     string
}
type PlaytomicConfig struct {
	TenantID string
	// Timezone is an IANA name used to map Playtomic start times to club slots.
	Timezone string
}
