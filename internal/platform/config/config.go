package config

import (
	"log/slog"
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	UpstreamURL   string
	UpstreamToken string
	JWTSigningKey string
	LogLevel      slog.Level
	Redis         RedisConfig
}

// RedisConfig configures the optional contact-search cache. An empty URL
// disables caching entirely.
type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SearchCacheTTL bounds how long contact-search results may be served from
// cache. Short on purpose: duplicate detection is advisory, but it should not
// miss a contact created moments ago.
var SearchCacheTTL = 30 * time.Second

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("FAKTURO_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	upstream := os.Getenv("FAKTURO_UPSTREAM_URL")
	if upstream == "" {
		upstream = "http://localhost:9000"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	level := slog.LevelInfo
	if os.Getenv("FAKTURO_DEBUG") == "true" {
		level = slog.LevelDebug
	}

	return Server{
		Addr:          addr,
		UpstreamURL:   upstream,
		UpstreamToken: os.Getenv("FAKTURO_UPSTREAM_TOKEN"),
		JWTSigningKey: jwtSigningKey,
		LogLevel:      level,
		Redis: RedisConfig{
			URL:          os.Getenv("FAKTURO_REDIS_URL"),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  1 * time.Second,
			WriteTimeout: 1 * time.Second,
		},
	}
}
