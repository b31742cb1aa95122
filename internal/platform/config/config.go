// Package config assembles process configuration from environment variables
// so main stays lean. Every knob has a development-friendly default; only
// external endpoints (Postgres, Redis, Kafka, notification providers) are
// opt-in and the service degrades to in-memory equivalents without them.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	LogLevel      string
	LogFormat     string
}

// Database configures the OLTP connection pool and the reporting read pool.
type Database struct {
	// DSN is the primary Postgres connection string. Empty means the service
	// runs on in-memory stores.
	DSN string
	// ReportDSN is the pool used by the performance report reads. Defaults to
	// DSN; point it at a read replica to keep report scans off the primary.
	ReportDSN    string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig configures the optional report cache connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the audit outbox relay. Empty brokers disable the relay.
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// Notifications configures the dispatcher. Providers left blank fall back to
// the log sender so development runs never call external APIs.
type Notifications struct {
	QueueSize       int
	Workers         int
	MaxRetries      int
	RetryBackoff    time.Duration
	SendGridAPIKey  string
	SendGridFrom    string
	TwilioSID       string
	TwilioAuthToken string
	TwilioFrom      string
	WebhookURL      string
	RatePerSecond   float64
}

// Config is the root configuration object handed to main.
type Config struct {
	Server         Server
	Database       Database
	Redis          RedisConfig
	Kafka          Kafka
	Notifications  Notifications
	ReportCacheTTL time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Server: Server{
			Addr:          envOr("CITYLINE_ADDR", ":8080"),
			JWTSigningKey: envOr("CITYLINE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     envOr("CITYLINE_JWT_ISSUER", "cityline"),
			JWTAudience:   envOr("CITYLINE_JWT_AUDIENCE", "cityline-api"),
			LogLevel:      envOr("CITYLINE_LOG_LEVEL", "info"),
			LogFormat:     envOr("CITYLINE_LOG_FORMAT", "text"),
		},
		Database: Database{
			DSN:          os.Getenv("CITYLINE_DB_DSN"),
			ReportDSN:    os.Getenv("CITYLINE_REPORT_DB_DSN"),
			MaxOpenConns: envIntOr("CITYLINE_DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envIntOr("CITYLINE_DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("CITYLINE_REDIS_URL"),
			PoolSize:     envIntOr("CITYLINE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("CITYLINE_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("CITYLINE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("CITYLINE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("CITYLINE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:    splitNonEmpty(os.Getenv("CITYLINE_KAFKA_BROKERS")),
			AuditTopic: envOr("CITYLINE_KAFKA_AUDIT_TOPIC", "cityline.audit.events"),
		},
		Notifications: Notifications{
			QueueSize:       envIntOr("CITYLINE_NOTIFY_QUEUE_SIZE", 256),
			Workers:         envIntOr("CITYLINE_NOTIFY_WORKERS", 4),
			MaxRetries:      envIntOr("CITYLINE_NOTIFY_MAX_RETRIES", 3),
			RetryBackoff:    envDurationOr("CITYLINE_NOTIFY_RETRY_BACKOFF", 5*time.Second),
			SendGridAPIKey:  os.Getenv("CITYLINE_SENDGRID_API_KEY"),
			SendGridFrom:    envOr("CITYLINE_SENDGRID_FROM", "no-reply@cityline.example"),
			TwilioSID:       os.Getenv("CITYLINE_TWILIO_ACCOUNT_SID"),
			TwilioAuthToken: os.Getenv("CITYLINE_TWILIO_AUTH_TOKEN"),
			TwilioFrom:      os.Getenv("CITYLINE_TWILIO_FROM"),
			WebhookURL:      os.Getenv("CITYLINE_NOTIFY_WEBHOOK_URL"),
			RatePerSecond:   envFloatOr("CITYLINE_NOTIFY_RATE_PER_SECOND", 5),
		},
		ReportCacheTTL: envDurationOr("CITYLINE_REPORT_CACHE_TTL", time.Minute),
	}

	if cfg.Database.ReportDSN == "" {
		cfg.Database.ReportDSN = cfg.Database.DSN
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitNonEmpty(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
