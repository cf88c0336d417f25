// Package config builds process configuration from environment variables so
// main stays lean. Every knob has a development default; production overrides
// via ADMIN_GATEWAY_* variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string
	LogLevel string
}

// Upstream configures the backend API the gateway fronts.
type Upstream struct {
	BaseURL string
	Timeout time.Duration
}

// Session configures session lifetime and storage.
type Session struct {
	TTL time.Duration
}

// JWT configures the browser-facing session token.
type JWT struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// Redis configures the optional Redis backing for sessions and lockouts.
// An empty URL means in-memory stores.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the optional audit event stream. No brokers means audit
// events go to the local store only.
type Kafka struct {
	Brokers []string
	Topic   string
}

// AuditDB configures the optional Postgres audit trail. An empty DSN means
// the in-memory audit store.
type AuditDB struct {
	DSN string
}

// Lockout configures login failure lockouts.
type Lockout struct {
	MaxFailures int
	Window      time.Duration
	Duration    time.Duration
}

// Config is the root configuration object assembled once at startup.
type Config struct {
	Server   Server
	Upstream Upstream
	Session  Session
	JWT      JWT
	Redis    Redis
	Kafka    Kafka
	AuditDB  AuditDB
	Lockout  Lockout

	// ServiceTokenHash is the bcrypt hash of the shared token automation
	// clients may present instead of a login session. Empty disables
	// service-token auth.
	ServiceTokenHash string
}

// FromEnv builds the full configuration from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:     envString("ADMIN_GATEWAY_ADDR", ":8080"),
			LogLevel: envString("ADMIN_GATEWAY_LOG_LEVEL", "info"),
		},
		Upstream: Upstream{
			BaseURL: envString("ADMIN_GATEWAY_UPSTREAM_URL", "http://localhost:9000/api"),
			Timeout: envDuration("ADMIN_GATEWAY_UPSTREAM_TIMEOUT", 15*time.Second),
		},
		Session: Session{
			TTL: envDuration("ADMIN_GATEWAY_SESSION_TTL", 8*time.Hour),
		},
		JWT: JWT{
			// Override in production; the default keeps local development
			// friction-free.
			SigningKey: envString("ADMIN_GATEWAY_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     envString("ADMIN_GATEWAY_JWT_ISSUER", "admin-gateway"),
			Audience:   envString("ADMIN_GATEWAY_JWT_AUDIENCE", "admin-console"),
		},
		Redis: Redis{
			URL:          os.Getenv("ADMIN_GATEWAY_REDIS_URL"),
			PoolSize:     envInt("ADMIN_GATEWAY_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("ADMIN_GATEWAY_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("ADMIN_GATEWAY_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("ADMIN_GATEWAY_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("ADMIN_GATEWAY_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers: envList("ADMIN_GATEWAY_KAFKA_BROKERS"),
			Topic:   envString("ADMIN_GATEWAY_KAFKA_AUDIT_TOPIC", "admin-gateway.audit"),
		},
		AuditDB: AuditDB{
			DSN: os.Getenv("ADMIN_GATEWAY_AUDIT_DB_DSN"),
		},
		Lockout: Lockout{
			MaxFailures: envInt("ADMIN_GATEWAY_LOCKOUT_MAX_FAILURES", 5),
			Window:      envDuration("ADMIN_GATEWAY_LOCKOUT_WINDOW", 15*time.Minute),
			Duration:    envDuration("ADMIN_GATEWAY_LOCKOUT_DURATION", 15*time.Minute),
		},
		ServiceTokenHash: os.Getenv("ADMIN_GATEWAY_SERVICE_TOKEN_HASH"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
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

func envDuration(key string, fallback time.Duration) time.Duration {
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

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
