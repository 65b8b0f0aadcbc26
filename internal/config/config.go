package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingDatabaseURL is a fatal startup condition: the service cannot run
// without its primary store.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

type Config struct {
	Env  string
	Port int

	// Primary store (Postgres) and the REST fallback against the same store.
	DatabaseURL    string
	RestURL        string
	RestServiceKey string

	// Identity provider. Mode "local" runs the in-process provider (dev/test);
	// "remote" talks to the hosted provider over REST.
	AuthMode       string
	AuthURL        string
	AuthAnonKey    string
	AuthServiceKey string
	AuthJWTSecret  string
	AccessTokenTTL time.Duration

	// Redis, used for session versions.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Site URL for redirect construction after sign-out.
	SiteURL string

	CORSOrigins []string

	TracingEnabled bool
	OTLPEndpoint   string

	// Seed admin (optional).
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

func Load() (Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RestURL:        os.Getenv("REST_URL"),
		RestServiceKey: os.Getenv("REST_SERVICE_KEY"),

		AuthMode:       getEnv("AUTH_MODE", "local"),
		AuthURL:        os.Getenv("AUTH_URL"),
		AuthAnonKey:    os.Getenv("AUTH_ANON_KEY"),
		AuthServiceKey: os.Getenv("AUTH_SERVICE_KEY"),
		AuthJWTSecret:  getEnv("AUTH_JWT_SECRET", "dev-secret-change-me"),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SiteURL: getEnv("SITE_URL", "http://localhost:3000"),

		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   os.Getenv("OTLP_ENDPOINT"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Administratori"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}

	return cfg, nil
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			return fallback
		}
		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fallback
		}
		return d
	}
	return fallback
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
