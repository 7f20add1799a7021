package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration

	DBDriver string // sqlite|postgres
	DBDSN    string

	AuthSecret   string
	AuthIssuer   string
	AuthTokenTTL time.Duration

	// Bootstrap login user, upserted at startup when email and hash are set.
	AdminEmail    string
	AdminName     string
	AdminPassHash string // bcrypt

	CORSOrigins []string

	LogLevel  slog.Level
	LogFormat string // json|text
}

// Load reads an optional .env file, then the environment. A missing .env is
// not an error; variables already set in the environment win.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),
		DBDriver:       envOr("DB_DRIVER", "sqlite"),
		DBDSN:          os.Getenv("DB_DSN"),
		AuthSecret:     envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AuthIssuer:     envOr("AUTH_ISSUER", "qbank"),
		AuthTokenTTL:   envDuration("AUTH_TOKEN_TTL", 8*time.Hour),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminName:      envOr("ADMIN_NAME", "Administrator"),
		AdminPassHash:  os.Getenv("ADMIN_PASS_HASH"),
		CORSOrigins:    csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		LogLevel:       envLevel("LOG_LEVEL", slog.LevelInfo),
		LogFormat:      strings.ToLower(envOr("LOG_FORMAT", "text")),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envLevel(k string, def slog.Level) slog.Level {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		return def
	}
	return l
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
