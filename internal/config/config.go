package config

import (
	"os"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Essay    EssayConfig
	Postgres PostgresConfig
}

type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
}

type AuthConfig struct {
	JWTSecret       string
	TokenTTLSeconds string
	AllowSignup     string
}

type EssayConfig struct {
	MaxContentLength string
	MaxTitleLength   string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:               getenv("PORT", "8080"),
			CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Auth: AuthConfig{
			JWTSecret:       os.Getenv("JWT_SECRET"),
			TokenTTLSeconds: getenv("TOKEN_TTL_SECONDS", "86400"),
			AllowSignup:     getenv("ALLOW_SIGNUP", "true"),
		},
		Essay: EssayConfig{
			MaxContentLength: getenv("MAX_CONTENT_LENGTH", "500000"),
			MaxTitleLength:   getenv("MAX_TITLE_LENGTH", "200"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
