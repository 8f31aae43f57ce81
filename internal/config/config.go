// Package config loads process configuration from the environment, after
// reading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/amrixahmad/questionsmith/internal/events"
	"github.com/amrixahmad/questionsmith/internal/llm"
)

// Config is everything the CLI and server read from the environment.
type Config struct {
	DBDriver string
	DBDSN    string // empty means the default SQLite path

	Addr           string
	PublicURL      string
	CORSOrigins    []string
	JWTSecret      string
	RequestTimeout time.Duration

	Events events.Config

	LogFormat string
	LogLevel  string

	LLM llm.Config
}

// Load reads .env from the working directory when present, then the
// environment. Variables already set in the environment win over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	p := llm.EnvPrefix
	cfg := Config{
		DBDriver:       envOr(p+"DB_DRIVER", "sqlite"),
		DBDSN:          envOr(p+"DB", ""),
		Addr:           envOr(p+"ADDR", ":8080"),
		PublicURL:      envOr(p+"PUBLIC_URL", "http://localhost:8080"),
		CORSOrigins:    csvOr(p+"CORS_ORIGINS", ""),
		JWTSecret:      envOr(p+"JWT_SECRET", ""),
		RequestTimeout: time.Duration(envInt(p+"REQUEST_TIMEOUT_SECONDS", 90)) * time.Second,
		Events: events.Config{
			Publisher:    envOr("EVENTS_PUBLISHER", events.KindChannel),
			KafkaBrokers: csvOr("KAFKA_BROKERS", "localhost:9092"),
		},
		LogFormat: envOr("LOG_FORMAT", "text"),
		LogLevel:  envOr("LOG_LEVEL", "info"),
		LLM:       llm.ConfigFromEnv(),
	}
	if !envBool("EVENTS_ENABLED", true) {
		cfg.Events.Publisher = events.KindNoop
	}
	return cfg
}

// ValidateServer checks the settings the HTTP server cannot run without.
func (c Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%sJWT_SECRET is required", llm.EnvPrefix)
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("%sJWT_SECRET must be at least 16 characters", llm.EnvPrefix)
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return n
}

func envBool(k string, def bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return def
	}
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
