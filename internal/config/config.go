// Package config loads runtime settings from the environment.  A .env file
// in the working directory, when present, is loaded first; variables
// already set in the process environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/event-reservation-web/internal/apiclient"
)

// Config holds the settings shared by the server and the CLI.
type Config struct {
	Env      string // dev, test or prod
	Port     string // BFF listen port
	LogLevel string

	APIBaseURL      string
	APITimeout      time.Duration
	CatalogFallback string // off or mock

	RabbitMQURL string // empty disables reservation events

	SessionFile string // empty means the default location

	DB DBConfig
}

// DBConfig addresses the MySQL database used for durable client storage.
type DBConfig struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

// Enabled reports whether enough of the DB settings are present to connect.
func (d DBConfig) Enabled() bool { return d.User != "" && d.Host != "" && d.Name != "" }

// Load reads .env (if any) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment alone.
func FromEnv() (Config, error) {
	env := envStr("APP_ENV", "dev")
	fallback := "off"
	if env == "dev" {
		fallback = "mock"
	}
	cfg := Config{
		Env:             env,
		Port:            envStr("APP_PORT", "3000"),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		APIBaseURL:      envStr("API_BASE_URL", apiclient.DefaultBaseURL),
		APITimeout:      envDur("API_TIMEOUT", 10*time.Second),
		CatalogFallback: envStr("CATALOG_FALLBACK", fallback),
		RabbitMQURL:     envStr("RABBITMQ_URL", ""),
		SessionFile:     envStr("SESSION_FILE", ""),
		DB: DBConfig{
			User: envStr("DB_USER", ""),
			Pass: envStr("DB_PASS", ""),
			Host: envStr("DB_HOST", ""),
			Port: envStr("DB_PORT", "3306"),
			Name: envStr("DB_NAME", ""),
		},
	}
	switch cfg.CatalogFallback {
	case "off", "mock":
	default:
		return Config{}, fmt.Errorf("invalid CATALOG_FALLBACK %q (want off or mock)", cfg.CatalogFallback)
	}
	if cfg.APITimeout < 0 {
		return Config{}, fmt.Errorf("invalid API_TIMEOUT %s", cfg.APITimeout)
	}
	return cfg, nil
}

// RequireDB fails unless the DB settings are complete.
func (c Config) RequireDB() error {
	for _, k := range []string{"DB_USER", "DB_HOST", "DB_NAME"} {
		if _, err := must(k); err != nil {
			return err
		}
	}
	return nil
}
