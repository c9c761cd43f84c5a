// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Store    StoreConfig
	Database DatabaseConfig
	Log      LogConfig
}

type AppConfig struct {
	Environment string // development, production
}

// Production reports whether the service runs with production defaults.
func (c AppConfig) Production() bool {
	return c.Environment == "production"
}

type HTTPConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type StoreConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
	AutoMigrate     bool
}

// DSN renders the connection URL understood by both pgx and lib/pq.
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

type LogConfig struct {
	Level string
	File  string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	p := &parser{}
	cfg := &Config{
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
		},
		HTTP: HTTPConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: p.getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            p.getInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "catalog"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    p.getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    p.getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: p.getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			MaxRetries:      p.getInt("DB_MAX_RETRIES", 5),
			RetryDelay:      p.getDuration("DB_RETRY_DELAY", time.Second),
			AutoMigrate:     p.getBool("DB_AUTO_MIGRATE", true),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
			File:  getEnv("LOG_FILE", ""),
		},
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.App,
		validation.Field(&c.App.Environment, validation.In("development", "production")),
	); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.HTTP,
		validation.Field(&c.HTTP.Addr, validation.Required),
		validation.Field(&c.HTTP.ShutdownTimeout, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Store,
		validation.Field(&c.Store.Driver, validation.Required, validation.In(DriverPostgres, DriverMemory)),
	); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Level, validation.In("debug", "info", "warn", "error")),
	); err != nil {
		return err
	}
	if c.Store.Driver != DriverPostgres {
		return nil
	}
	return validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.Host, validation.Required),
		validation.Field(&c.Database.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Database.User, validation.Required),
		validation.Field(&c.Database.Name, validation.Required),
		validation.Field(&c.Database.SSLMode, validation.In("disable", "allow", "prefer", "require", "verify-ca", "verify-full")),
		validation.Field(&c.Database.MaxOpenConns, validation.Min(1)),
		validation.Field(&c.Database.MaxIdleConns, validation.Min(0)),
		validation.Field(&c.Database.MaxRetries, validation.Min(0)),
	)
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) getInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := cast.ToIntE(raw)
	if err != nil {
		p.fail(key, raw, err)
		return defaultValue
	}
	return v
}

func (p *parser) getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := cast.ToDurationE(raw)
	if err != nil {
		p.fail(key, raw, err)
		return defaultValue
	}
	return v
}

func (p *parser) getBool(key string, defaultValue bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := cast.ToBoolE(raw)
	if err != nil {
		p.fail(key, raw, err)
		return defaultValue
	}
	return v
}

func (p *parser) fail(key, raw string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
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
