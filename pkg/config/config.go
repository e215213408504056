// Package config loads application configuration from the environment
// (and optionally a config file) via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups all application configuration.
type Config struct {
	App      AppConfig
	DB       DBConfig
	HTTP     HTTPConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Notifier NotifierConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig holds PostgreSQL settings. DatabaseURL, when set, is used as the
// full connection string; otherwise the DSN is built from the parts.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString returns the DSN to use.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// RedisConfig holds Redis settings. Redis backs the signup store and the
// distributed scan lock; the scan lock degrades to an in-process guard
// when Redis is unreachable.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NotifierConfig holds low-stock notifier settings.
type NotifierConfig struct {
	// Interval between scheduled scans.
	Interval time.Duration
	// MaturityWindow is the minimum product age before it is scanned.
	MaturityWindow time.Duration
	// DedupWindow is the cool-down between alerts for the same product.
	DedupWindow time.Duration
	// Locale selects notification templates.
	Locale string
}

// Load reads configuration from environment variables, with an optional
// config file for local development.
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Optional local config file.
	v.SetConfigName("stockcontrol")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetDefault("app.env", "development")
	v.SetDefault("app.name", "stockcontrol")
	v.SetDefault("app.loglevel", "info")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.dbname", "stockcontrol")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("jwt.accessttl", 15*time.Minute)
	v.SetDefault("jwt.refreshttl", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "stockcontrol")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("notifier.interval", time.Hour)
	v.SetDefault("notifier.maturitywindow", time.Hour)
	v.SetDefault("notifier.dedupwindow", 24*time.Hour)
	v.SetDefault("notifier.locale", "pt")

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("app.env"),
			Name:     v.GetString("app.name"),
			LogLevel: v.GetString("app.loglevel"),
		},
		DB: DBConfig{
			DatabaseURL: v.GetString("database.url"),
			Host:        v.GetString("db.host"),
			Port:        v.GetInt("db.port"),
			User:        v.GetString("db.user"),
			Password:    v.GetString("db.password"),
			DBName:      v.GetString("db.dbname"),
			SSLMode:     v.GetString("db.sslmode"),
		},
		HTTP: HTTPConfig{
			Host: v.GetString("http.host"),
			Port: v.GetInt("http.port"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			AccessTTL:  v.GetDuration("jwt.accessttl"),
			RefreshTTL: v.GetDuration("jwt.refreshttl"),
			Issuer:     v.GetString("jwt.issuer"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Notifier: NotifierConfig{
			Interval:       v.GetDuration("notifier.interval"),
			MaturityWindow: v.GetDuration("notifier.maturitywindow"),
			DedupWindow:    v.GetDuration("notifier.dedupwindow"),
			Locale:         v.GetString("notifier.locale"),
		},
	}

	if cfg.App.Env == "production" && cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return cfg, nil
}
