package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Alert providers
const (
	AlertProviderLog = "log"
	AlertProviderSES = "ses"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Alert    AlertConfig
	Seed     SeedUserConfig
}

type DatabaseConfig struct {
	Driver            string        `env:"STORE_DRIVER" envDefault:"postgres"`
	Host              string        `env:"DB_HOST" envDefault:"localhost"`
	Port              int           `env:"DB_PORT" envDefault:"5432"`
	User              string        `env:"DB_USER" envDefault:"postgres"`
	Password          string        `env:"DB_PASSWORD"`
	Name              string        `env:"DB_NAME" envDefault:"workout_tracker"`
	SSLMode           string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns          int32         `env:"DB_MAX_CONNS" envDefault:"25"`
	MinConns          int32         `env:"DB_MIN_CONNS" envDefault:"5"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"5m"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"1m"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	SQLitePath        string        `env:"SQLITE_PATH" envDefault:"./data/database.sqlite"`
	// QueryTimeout bounds every store call made on behalf of a request
	QueryTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
}

type ServerConfig struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	Env            string        `env:"ENV" envDefault:"development"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout    time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	Timezone       string        `env:"APP_TIMEZONE" envDefault:"Local"`
}

type AuthConfig struct {
	JWTSecret           string        `env:"JWT_SECRET"`
	TokenTTL            time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	AlertThreshold      int           `env:"LOGIN_ALERT_THRESHOLD" envDefault:"3"`
	AlertWindow         time.Duration `env:"LOGIN_ALERT_WINDOW" envDefault:"60s"`
	TimingDelayBaseMs   int           `env:"TIMING_DELAY_BASE_MS" envDefault:"250"`
	TimingDelayRandomMs int           `env:"TIMING_DELAY_RANDOM_MS" envDefault:"100"`
	LoginRateLimit      int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
}

type AlertConfig struct {
	Provider    string        `env:"ALERT_PROVIDER" envDefault:"log"`
	AdminEmail  string        `env:"ADMIN_EMAIL"`
	FromAddress string        `env:"ALERT_FROM_ADDRESS" envDefault:"no-reply@workouttracker.com"`
	AWSRegion   string        `env:"AWS_REGION" envDefault:"us-east-1"`
	Timeout     time.Duration `env:"ALERT_TIMEOUT" envDefault:"10s"`
}

// SeedUserConfig describes the account created on first start, if any
type SeedUserConfig struct {
	Email     string `env:"DEFAULT_USER_EMAIL"`
	Password  string `env:"DEFAULT_USER_PASSWORD"`
	Name      string `env:"DEFAULT_USER_NAME" envDefault:"Default User"`
	Birthdate string `env:"DEFAULT_USER_BIRTHDATE"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if err := validateJWTSecret(cfg.Auth.JWTSecret, cfg.Server.Env); err != nil {
		return nil, err
	}

	switch cfg.Database.Driver {
	case DriverPostgres:
		if cfg.Database.Password == "" {
			return nil, fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Database.Driver)
	}

	switch cfg.Alert.Provider {
	case AlertProviderLog:
	case AlertProviderSES:
		if cfg.Alert.AdminEmail == "" {
			return nil, fmt.Errorf("ADMIN_EMAIL is required when ALERT_PROVIDER=ses")
		}
	default:
		return nil, fmt.Errorf("unsupported ALERT_PROVIDER %q", cfg.Alert.Provider)
	}

	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive")
	}
	if cfg.Auth.AlertThreshold < 1 {
		return nil, fmt.Errorf("LOGIN_ALERT_THRESHOLD must be at least 1")
	}
	if cfg.Database.QueryTimeout <= 0 {
		return nil, fmt.Errorf("STORE_TIMEOUT must be positive")
	}

	if _, err := cfg.Server.Location(); err != nil {
		return nil, err
	}

	if (cfg.Seed.Email == "") != (cfg.Seed.Password == "") {
		return nil, fmt.Errorf("DEFAULT_USER_EMAIL and DEFAULT_USER_PASSWORD must be set together")
	}

	for i, origin := range cfg.Server.AllowedOrigins {
		cfg.Server.AllowedOrigins[i] = strings.TrimSpace(origin)
	}
	if len(cfg.Server.AllowedOrigins) == 0 && cfg.Server.Env != "production" {
		cfg.Server.AllowedOrigins = defaultDevOrigins()
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if strings.Repeat(weak, len(secretLower)/len(weak)) == secretLower {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Location resolves APP_TIMEZONE; day windows and day keys are computed in it
func (c *ServerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info
func (c *ServerConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func defaultDevOrigins() []string {
	return []string{
		"http://localhost:3000", // Nuxt dev server
		"http://localhost:8080",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
