package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // APP_TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Redis      RedisConfig
	Reconciler ReconcilerConfig
	Payroll    PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

// RedisConfig is optional: without a URL reconciliation requests run inline.
type RedisConfig struct {
	URL         string
	Workers     int
	DedupWindow time.Duration
	JobTimeout  time.Duration
}

type ReconcilerConfig struct {
	SweepInterval     time.Duration
	InvariantInterval time.Duration
	Grace             time.Duration
	FetchTimeout      time.Duration
	LookbackDays      int
	RequestTimeout    time.Duration
}

type PayrollConfig struct {
	WorkingDaysMode  string
	FixedWorkingDays int
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	config := &Config{}
	var errs []error

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432, &errs),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance_engine"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25, &errs)),
		MinConns: int32(getEnvInt("DB_MIN_CONNS", 5, &errs)),
	}

	// Application configuration
	config.App = AppConfig{
		Port:           getEnvInt("APP_PORT", 8080, &errs),
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "Asia/Jakarta"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	config.Redis = RedisConfig{
		URL:         getEnv("REDIS_URL", ""),
		Workers:     getEnvInt("RECONCILE_WORKERS", 2, &errs),
		DedupWindow: getEnvDuration("RECONCILE_DEDUP_WINDOW", 2*time.Minute, &errs),
		JobTimeout:  getEnvDuration("RECONCILE_JOB_TIMEOUT", 2*time.Minute, &errs),
	}

	config.Reconciler = ReconcilerConfig{
		SweepInterval:     getEnvDuration("RECONCILE_SWEEP_INTERVAL", time.Minute, &errs),
		InvariantInterval: getEnvDuration("RECONCILE_INVARIANT_INTERVAL", time.Hour, &errs),
		Grace:             getEnvDuration("RECONCILE_GRACE", 30*time.Minute, &errs),
		FetchTimeout:      getEnvDuration("RECONCILE_FETCH_TIMEOUT", 10*time.Second, &errs),
		LookbackDays:      getEnvInt("RECONCILE_LOOKBACK_DAYS", 3, &errs),
		RequestTimeout:    getEnvDuration("RECONCILE_REQUEST_TIMEOUT", 30*time.Second, &errs),
	}

	config.Payroll = PayrollConfig{
		WorkingDaysMode:  getEnv("PAYROLL_WORKING_DAYS_MODE", "fixed"),
		FixedWorkingDays: getEnvInt("PAYROLL_FIXED_WORKING_DAYS", 22, &errs),
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME is invalid: %w", err)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE is invalid: %w", err)
	}
	if c.Reconciler.SweepInterval <= 0 || c.Reconciler.InvariantInterval <= 0 {
		return fmt.Errorf("reconciliation intervals must be positive")
	}
	if c.Reconciler.Grace < 0 {
		return fmt.Errorf("RECONCILE_GRACE must not be negative")
	}
	if c.Reconciler.LookbackDays < 0 {
		return fmt.Errorf("RECONCILE_LOOKBACK_DAYS must not be negative")
	}
	if c.Redis.URL != "" && c.Redis.Workers <= 0 {
		return fmt.Errorf("RECONCILE_WORKERS must be positive when REDIS_URL is set")
	}
	switch c.Payroll.WorkingDaysMode {
	case "fixed", "calendar":
	default:
		return fmt.Errorf("PAYROLL_WORKING_DAYS_MODE must be fixed or calendar")
	}
	if c.Payroll.FixedWorkingDays <= 0 {
		return fmt.Errorf("PAYROLL_FIXED_WORKING_DAYS must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the company timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel maps LOG_LEVEL onto slog levels, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return d
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
