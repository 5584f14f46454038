package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yuadm/first-step-greet/internal/pkg/clock"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Log        LogConfig
	Storage    StorageConfig
	Compliance ComplianceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
	CORSOrigins []string
	Timezone    *time.Location
	// LoginRateLimit is the sustained login attempts per minute per IP.
	LoginRateLimit int
}

// LogConfig controls the optional rotated log file
type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type StorageConfig struct {
	Type     string // local or s3
	BasePath string
	BaseURL  string
	S3       S3Config
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

type ComplianceConfig struct {
	DigestInterval  time.Duration
	RefreshDebounce time.Duration
	// SimulatedDate pins "now" for status resolution. Zero means real time.
	SimulatedDate time.Time
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}
	var errs []error

	// Database configuration
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432, &errs),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "first_step"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	tz, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid APP_TIMEZONE: %w", err))
		tz = time.UTC
	}
	frontendURL := getEnv("FRONTEND_URL", "http://localhost:5173")
	origins := getEnvSlice("CORS_ALLOWED_ORIGINS")
	if len(origins) == 0 {
		origins = []string{frontendURL}
	}

	config.App = AppConfig{
		Port:           getEnvInt("APP_PORT", 8080, &errs),
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		FrontendURL:    frontendURL,
		CORSOrigins:    origins,
		Timezone:       tz,
		LoginRateLimit: getEnvInt("LOGIN_RATE_LIMIT_PER_MINUTE", 10, &errs),
	}

	config.Log = LogConfig{
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  getEnvInt("LOG_FILE_MAX_SIZE_MB", 100, &errs),
		MaxBackups: getEnvInt("LOG_FILE_MAX_BACKUPS", 5, &errs),
		MaxAgeDays: getEnvInt("LOG_FILE_MAX_AGE_DAYS", 28, &errs),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", time.Hour, &errs),
	}

	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
		S3: S3Config{
			Bucket:    getEnv("S3_BUCKET", ""),
			Region:    getEnv("S3_REGION", "auto"),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			AccessKey: getEnv("S3_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			PublicURL: getEnv("S3_PUBLIC_URL", ""),
		},
	}

	config.Compliance = ComplianceConfig{
		DigestInterval:  getEnvDuration("COMPLIANCE_DIGEST_INTERVAL", 24*time.Hour, &errs),
		RefreshDebounce: getEnvDuration("COMPLIANCE_REFRESH_DEBOUNCE", 300*time.Millisecond, &errs),
	}
	if simulated := getEnv("COMPLIANCE_SIMULATED_DATE", ""); simulated != "" {
		d, err := time.ParseInLocation("2006-01-02", simulated, tz)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid COMPLIANCE_SIMULATED_DATE: %w", err))
		} else {
			// Midday keeps the date stable across small timezone shifts.
			config.Compliance.SimulatedDate = d.Add(12 * time.Hour)
		}
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
	if c.JWT.AccessExpiration <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME must be positive")
	}
	switch c.Storage.Type {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_TYPE is s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.Storage.Type)
	}
	if c.App.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT_PER_MINUTE must be positive")
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

// Clock returns the clock every service reads "now" from: fixed at the
// simulated date when one is configured, else wall time in the app timezone.
func (c *Config) Clock() clock.Clock {
	if !c.Compliance.SimulatedDate.IsZero() {
		return clock.Fixed(c.Compliance.SimulatedDate)
	}
	return clock.New(c.App.Timezone)
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

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
