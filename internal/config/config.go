package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the month-close report archive.
// Archiving is disabled when Endpoint is empty.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an object store has been configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// AuthConfig holds token signing and login settings.
type AuthConfig struct {
	JWTSecret       string
	TokenTTL        time.Duration
	AdminUsername   string
	AdminPassword   string
	AdminName       string
	LoginRatePerSec float64
	LoginBurst      int64
}

// SchedulerConfig controls background jobs.
type SchedulerConfig struct {
	// AutoMonthClose closes the previous month on the first day of each month.
	AutoMonthClose bool
	// MonthCloseAt is the HH:MM time of day the automatic close runs.
	MonthCloseAt string
	// AutoCloseUser is recorded as closed_by for automatic closes.
	AutoCloseUser string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	TimeZone  string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Auth      AuthConfig
	Scheduler SchedulerConfig
}

// Location resolves TimeZone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8000"),
		Port:     getEnv("PORT", "8000"),
		TimeZone: getEnv("APP_TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "medstock-reports"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", ""),
			TokenTTL:        getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
			AdminUsername:   getEnv("ADMIN_USERNAME", ""),
			AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
			AdminName:       getEnv("ADMIN_NAME", "Administrator"),
			LoginRatePerSec: getEnvFloat("LOGIN_RATE_PER_SEC", 0.2),
			LoginBurst:      int64(getEnvInt("LOGIN_BURST", 5)),
		},
		Scheduler: SchedulerConfig{
			AutoMonthClose: getEnvBool("AUTO_MONTH_CLOSE", false),
			MonthCloseAt:   getEnv("MONTH_CLOSE_AT", "00:30"),
			AutoCloseUser:  getEnv("AUTO_MONTH_CLOSE_USER", "system"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
