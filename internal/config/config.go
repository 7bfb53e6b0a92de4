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
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_sslmode"`

	// Document annex (Redis)
	RedisAddr        string        `yaml:"redis_addr"`
	RedisPassword    string        `yaml:"redis_password"`
	RedisDB          int           `yaml:"redis_db"`
	RedisDialTimeout time.Duration `yaml:"redis_dial_timeout"`

	// Sessions
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SessionCookie string        `yaml:"session_cookie"`
	CookieSecure  bool          `yaml:"cookie_secure"`

	// Admin
	AdminEmails string `yaml:"admin_emails"`

	// Server
	Port             string `yaml:"port"`
	CORSOrigins      string `yaml:"cors_origins"`
	RateLimitMax     int    `yaml:"rate_limit_max"`
	AuthRateLimitMax int    `yaml:"auth_rate_limit_max"`

	// Observability
	SentryDSN       string        `yaml:"sentry_dsn"`
	AppEnv          string        `yaml:"app_env"`
	LogRetention    time.Duration `yaml:"log_retention"`
	CleanupSchedule string        `yaml:"cleanup_schedule"`
	MetricsEnabled  bool          `yaml:"metrics_enabled"`

	// Optional rotating log file, in addition to stdout
	LogFile       string `yaml:"log_file"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`
}

// Defaults returns the built-in configuration used before any file or
// environment overrides are applied.
func Defaults() *Config {
	return &Config{
		DBHost:    "localhost",
		DBPort:    "5432",
		DBUser:    "postgres",
		DBName:    "game_marketplace",
		DBSSLMode: "disable",

		RedisAddr:        "localhost:6379",
		RedisDialTimeout: 5 * time.Second,

		SessionTTL:    168 * time.Hour,
		SessionCookie: "session",

		Port:             "8080",
		CORSOrigins:      "*",
		RateLimitMax:     60,
		AuthRateLimitMax: 10,

		AppEnv:          "development",
		LogRetention:    30 * 24 * time.Hour,
		CleanupSchedule: "@daily",
		MetricsEnabled:  true,

		LogMaxSizeMB:  100,
		LogMaxBackups: 5,
		LogMaxAgeDays: 28,
	}
}

// Load reads defaults, then the YAML file named by CONFIG_PATH (if any),
// then environment variables. A .env file (or the one named by ENV_FILE) is
// merged into the environment first without overriding variables already set.
func Load() (*Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.DBSSLMode = getEnv("DB_SSLMODE", c.DBSSLMode)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisDialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", c.RedisDialTimeout)

	c.SessionSecret = getEnv("SESSION_SECRET", c.SessionSecret)
	c.SessionTTL = getEnvDuration("SESSION_TTL", c.SessionTTL)
	c.SessionCookie = getEnv("SESSION_COOKIE", c.SessionCookie)
	c.CookieSecure = getEnvBool("COOKIE_SECURE", c.CookieSecure)

	c.AdminEmails = getEnv("ADMIN_EMAILS", c.AdminEmails)

	c.Port = getEnv("PORT", c.Port)
	c.CORSOrigins = getEnv("CORS_ORIGINS", c.CORSOrigins)
	c.RateLimitMax = getEnvInt("RATE_LIMIT_MAX", c.RateLimitMax)
	c.AuthRateLimitMax = getEnvInt("AUTH_RATE_LIMIT_MAX", c.AuthRateLimitMax)

	c.SentryDSN = getEnv("SENTRY_DSN", c.SentryDSN)
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.LogRetention = getEnvDuration("LOG_RETENTION", c.LogRetention)
	c.CleanupSchedule = getEnv("CLEANUP_SCHEDULE", c.CleanupSchedule)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)

	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.LogMaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", c.LogMaxSizeMB)
	c.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", c.LogMaxBackups)
	c.LogMaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", c.LogMaxAgeDays)
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// AdminEmailList returns the lowercased bootstrap admin emails.
func (c *Config) AdminEmailList() []string {
	if c.AdminEmails == "" {
		return nil
	}
	parts := strings.Split(c.AdminEmails, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
