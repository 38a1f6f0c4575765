package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the learning service
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// Database
	DatabaseURL   string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBAutoMigrate bool
	DBMaxOpen     int
	DBMaxIdle     int

	// Redis (optional, cache degrades to pass-through when empty)
	RedisURL        string
	CatalogCacheTTL time.Duration

	Casdoor CasdoorConfig
	Mail    MailConfig
	Events  EventsConfig

	// Error reporting
	RollbarToken string
	BuildVersion string
}

// CasdoorConfig holds identity provider settings
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

// MailConfig holds outbound mail settings
type MailConfig struct {
	Provider       string // smtp | sendgrid
	Host           string
	Port           int
	Username       string
	Password       string
	From           string
	FromName       string
	SendGridAPIKey string
	PublicBaseURL  string
}

// EventsConfig selects the pub/sub backend for asynchronous notifications
type EventsConfig struct {
	KafkaBrokers  []string
	ConsumerGroup string
	Topic         string
}

const (
	MailProviderSMTP     = "smtp"
	MailProviderSendGrid = "sendgrid"
)

// LoadConfig reads configuration from .env (if present) and the environment
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", ""),
		DBName:        getEnv("DB_NAME", "learning"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		DBAutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),
		DBMaxOpen:     getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdle:     getEnvInt("DB_MAX_IDLE_CONNS", 5),

		RedisURL:        getEnv("REDIS_URL", ""),
		CatalogCacheTTL: time.Duration(getEnvInt("CATALOG_CACHE_TTL_SECONDS", 300)) * time.Second,

		Casdoor: CasdoorConfig{
			Endpoint:     getEnv("CASDOOR_ENDPOINT", ""),
			ClientID:     getEnv("CASDOOR_CLIENT_ID", ""),
			ClientSecret: getEnv("CASDOOR_CLIENT_SECRET", ""),
			Cert:         getEnv("CASDOOR_CERT", ""),
			Organization: getEnv("CASDOOR_ORGANIZATION", ""),
			Application:  getEnv("CASDOOR_APPLICATION", ""),
		},

		Mail: MailConfig{
			Provider:       strings.ToLower(getEnv("MAIL_PROVIDER", MailProviderSMTP)),
			Host:           getEnv("MAIL_HOST", "smtp.gmail.com"),
			Port:           getEnvInt("MAIL_PORT", 465),
			Username:       getEnv("MAIL_USER", ""),
			Password:       getEnv("MAIL_PASS", ""),
			From:           getEnv("MAIL_FROM", getEnv("MAIL_USER", "")),
			FromName:       getEnv("MAIL_FROM_NAME", "LMS"),
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		},

		Events: EventsConfig{
			KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "")),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "learning-service"),
			Topic:         getEnv("CERTIFICATE_TOPIC", "certificate.issued"),
		},

		RollbarToken: getEnv("ROLLBAR_TOKEN", ""),
		BuildVersion: getEnv("BUILD_VERSION", "dev"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Casdoor.Endpoint == "" {
		log.Println("WARNING: CASDOOR_ENDPOINT is missing. Every request will be treated as anonymous.")
	}

	return cfg, nil
}

// Validate checks settings that would otherwise fail late at runtime
func (c *Config) Validate() error {
	switch c.Mail.Provider {
	case MailProviderSMTP:
	case MailProviderSendGrid:
		if c.Mail.SendGridAPIKey == "" {
			return fmt.Errorf("SENDGRID_API_KEY is required when MAIL_PROVIDER=sendgrid")
		}
	default:
		return fmt.Errorf("unsupported MAIL_PROVIDER %q", c.Mail.Provider)
	}

	if c.DBMaxOpen <= 0 || c.DBMaxIdle < 0 {
		return fmt.Errorf("invalid database pool settings")
	}

	return nil
}

// DSN returns the Postgres connection string
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLogLevel(value string) slog.Level {
	switch strings.ToLower(value) {
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
