package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultSecretKey = "change-me-twittor-secret"

type Config struct {
	Port          string
	Env           string
	PostgresUrl   string
	MongoURI      string
	MongoDatabase string
	MetricsPort   string
	RedisURL      string

	SecretKey     string
	TokenTTL      time.Duration
	SessionTTL    time.Duration
	RememberTTL   time.Duration
	TweetsPerPage int
	CSRFEnabled   bool
	BaseURL       string

	Mail MailConfig

	LogLevel string
	LogFile  string
}

// MailConfig selects and configures the outgoing email driver.
type MailConfig struct {
	Driver               string
	Sender               string
	AWSRegion            string
	SubjectUserActivate  string
	SubjectResetPassword string
}

// Load reads the configuration from the environment, after loading an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PostgresUrl:   getEnv("POSTGRES_URL", ""),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "twittor"),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
		RedisURL:      getEnv("REDIS_URL", ""),

		SecretKey:     getEnv("SECRET_KEY", defaultSecretKey),
		TokenTTL:      getEnvDuration("TOKEN_TTL", time.Hour),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
		RememberTTL:   getEnvDuration("REMEMBER_TTL", 30*24*time.Hour),
		TweetsPerPage: getEnvInt("TWEETS_PER_PAGE", 10),
		CSRFEnabled:   getEnvBool("CSRF_ENABLED", true),
		BaseURL:       getEnv("BASE_URL", "http://localhost:8080"),

		Mail: MailConfig{
			Driver:               getEnv("MAIL_DRIVER", "log"),
			Sender:               getEnv("MAIL_SENDER", "noreply@twittor.local"),
			AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
			SubjectUserActivate:  getEnv("MAIL_SUBJECT_USER_ACTIVATE", "[twittor] Please activate your account"),
			SubjectResetPassword: getEnv("MAIL_SUBJECT_RESET_PASSWORD", "[twittor] Reset your password"),
		},

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", "server.log"),
	}
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate checks required values and the production secret policy.
func (c *Config) Validate() error {
	if c.PostgresUrl == "" {
		return errors.New("POSTGRES_URL is required")
	}
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	if c.TweetsPerPage < 1 {
		return fmt.Errorf("TWEETS_PER_PAGE must be positive, got %d", c.TweetsPerPage)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	switch c.Mail.Driver {
	case "log", "ses":
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.Mail.Driver)
	}

	if c.IsProduction() {
		if c.SecretKey == defaultSecretKey {
			return errors.New("SECRET_KEY must be changed from the default value in production")
		}
		if len(c.SecretKey) < 32 {
			return errors.New("SECRET_KEY must be at least 32 characters in production")
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
