package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(LevelForEnvironment(GetEnvWithDefault("APP_ENV", "development")))
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultJWTSecret = "dev-only-secret-change-me-please-32chars"
)

// Supported EVENT_BUS values
const (
	EventBusNone     = "none"
	EventBusKafka    = "kafka"
	EventBusRabbitMQ = "rabbitmq"
)

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Environment string `json:"environment"`
	Port        int    `json:"port"`
	Host        string `json:"host"`

	// Database configuration
	DBDriver   string `json:"db_driver"`
	DBHost     string `json:"db_host"`
	DBPort     string `json:"db_port"`
	DBName     string `json:"db_name"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBSSLMode  string `json:"db_sslmode"`
	DBPath     string `json:"db_path"`
	SeedData   bool   `json:"seed_data"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret      string        `json:"jwt_secret"`
	JWTExpiresIn   time.Duration `json:"jwt_expires_in"`
	AllowedOrigins []string      `json:"allowed_origins"`

	// Catalog cache
	RedisAddr     string        `json:"redis_addr"`
	RedisPassword string        `json:"redis_password"`
	RedisDB       int           `json:"redis_db"`
	CacheTTL      time.Duration `json:"cache_ttl"`

	// Order events
	EventBus         string   `json:"event_bus"`
	KafkaBrokers     []string `json:"kafka_brokers"`
	KafkaTopic       string   `json:"kafka_topic"`
	RabbitMQURL      string   `json:"rabbitmq_url"`
	RabbitMQExchange string   `json:"rabbitmq_exchange"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, DBDriver: %s, DBHost: %s, DBPort: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, LogLevel: %s, JWTSecret: [REDACTED], JWTExpiresIn: %s, RedisAddr: %s, RedisPassword: [REDACTED], EventBus: %s, KafkaBrokers: %v, RabbitMQURL: %s}",
		c.Environment, c.Port, c.Host, c.DBDriver, c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPath, c.LogLevel,
		c.JWTExpiresIn, c.RedisAddr, c.EventBus, c.KafkaBrokers, maskURL(c.RabbitMQURL))
}

// IsDevelopment reports whether detailed errors may be shown to clients
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// Returns an error if any variable is malformed or a production secret is missing
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	jwtExpiresIn, err := time.ParseDuration(GetEnvWithDefault("JWT_EXPIRES_IN", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}

	cacheTTL, err := time.ParseDuration(GetEnvWithDefault("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	config := &Config{
		Environment:      GetEnvWithDefault("APP_ENV", EnvDevelopment),
		Port:             port,
		Host:             GetEnvWithDefault("APP_HOST", "localhost"),
		DBDriver:         strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite")),
		DBHost:           GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:           GetEnvWithDefault("DB_PORT", "5432"),
		DBName:           GetEnvWithDefault("DB_NAME", "food_ordering"),
		DBUser:           GetEnvWithDefault("DB_USER", "postgres"),
		DBPassword:       GetEnvWithDefault("DB_PASSWORD", "postgres"),
		DBSSLMode:        GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:           GetEnvWithDefault("DB_PATH", "food_ordering.sqlite"),
		SeedData:         GetEnvAsType("SEED_DATA", false),
		LogLevel:         GetEnvWithDefault("LOG_LEVEL", ""),
		JWTSecret:        GetEnvWithDefault("JWT_SECRET", ""),
		JWTExpiresIn:     jwtExpiresIn,
		AllowedOrigins:   splitAndTrim(GetEnvWithDefault("CORS_ALLOWED_ORIGINS", "*")),
		RedisAddr:        GetEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword:    GetEnvWithDefault("REDIS_PASSWORD", ""),
		RedisDB:          GetEnvAsType("REDIS_DB", 0),
		CacheTTL:         cacheTTL,
		EventBus:         strings.ToLower(GetEnvWithDefault("EVENT_BUS", "none")),
		KafkaBrokers:     splitAndTrim(GetEnvWithDefault("KAFKA_BROKERS", "")),
		KafkaTopic:       GetEnvWithDefault("KAFKA_TOPIC", "orders"),
		RabbitMQURL:      GetEnvWithDefault("RABBITMQ_URL", ""),
		RabbitMQExchange: GetEnvWithDefault("RABBITMQ_EXCHANGE", "orders_topic"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "postgresql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (supported: postgres, sqlite)", c.DBDriver)
	}

	if c.JWTSecret == "" {
		if c.Environment == EnvProduction {
			return errors.New("JWT_SECRET environment variable is required in production")
		}
		log.Warn("JWT_SECRET not set, using the development secret")
		c.JWTSecret = defaultJWTSecret
	}
	if c.Environment == EnvProduction && len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters in production")
	}

	switch c.EventBus {
	case EventBusNone, "":
		c.EventBus = EventBusNone
	case EventBusKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when EVENT_BUS=kafka")
		}
	case EventBusRabbitMQ:
		if c.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is required when EVENT_BUS=rabbitmq")
		}
	default:
		return fmt.Errorf("unsupported EVENT_BUS %q (supported: none, kafka, rabbitmq)", c.EventBus)
	}
	return nil
}

// LevelForEnvironment maps APP_ENV to the default log level
func LevelForEnvironment(environment string) logrus.Level {
	switch environment {
	case EnvDevelopment:
		return logrus.DebugLevel
	case EnvProduction:
		return logrus.ErrorLevel
	default:
		// Default to info level for other environments
		return logrus.InfoLevel
	}
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		if pt := strings.TrimSpace(p); pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
