package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tair/stock-keeper/pkg/database"
)

// Config is the complete service configuration.
// Values come from defaults, then an optional YAML file, then the environment.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  database.Config `yaml:"database"`
	Inventory InventoryConfig `yaml:"inventory"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
}

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
}

// IsDevelopment reports whether human-readable logging should be used.
func (s ServiceConfig) IsDevelopment() bool {
	return s.Environment == "development"
}

type HTTPConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// InventoryConfig tunes the operation pipeline.
type InventoryConfig struct {
	// MutationDelay is the artificial pause after every committed mutation.
	MutationDelay time.Duration `yaml:"mutation_delay"`
}

type TracingConfig struct {
	Enabled        bool   `yaml:"enabled"`
	JaegerEndpoint string `yaml:"jaeger_endpoint"`
}

// RedisConfig enables the distributed key locker when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

// KafkaConfig enables change-event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "inventory-service",
			Environment: "development",
			LogLevel:    "info",
		},
		HTTP: HTTPConfig{
			Port:            "5000",
			ShutdownTimeout: 15 * time.Second,
		},
		Database: database.Config{
			Driver:  database.DriverSQLite,
			Path:    "inventory.db",
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			DBName:  "inventorydb",
			SSLMode: "disable",
		},
		Inventory: InventoryConfig{
			MutationDelay: 10 * time.Second,
		},
		Redis: RedisConfig{
			LockTTL: 30 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic:   "inventory-changes",
			GroupID: "inventory-service",
		},
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case database.DriverSQLite, database.DriverPostgres, database.DriverMySQL:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q", c.Database.Driver)
	}
	if c.Inventory.MutationDelay < 0 {
		return fmt.Errorf("mutation delay cannot be negative")
	}
	if c.HTTP.Port == "" {
		return fmt.Errorf("http port is required")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Service.Name = getEnv("OTEL_SERVICE_NAME", cfg.Service.Name)
	cfg.Service.Environment = getEnv("ENVIRONMENT", cfg.Service.Environment)
	cfg.Service.LogLevel = getEnv("LOG_LEVEL", cfg.Service.LogLevel)

	cfg.HTTP.Port = getEnv("HTTP_PORT", cfg.HTTP.Port)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Path = getEnv("DB_PATH", cfg.Database.Path)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Tracing.JaegerEndpoint = getEnv("JAEGER_ENDPOINT", cfg.Tracing.JaegerEndpoint)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)

	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", cfg.Kafka.Topic)
	cfg.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", cfg.Kafka.GroupID)
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}

	var err error
	if cfg.Tracing.Enabled, err = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled); err != nil {
		return err
	}
	if cfg.Redis.DB, err = getEnvInt("REDIS_DB", cfg.Redis.DB); err != nil {
		return err
	}
	if cfg.Inventory.MutationDelay, err = getEnvDuration("MUTATION_DELAY", cfg.Inventory.MutationDelay); err != nil {
		return err
	}
	if cfg.Redis.LockTTL, err = getEnvDuration("LOCK_TTL", cfg.Redis.LockTTL); err != nil {
		return err
	}
	if cfg.HTTP.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
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
