package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DB holds Postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds the Postgres connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Kafka holds the feed consumer settings. Empty brokers disable the
// feed entirely.
type Kafka struct {
	Brokers []string
	GroupID string
	Topic   string
}

// StoreRetry bounds the read-retry decorator.
type StoreRetry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Config stores dispatch service settings.
type Config struct {
	Port             int
	DB               DB
	Kafka            Kafka
	StoreRetry       StoreRetry
	OperationTimeout time.Duration
	// OptimisticDelete drops a deleted order from the local view
	// before the store confirms. Transitions are never optimistic.
	OptimisticDelete bool
}

// Load reads configuration in order: .env (if present), environment,
// flags.
func Load() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:             defaultPort,
		DB:               DefaultDB(),
		Kafka:            DefaultKafka(),
		StoreRetry:       DefaultStoreRetry(),
		OperationTimeout: defaultOperationTimeout,
		OptimisticDelete: defaultOptimisticDelete,
	}
	applyEnv(cfg)

	fs := pflag.NewFlagSet("dispatchd", pflag.ContinueOnError)
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	fs.BoolVar(&cfg.OptimisticDelete, "optimistic-delete", cfg.OptimisticDelete, "apply deletes locally before the store confirms")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.StoreRetry.MaxAttempts < 1 {
		return nil, fmt.Errorf("invalid store retry attempts: %d", cfg.StoreRetry.MaxAttempts)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.DB.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		cfg.DB.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.DB.User = v
	}
	if v := os.Getenv("DB_PASS"); v != "" {
		cfg.DB.Pass = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.DB.Name = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("KAFKA_GROUP_ID"); v != "" {
		cfg.Kafka.GroupID = v
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := os.Getenv("OPTIMISTIC_DELETE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.OptimisticDelete = b
		}
	}
	if v := os.Getenv("OPERATION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.OperationTimeout = d
		}
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
