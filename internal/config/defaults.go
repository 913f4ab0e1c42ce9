package config

import "time"

const (
	defaultPort             = 8080
	defaultOperationTimeout = 3 * time.Second
	defaultOptimisticDelete = true
)

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "dispatch",
	Pass: "dispatch",
	Name: "dispatch",
}

var defaultKafka = Kafka{
	GroupID: "dispatch-sync",
	Topic:   "dispatch.feed",
}

var defaultStoreRetry = StoreRetry{
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    1 * time.Second,
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultKafka returns the default feed settings (feed disabled: no brokers).
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultStoreRetry returns the default read-retry settings.
func DefaultStoreRetry() StoreRetry {
	return defaultStoreRetry
}
