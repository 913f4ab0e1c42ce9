package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASS", "DB_NAME",
		"KAFKA_BROKERS", "KAFKA_GROUP_ID", "KAFKA_TOPIC",
		"OPTIMISTIC_DELETE", "OPERATION_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := load(nil)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "127.0.0.1", cfg.DB.Host)
	require.Equal(t, "5432", cfg.DB.Port)
	require.Equal(t, "dispatch", cfg.DB.User)
	require.Equal(t, "dispatch", cfg.DB.Name)

	require.Empty(t, cfg.Kafka.Brokers)
	require.Equal(t, "dispatch-sync", cfg.Kafka.GroupID)
	require.Equal(t, "dispatch.feed", cfg.Kafka.Topic)

	require.Equal(t, 4, cfg.StoreRetry.MaxAttempts)
	require.Equal(t, 150*time.Millisecond, cfg.StoreRetry.BaseDelay)
	require.Equal(t, time.Second, cfg.StoreRetry.MaxDelay)

	require.Equal(t, 3*time.Second, cfg.OperationTimeout)
	require.True(t, cfg.OptimisticDelete)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "15432")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASS", "p")
	t.Setenv("DB_NAME", "dispatch_test")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	t.Setenv("KAFKA_TOPIC", "feed.v2")
	t.Setenv("OPTIMISTIC_DELETE", "false")
	t.Setenv("OPERATION_TIMEOUT", "7s")

	cfg, err := load(nil)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, "postgres://u:p@db:15432/dispatch_test?sslmode=disable", cfg.DB.DSN())
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, "feed.v2", cfg.Kafka.Topic)
	require.False(t, cfg.OptimisticDelete)
	require.Equal(t, 7*time.Second, cfg.OperationTimeout)
}

func TestLoad_FlagsBeatEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("OPTIMISTIC_DELETE", "true")

	cfg, err := load([]string{"--port", "7070", "--optimistic-delete=false"})
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Port)
	require.False(t, cfg.OptimisticDelete)
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)

	_, err := load([]string{"--port", "0"})
	require.Error(t, err)

	_, err = load([]string{"--port", "70000"})
	require.Error(t, err)
}

func TestLoad_BadEnvValuesIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")
	t.Setenv("OPTIMISTIC_DELETE", "maybe")
	t.Setenv("OPERATION_TIMEOUT", "-5s")

	cfg, err := load(nil)
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.True(t, cfg.OptimisticDelete)
	require.Equal(t, 3*time.Second, cfg.OperationTimeout)
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitList("a,b"))
	require.Equal(t, []string{"a"}, splitList(" a , "))
	require.Empty(t, splitList(","))
}
