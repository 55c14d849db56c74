package config

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "LOG_LEVEL", "PORT", "WORKER_COUNT", "QUEUE_SIZE", "REQUEST_TIMEOUT",
		"SHUTDOWN_TIMEOUT", "RATE_LIMIT_RPM", "RATE_LIMIT_BURST", "HISTORY_ID_GENERATOR", "SNOWFLAKE_NODE_ID",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.WorkerCount)
	assert.Equal(t, 1024, cfg.QueueSize)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 600, cfg.RateLimitRPM)
	assert.Equal(t, 100, cfg.RateLimitBurst)
	assert.Equal(t, "sequence", cfg.HistoryIDGenerator)
	assert.Equal(t, int64(1), cfg.SnowflakeNodeID)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("WORKER_COUNT", "3")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("RATE_LIMIT_RPM", "0")
	t.Setenv("HISTORY_ID_GENERATOR", "snowflake")
	t.Setenv("SNOWFLAKE_NODE_ID", "12")

	cfg := LoadConfig()

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3, cfg.WorkerCount)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0, cfg.RateLimitRPM)
	assert.Equal(t, "snowflake", cfg.HistoryIDGenerator)
	assert.Equal(t, int64(12), cfg.SnowflakeNodeID)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("QUEUE_SIZE", "lots")
	t.Setenv("WORKER_COUNT", "-2")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg := LoadConfig()

	assert.Equal(t, 1024, cfg.QueueSize)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.WorkerCount)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}
