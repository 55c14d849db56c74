package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Config ortam yapılandırmalarını tutar
type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	WorkerCount     int
	QueueSize       int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	RateLimitRPM   int
	RateLimitBurst int

	HistoryIDGenerator string
	SnowflakeNodeID    int64
}

// yardımcı fonksiyon: ortam değişkeni yoksa default değeri döner
func getEnv(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvInt(key string, defaultVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		log.Warn().Str("key", key).Str("value", raw).Int("default", defaultVal).Msg("Invalid integer config, using default")
		return defaultVal
	}
	return val
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Dur("default", defaultVal).Msg("Invalid duration config, using default")
		return defaultVal
	}
	return val
}

// LoadConfig tüm yapılandırmayı yükler
func LoadConfig() *Config {
	workers := getEnvInt("WORKER_COUNT", 0)
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8080"),

		WorkerCount:     workers,
		QueueSize:       getEnvInt("QUEUE_SIZE", 1024),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 600),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 100),

		HistoryIDGenerator: getEnv("HISTORY_ID_GENERATOR", "sequence"),
		SnowflakeNodeID:    int64(getEnvInt("SNOWFLAKE_NODE_ID", 1)),
	}
}
