package env

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

var (
	// Local store (SQLite is the default device-local backend)
	SqlitePath   string
	StoreBackend string // "sqlite" or "postgres"

	// Postgres (alternative store backend)
	PostgresHost     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresPort     string

	// RabbitMQ (sync scheduling + downstream triggers)
	RabbitMQHost     string
	RabbitMQUser     string
	RabbitMQPassword string
	RabbitMQPort     string

	// ClickHouse (pass audit log, optional)
	ClickHouseHost     string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseDB       string
	ClickHousePort     string

	// Remote API
	BGGApiBase  string
	BGGUsername string // the configured account; empty means no account

	// Preferences file (sync_enabled, sync_only_wifi, sync_only_charging)
	PrefsFilePath string

	// Sentry (optional)
	SentryDSN   string
	Environment string
	Release     string

	// Logging
	LogLevel   string
	StdoutPath string
	StderrPath string

	// Metrics export port (for Prometheus scraping)
	SyncMetricsPort string
)

var envIssues []string

func init() {
	// Load .env file (ignore error - variables may be set via environment)
	godotenv.Load()

	SqlitePath = getEnvWithDefault("SQLITE_PATH", "playsync.db")
	StoreBackend = getEnvWithDefault("STORE_BACKEND", "sqlite")

	// Postgres (defaults: user=postgres, password="", db=playsync)
	PostgresHost = getHostEnv("POSTGRES_HOST")
	PostgresUser = getEnvWithDefault("POSTGRES_USER", "postgres")
	PostgresPassword = getEnv("POSTGRES_PASSWORD")
	PostgresDB = getEnvWithDefault("POSTGRES_DB", "playsync")
	PostgresPort = getEnvWithDefault("POSTGRES_PORT", "5432")

	// RabbitMQ (defaults: user=guest, password=guest)
	RabbitMQHost = getHostEnv("RABBITMQ_HOST")
	RabbitMQUser = getEnvWithDefault("RABBITMQ_USER", "guest")
	RabbitMQPassword = getEnvWithDefault("RABBITMQ_PASSWORD", "guest")
	RabbitMQPort = getEnvWithDefault("RABBITMQ_PORT", "5672")

	// ClickHouse (defaults: user=default, password="", db=default)
	ClickHouseHost = getHostEnv("CLICKHOUSE_HOST")
	ClickHouseUser = getEnvWithDefault("CLICKHOUSE_USER", "default")
	ClickHousePassword = getEnvWithDefault("CLICKHOUSE_PASSWORD", "")
	ClickHouseDB = getEnvWithDefault("CLICKHOUSE_DB", "default")
	ClickHousePort = getEnvWithDefault("CLICKHOUSE_PORT", "9000")

	// Remote API
	BGGApiBase = getEnvWithDefault("BGG_API_BASE", "https://boardgamegeek.com/xmlapi2")
	BGGUsername = getEnv("BGG_USERNAME")

	PrefsFilePath = getEnvWithDefault("PREFS_FILE_PATH", "prefs.json")

	// Sentry (optional)
	SentryDSN = getEnv("SENTRY_DSN")
	Environment = getEnvWithDefault("ENVIRONMENT", "development")
	Release = getEnv("RELEASE")

	// Logging
	LogLevel = getEnv("LOG_LEVEL")
	StdoutPath = getEnv("STDOUT_PATH")
	StderrPath = getEnv("STDERR_PATH")

	SyncMetricsPort = getEnv("SYNC_METRICS_PORT")

	if len(envIssues) > 0 {
		panic("required environment variables are not set: " + strings.Join(envIssues, ", "))
	}
}

func getEnv(key string) string {
	return os.Getenv(key)
}

func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		envIssues = append(envIssues, key)
	}
	return val
}

func getEnvWithDefault(key string, defaultValue string) string {
	if val := getEnv(key); val != "" {
		return val
	}
	return defaultValue
}

func getHostEnv(key string) string {
	return getEnvWithDefault(key, "localhost")
}
