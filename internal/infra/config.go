package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Journal drivers.
const (
	JournalMemory   = "memory"
	JournalSQLite   = "sqlite"
	JournalPostgres = "postgres"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DefaultLocale      string
	TransactionsPath   string
	PolicyFile         string
	JournalDriver      string
	JournalSQLitePath  string
	DatabaseURL        string
	RedisURL           string
	KafkaBrokers       []string
	KafkaTopicResolved string
	GeoIPDBPath        string
	StoragePath        string
	OperatorSecret     string
	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	MaxUploadBytes     int64
	SQLExecTimeout     time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "en"),
		TransactionsPath:   getEnv("TRANSACTIONS_PATH", "primary_campaign_dataset.csv"),
		PolicyFile:         os.Getenv("POLICY_FILE"),
		JournalDriver:      strings.ToLower(getEnv("JOURNAL_DRIVER", JournalSQLite)),
		JournalSQLitePath:  getEnv("JOURNAL_SQLITE_PATH", "resolution_journal.db"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		KafkaBrokers:       getEnvList("KAFKA_BROKERS"),
		KafkaTopicResolved: getEnv("KAFKA_TOPIC_RESOLVED", "campaign.debt.resolved"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		StoragePath:        getEnv("STORAGE_PATH", "uploads"),
		OperatorSecret:     os.Getenv("OPERATOR_SECRET"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		SQLExecTimeout:     time.Second * time.Duration(getEnvInt("SQL_EXEC_TIMEOUT_SECONDS", 5)),
	}

	switch cfg.JournalDriver {
	case JournalMemory, JournalSQLite:
	case JournalPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres journal")
		}
	default:
		return nil, fmt.Errorf("JOURNAL_DRIVER %q is not one of memory, sqlite, postgres", cfg.JournalDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
