package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerHost     string
	ServerPort     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis (blob store)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers     []string
	KafkaGroupID     string
	PublicationTopic string

	// Admin API
	AdminAPIKey string

	// Account management service (authorization checks)
	AccountBaseURL      string
	AccountTokenURL     string
	AccountClientID     string
	AccountClientSecret string
	AccountTimeout      time.Duration

	// Static tables
	SearchConfigPath   string
	ResourceBundlePath string

	// Lifecycle
	ExpirySweepInterval time.Duration
}

func Load() *Config {
	return &Config{
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 4*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "opencourt"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "opencourt123"),
		PostgresDB:       getEnv("POSTGRES_DB", "publications"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:     getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "opencourt-platform"),
		PublicationTopic: getEnv("PUBLICATION_TOPIC", "publication-events"),

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),

		AccountBaseURL:      getEnv("ACCOUNT_BASE_URL", "http://localhost:8082"),
		AccountTokenURL:     getEnv("ACCOUNT_TOKEN_URL", ""),
		AccountClientID:     getEnv("ACCOUNT_CLIENT_ID", ""),
		AccountClientSecret: getEnv("ACCOUNT_CLIENT_SECRET", ""),
		AccountTimeout:      getDuration("ACCOUNT_TIMEOUT", 5*time.Second),

		SearchConfigPath:   getEnv("SEARCH_CONFIG_PATH", ""),
		ResourceBundlePath: getEnv("RESOURCE_BUNDLE_PATH", ""),

		ExpirySweepInterval: getDuration("EXPIRY_SWEEP_INTERVAL", time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
