package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type AppConfig struct {
	IntakePath string
	LLM        LLMConfig
	Storage    StorageConfig
	Events     EventsConfig
	Telegram   TelegramConfig
	Server     ServerConfig
	Log        LogConfig
}

type StorageConfig struct {
	Backend       string
	RecordsDir    string
	SQLitePath    string
	DatabaseURL   string
	RetentionDays int
	HashKey       string
	S3            S3Config
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

type EventsConfig struct {
	RabbitMQURL string
	Exchange    string
}

type TelegramConfig struct {
	Token string
	Debug bool
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	SessionTTL      time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

func LoadAppConfig() *AppConfig {
	return &AppConfig{
		IntakePath: getEnv("INTAKE_CONFIG", ""),
		LLM:        *LoadLLMConfig(),
		Storage: StorageConfig{
			Backend:       getEnv("STORAGE_BACKEND", BackendFile),
			RecordsDir:    getEnv("RECORDS_DIR", "candidate_data"),
			SQLitePath:    getEnv("SQLITE_PATH", "candidate_data/records.db"),
			DatabaseURL:   getEnv("DATABASE_URL", ""),
			RetentionDays: getEnvAsInt("RECORD_RETENTION_DAYS", 90),
			HashKey:       getEnv("RECORD_HASH_KEY", ""),
			S3: S3Config{
				Bucket:    getEnv("S3_BUCKET", ""),
				Region:    getEnv("S3_REGION", "auto"),
				Endpoint:  getEnv("S3_ENDPOINT", ""),
				AccessKey: getEnv("S3_ACCESS_KEY", ""),
				SecretKey: getEnv("S3_SECRET_KEY", ""),
				Prefix:    getEnv("S3_PREFIX", "records/"),
			},
		},
		Events: EventsConfig{
			RabbitMQURL: getEnv("RABBITMQ_URL", ""),
			Exchange:    getEnv("RABBITMQ_EXCHANGE", "intake_events"),
		},
		Telegram: TelegramConfig{
			Token: getEnv("TELEGRAM_BOT_TOKEN", ""),
			Debug: getEnvAsBool("TELEGRAM_DEBUG", false),
		},
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			SessionTTL:      getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Validate checks the values that cannot be defaulted.
func (c *AppConfig) Validate() error {
	if err := c.LLM.ValidateConfig(); err != nil {
		return err
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.RecordsDir == "" {
			return fmt.Errorf("RECORDS_DIR is required for the file backend")
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	if c.Storage.RetentionDays <= 0 {
		return fmt.Errorf("RECORD_RETENTION_DAYS must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}

	return nil
}

// Retention returns how long records are kept.
func (c *StorageConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
