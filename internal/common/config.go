package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Blob     BlobConfig
	Database DatabaseConfig
	LLM      LLMConfig
	PDFText  PDFTextConfig
	Analysis AnalysisConfig
	Events   EventsConfig
	Log      LogConfig
}

// ServerConfig holds the HTTP and health listener settings
type ServerConfig struct {
	HTTPAddr       string
	GRPCAddr       string
	AccessToken    string
	UploadMaxBytes int64
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	ShutdownGrace  time.Duration
}

// BlobConfig selects where uploaded PDFs are kept
type BlobConfig struct {
	Backend    string
	SQLitePath string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// LLMConfig holds extraction provider configuration
type LLMConfig struct {
	Provider        string
	APIKey          string
	BaseURL         string
	Model           string
	API             string
	Temperature     float32
	MaxOutputTokens int
	Timeout         time.Duration
	GeminiAPIKey    string
	GeminiModel     string
}

// PDFTextConfig controls server side text layer extraction
type PDFTextConfig struct {
	Mode          string
	PdftotextPath string
	MaxChars      int
}

// AnalysisConfig points at optional server wide option presets
type AnalysisConfig struct {
	PresetsFile string
}

// EventsConfig holds the AMQP publisher and worker queue settings
type EventsConfig struct {
	AMQPURL    string
	Exchange   string
	RoutingKey string
	Workers    int
	QueueSize  int
}

// LogConfig selects the slog handler and optional fluent forwarding
type LogConfig struct {
	Format     string
	Level      string
	FluentHost string
	FluentPort int
	FluentTag  string
}

// Blob backends
const (
	BlobBackendSQLite   = "sqlite"
	BlobBackendPostgres = "postgres"
	BlobBackendMemory   = "memory"
)

// LoadConfig reads an optional .env file, then environment variables
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
			GRPCAddr:       getEnv("GRPC_ADDR", ":9090"),
			AccessToken:    getEnv("ACCESS_TOKEN", ""),
			UploadMaxBytes: getEnvAsInt64("UPLOAD_MAX_BYTES", 25<<20),
			ReadTimeout:    getEnvAsDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("HTTP_WRITE_TIMEOUT", 3*time.Minute),
			ShutdownGrace:  getEnvAsDuration("SHUTDOWN_GRACE", 10*time.Second),
		},
		Blob: BlobConfig{
			Backend:    strings.ToLower(getEnv("BLOB_BACKEND", BlobBackendSQLite)),
			SQLitePath: getEnv("BLOB_SQLITE_PATH", "./data/blobs.db"),
		},
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		LLM: LLMConfig{
			Provider:        strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			BaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:           getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
			API:             strings.ToLower(getEnv("OPENAI_API", "responses")),
			Temperature:     getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			MaxOutputTokens: getEnvAsInt("OPENAI_MAX_OUTPUT_TOKENS", 1200),
			Timeout:         getEnvAsDuration("OPENAI_TIMEOUT", 90*time.Second),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		PDFText: PDFTextConfig{
			Mode:          strings.ToLower(getEnv("PDF_TEXT_MODE", "auto")),
			PdftotextPath: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			MaxChars:      getEnvAsInt("PDF_TEXT_MAX_CHARS", 60000),
		},
		Analysis: AnalysisConfig{
			PresetsFile: getEnv("ANALYSIS_PRESETS_FILE", ""),
		},
		Events: EventsConfig{
			AMQPURL:    getEnv("AMQP_URL", ""),
			Exchange:   getEnv("AMQP_EXCHANGE", "skogsprospekt"),
			RoutingKey: getEnv("AMQP_ROUTING_KEY", "analysis.completed"),
			Workers:    getEnvAsInt("EVENT_WORKERS", 2),
			QueueSize:  getEnvAsInt("EVENT_QUEUE_SIZE", 64),
		},
		Log: LogConfig{
			Format:     strings.ToLower(getEnv("LOG_FORMAT", "tint")),
			Level:      getEnv("LOG_LEVEL", "info"),
			FluentHost: getEnv("FLUENT_HOST", ""),
			FluentPort: getEnvAsInt("FLUENT_PORT", 24224),
			FluentTag:  getEnv("FLUENT_TAG", "skogsprospekt"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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

// Validate checks the combinations the server cannot start without
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	switch c.Blob.Backend {
	case BlobBackendSQLite:
		if c.Blob.SQLitePath == "" {
			return NewAppError("CONFIG_ERROR", "BLOB_SQLITE_PATH is required", ErrInvalidInput)
		}
	case BlobBackendPostgres:
		if c.Database.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required for the postgres blob backend", ErrInvalidInput)
		}
	case BlobBackendMemory:
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown BLOB_BACKEND %q", c.Blob.Backend), ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIKey == "" {
			return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
		}
		if c.LLM.API != "responses" && c.LLM.API != "chat" {
			return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown OPENAI_API %q", c.LLM.API), ErrInvalidInput)
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown LLM_PROVIDER %q", c.LLM.Provider), ErrInvalidInput)
	}
	switch c.PDFText.Mode {
	case "auto", "native", "pdftotext", "off":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown PDF_TEXT_MODE %q", c.PDFText.Mode), ErrInvalidInput)
	}
	if c.Events.Workers < 1 || c.Events.QueueSize < 1 {
		return NewAppError("CONFIG_ERROR", "EVENT_WORKERS and EVENT_QUEUE_SIZE must be positive", ErrInvalidInput)
	}
	return nil
}
