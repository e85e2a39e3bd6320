package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("BLOB_BACKEND", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("UPLOAD_MAX_BYTES", "")

	cfg := LoadConfig()
	if cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Blob.Backend != BlobBackendSQLite {
		t.Errorf("Blob.Backend = %q", cfg.Blob.Backend)
	}
	if cfg.LLM.Model != "gpt-4.1-mini" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.Server.UploadMaxBytes != 25<<20 {
		t.Errorf("UploadMaxBytes = %d", cfg.Server.UploadMaxBytes)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("BLOB_BACKEND", "Memory")
	t.Setenv("OPENAI_TIMEOUT", "15s")
	t.Setenv("EVENT_WORKERS", "4")
	t.Setenv("PDF_TEXT_MAX_CHARS", "not-a-number")

	cfg := LoadConfig()
	if cfg.Blob.Backend != BlobBackendMemory {
		t.Errorf("Blob.Backend = %q", cfg.Blob.Backend)
	}
	if cfg.LLM.Timeout != 15*time.Second {
		t.Errorf("LLM.Timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Events.Workers != 4 {
		t.Errorf("Events.Workers = %d", cfg.Events.Workers)
	}
	if cfg.PDFText.MaxChars != 60000 {
		t.Errorf("PDFText.MaxChars = %d, want default", cfg.PDFText.MaxChars)
	}
}

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{HTTPAddr: ":8080"},
		Blob:    BlobConfig{Backend: BlobBackendMemory},
		LLM:     LLMConfig{Provider: "openai", APIKey: "sk-test", API: "responses"},
		PDFText: PDFTextConfig{Mode: "auto"},
		Events:  EventsConfig{Workers: 1, QueueSize: 1},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"postgres without dsn", func(c *Config) { c.Blob.Backend = BlobBackendPostgres }, false},
		{"unknown backend", func(c *Config) { c.Blob.Backend = "s3" }, false},
		{"missing openai key", func(c *Config) { c.LLM.APIKey = "" }, false},
		{"unknown openai api", func(c *Config) { c.LLM.API = "assistants" }, false},
		{"gemini with key", func(c *Config) { c.LLM.Provider = "gemini"; c.LLM.GeminiAPIKey = "g" }, true},
		{"bad pdf mode", func(c *Config) { c.PDFText.Mode = "ocr" }, false},
		{"no workers", func(c *Config) { c.Events.Workers = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tt.ok {
				var app *AppError
				if !errors.As(err, &app) || app.Code != "CONFIG_ERROR" {
					t.Fatalf("Validate = %v, want CONFIG_ERROR", err)
				}
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{NotFoundError("File not found"), http.StatusNotFound},
		{fmt.Errorf("get blob: %w", ErrNotFound), http.StatusNotFound},
		{InvalidInputError("Saknar 'key'"), http.StatusBadRequest},
		{NewAppError("FORBIDDEN", "Forbidden", ErrUnauthorized), http.StatusForbidden},
		{NewAppError("EXTRACTION_FAILED", "llm", ErrExtraction), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestPublicMessage(t *testing.T) {
	err := WrapError(InvalidInputError("Saknar 'key'"), "process")
	if got := PublicMessage(err); got != "Saknar 'key'" {
		t.Errorf("PublicMessage = %q", got)
	}
	if got := PublicMessage(errors.New("plain")); got != "plain" {
		t.Errorf("PublicMessage = %q", got)
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("key", "", Required).
		Field("key2", "uploads/../etc/passwd", BlobKey).
		Field("key3", "uploads/3f1c.pdf", Required, BlobKey).
		Field("analyses", []string{"summary", " "}, NoBlank).
		Field("model", "gpt-4.1-mini", MaxLength(64))

	errs := v.Errors()
	if len(errs) != 3 {
		t.Fatalf("got %d errors: %s", len(errs), v.ErrorMessage())
	}
	for i, field := range []string{"key", "key2", "analyses"} {
		if errs[i].Field != field {
			t.Errorf("errs[%d].Field = %q, want %q", i, errs[i].Field, field)
		}
	}
	if err := ValidateAndReturnError(v); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ValidateAndReturnError = %v", err)
	}
}
