package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"estadocuenta/internal/logger"
)

// Backends for reading and writing facturas.
const (
	BackendHTTP   = "http"
	BackendSheets = "sheets"
)

// Default Apps Script deployments backing the facturas spreadsheet.
const (
	DefaultReadURL  = "https://script.google.com/macros/s/AKfycbyYz7Cqx-QNaYataaXpoBeZ3sLv8N1IDnAts14hLcxDOI1-zLBzjmagDS0BarLvgmClfQ/exec"
	DefaultWriteURL = "https://script.google.com/macros/s/AKfycbybaSy-ZVcNJjbmQtUhAQlj9OOCysx4AV2rvsAPzuAxHFHZFkwd5z0gxh7JOiBNDgo3KQ/exec"
)

type Config struct {
	// Backend selects where facturas come from: "http" (Apps Script JSON
	// endpoints) or "sheets" (Google Sheets API)
	Backend string

	// Apps Script endpoints
	ReadURL  string
	WriteURL string

	// Google Sheets Configuration
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// HTTP client timeout for upstream calls
	HTTPTimeout time.Duration

	// Proxy server
	ListenAddr      string
	RefreshSchedule string

	// Time zone used to compute "today" for aging
	Timezone string

	// Bulk import
	ImportWorkers int

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		Backend:              strings.ToLower(getEnv("FACTURAS_BACKEND", BackendHTTP)),
		ReadURL:              getEnv("FACTURAS_READ_URL", DefaultReadURL),
		WriteURL:             getEnv("FACTURAS_WRITE_URL", DefaultWriteURL),
		GoogleSheetURL:       getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet: getEnv("GOOGLE_SHEET_WORKSHEET", "Facturas"),
		HTTPTimeout:          time.Duration(getEnvInt("HTTP_TIMEOUT", 30)) * time.Second,
		ListenAddr:           getEnv("LISTEN_ADDR", ":3000"),
		RefreshSchedule:      getEnv("REFRESH_SCHEDULE", ""),
		Timezone:             getEnv("TIMEZONE", "America/Argentina/Buenos_Aires"),
		ImportWorkers:        getEnvInt("IMPORT_WORKERS", 4),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:            getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendHTTP:
		if c.ReadURL == "" {
			return fmt.Errorf("FACTURAS_READ_URL is required")
		}
		if c.WriteURL == "" {
			return fmt.Errorf("FACTURAS_WRITE_URL is required")
		}
	case BackendSheets:
		if c.GoogleSheetURL == "" {
			return fmt.Errorf("GOOGLE_SHEET_URL is required when FACTURAS_BACKEND=sheets")
		}
	default:
		return fmt.Errorf("FACTURAS_BACKEND must be %q or %q, got %q", BackendHTTP, BackendSheets, c.Backend)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.ImportWorkers <= 0 {
		return fmt.Errorf("IMPORT_WORKERS must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone, or UTC if it cannot be loaded
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Today returns the current calendar date in the configured time zone
func (c *Config) Today() time.Time {
	return time.Now().In(c.Location())
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		// Let validate reject it
		return -1
	}
	return n
}
