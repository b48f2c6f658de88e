// Package config loads filingmap settings from environment variables.
// Defaults describe the directory layout of a batch run, so a bare
// checkout works without any configuration.
package config

import (
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Paths     PathsConfig
	Batch     BatchConfig
	Templates TemplatesConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a single resolve request (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxBodySize caps uploaded documents in bytes (default: 32MB)
	MaxBodySize int64 `env:"SERVER_MAX_BODY_SIZE" default:"33554432"`
}

// DatabaseConfig holds the optional results store connection.
// Leaving the URL empty disables persistence.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a results store is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// PathsConfig names the directories of a batch run. Relative paths are
// resolved against Root.
type PathsConfig struct {
	Root string `env:"FILINGMAP_ROOT" default:"."`

	// InputDir holds the downloaded filing archives
	InputDir string `env:"FILINGMAP_INPUT_DIR" default:"Input_data"`

	// XBRLDir and NoXBRLDir receive sorted PDFs
	XBRLDir   string `env:"FILINGMAP_XBRL_DIR" default:"XBRL"`
	NoXBRLDir string `env:"FILINGMAP_NO_XBRL_DIR" default:"No_XBRL"`

	XMLDir        string `env:"FILINGMAP_XML_DIR" default:"XBRL_XML"`
	FactsDir      string `env:"FILINGMAP_FACTS_DIR" default:"XBRL_XML_JSON"`
	FactTablesDir string `env:"FILINGMAP_FACT_TABLES_DIR" default:"XBRL_XML_JSON_TABLE"`
	FormTablesDir string `env:"FILINGMAP_FORM_TABLES_DIR" default:"No_XBRL_JSON"`
	XBRLTablesDir string `env:"FILINGMAP_XBRL_TABLES_DIR" default:"XBRL_JSON_TABLES"`

	// DefaultDocument is used by the CLI when only a table id is given
	DefaultDocument string `env:"FILINGMAP_DEFAULT_DOCUMENT" default:"No_XBRL/6__Form_AOC-4-30102022.pdf"`
}

// Resolve joins a configured path onto Root unless it is already absolute.
func (c *PathsConfig) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// BatchConfig bounds pipeline concurrency.
type BatchConfig struct {
	// DocumentWorkers is how many documents are processed at once (default: 4)
	DocumentWorkers int `env:"BATCH_DOCUMENT_WORKERS" default:"4"`

	// TableWorkers is how many tables of one document resolve at once (default: 4)
	TableWorkers int `env:"BATCH_TABLE_WORKERS" default:"4"`
}

// TemplatesConfig points at additional table definitions.
type TemplatesConfig struct {
	// Dir holds extra *.yaml definitions registered after the built-in tables
	Dir string `env:"TEMPLATES_DIR"`
}

// SecurityConfig holds API authentication settings.
type SecurityConfig struct {
	APIKeys       []string `env:"API_KEYS"`
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
