package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load reads every tagged field of Config from the environment, falls back
// to the field's default tag and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := fill(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// fill walks the config sections. A field is read from its env tag, then
// its envAlt tag, then its default.
func fill(section reflect.Value) error {
	t := section.Type()
	for i := 0; i < t.NumField(); i++ {
		field, val := t.Field(i), section.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := fill(val); err != nil {
				return err
			}
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}
		raw := lookup(name, field.Tag.Get("envAlt"), field.Tag.Get("default"))
		if raw == "" {
			continue
		}
		if err := assign(val, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, raw, err)
		}
	}
	return nil
}

func lookup(name, alt, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	if alt != "" {
		if v := os.Getenv(alt); v != "" {
			return v
		}
	}
	return def
}

// assign covers the field types Config uses: strings, ints, durations,
// bools and comma-separated string lists.
func assign(v reflect.Value, raw string) error {
	switch {
	case v.Type() == durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		v.SetInt(int64(d))
	case v.Kind() == reflect.String:
		v.SetString(raw)
	case v.Kind() == reflect.Int, v.Kind() == reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		v.SetInt(n)
	case v.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.String:
		v.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type %s", v.Type())
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every invalid setting at once, named by its env key.
func (c *Config) Validate() error {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if c.Database.Enabled() {
		if c.Database.MaxConns <= 0 {
			fail("DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
			fail("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d) >= 0", c.Database.MaxConns, c.Database.MinConns)
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		fail("SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		fail("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.MaxBodySize <= 0 {
		fail("SERVER_MAX_BODY_SIZE must be positive")
	}

	if c.Batch.DocumentWorkers <= 0 {
		fail("BATCH_DOCUMENT_WORKERS must be positive")
	}
	if c.Batch.TableWorkers <= 0 {
		fail("BATCH_TABLE_WORKERS must be positive")
	}

	for _, dir := range []struct{ key, value string }{
		{"FILINGMAP_INPUT_DIR", c.Paths.InputDir},
		{"FILINGMAP_XBRL_DIR", c.Paths.XBRLDir},
		{"FILINGMAP_NO_XBRL_DIR", c.Paths.NoXBRLDir},
		{"FILINGMAP_XML_DIR", c.Paths.XMLDir},
		{"FILINGMAP_FACTS_DIR", c.Paths.FactsDir},
		{"FILINGMAP_FACT_TABLES_DIR", c.Paths.FactTablesDir},
		{"FILINGMAP_FORM_TABLES_DIR", c.Paths.FormTablesDir},
		{"FILINGMAP_XBRL_TABLES_DIR", c.Paths.XBRLTablesDir},
	} {
		if strings.TrimSpace(dir.value) == "" {
			fail("%s must not be empty", dir.key)
		}
	}

	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		fail("REQUIRE_API_KEY is set but API_KEYS is empty")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		fail("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		fail("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a safe string representation of the config for logging.
// The database URL and API keys are masked.
func (c *Config) String() string {
	db := "disabled"
	if c.Database.Enabled() {
		db = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q, MaxBodySize: %d}, ", c.Server.Addr(), c.Server.MaxBodySize)
	fmt.Fprintf(&b, "Database: {URL: %s, MaxConns: %d}, ", db, c.Database.MaxConns)
	fmt.Fprintf(&b, "Paths: {Root: %q, Input: %q}, ", c.Paths.Root, c.Paths.InputDir)
	fmt.Fprintf(&b, "Batch: {DocumentWorkers: %d, TableWorkers: %d}, ", c.Batch.DocumentWorkers, c.Batch.TableWorkers)
	fmt.Fprintf(&b, "Templates: {Dir: %q}, ", c.Templates.Dir)
	fmt.Fprintf(&b, "Security: {RequireAPIKey: %v, APIKeys: %d}, ", c.Security.RequireAPIKey, len(c.Security.APIKeys))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
