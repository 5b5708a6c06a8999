package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if path := cfg.Detection.ThresholdsFile; path != "" {
		th, err := LoadThresholdsFile(path, cfg.Detection.Thresholds())
		if err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
		cfg.Detection.setThresholds(th)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		// Get tags
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		// Apply default if not set
		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		// Set the field value
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		parts := splitList(value)
		switch field.Type().Elem().Kind() {
		case reflect.String:
			field.Set(reflect.ValueOf(parts))
		case reflect.Float64:
			result := make([]float64, 0, len(parts))
			for _, p := range parts {
				f, err := strconv.ParseFloat(p, 64)
				if err != nil {
					return fmt.Errorf("invalid number %q: %w", p, err)
				}
				result = append(result, f)
			}
			field.Set(reflect.ValueOf(result))
		default:
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// splitList splits a comma-separated value, trimming whitespace and
// dropping empty items.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Database validation
	if c.Database.URL != "" {
		if c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
	} else if c.Database.MemoryRuns <= 0 {
		errs = append(errs, "MEMORY_STORE_RUNS must be positive")
	}
	if c.Database.RetentionMaxAge < 0 {
		errs = append(errs, "RUN_RETENTION_MAX_AGE must be non-negative")
	}
	if c.Database.RetentionMaxAge > 0 && c.Database.RetentionInterval <= 0 {
		errs = append(errs, "RUN_RETENTION_INTERVAL must be positive when retention is enabled")
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Analysis validation
	if c.Analysis.MaxFileSize <= 0 {
		errs = append(errs, "ANALYSIS_MAX_FILE_SIZE must be positive")
	}
	if c.Analysis.MaxConcurrent <= 0 {
		errs = append(errs, "ANALYSIS_MAX_CONCURRENT must be positive")
	}
	if c.Analysis.MaxWaitTime <= 0 {
		errs = append(errs, "ANALYSIS_MAX_WAIT_TIME must be positive")
	}
	if c.Analysis.Timeout <= 0 {
		errs = append(errs, "ANALYSIS_TIMEOUT must be positive")
	}
	if c.Analysis.EngineWorkers <= 0 {
		errs = append(errs, "ANALYSIS_ENGINE_WORKERS must be positive")
	}
	if c.Analysis.TopMovers <= 0 {
		errs = append(errs, "ANALYSIS_TOP_MOVERS must be positive")
	}
	if c.Server.RequestTimeout > 0 && c.Server.RequestTimeout < c.Analysis.Timeout {
		errs = append(errs, fmt.Sprintf("SERVER_REQUEST_TIMEOUT (%s) must not be shorter than ANALYSIS_TIMEOUT (%s)",
			c.Server.RequestTimeout, c.Analysis.Timeout))
	}

	// Detection validation
	if err := c.Detection.Thresholds().Validate(); err != nil {
		errs = append(errs, "DETECT_* "+err.Error())
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs and API keys are masked.
func (c *Config) String() string {
	store := "memory"
	if c.Database.URL != "" {
		store = "postgres [MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Database: {Store: %s, MaxConns: %d, MinConns: %d}, ",
		store, c.Database.MaxConns, c.Database.MinConns)
	fmt.Fprintf(&b, "Analysis: {MaxFileSize: %d, MaxConcurrent: %d, Timeout: %s}, ",
		c.Analysis.MaxFileSize, c.Analysis.MaxConcurrent, c.Analysis.Timeout)
	fmt.Fprintf(&b, "Detection: {TimeParseRatio: %g, MeasureParseRatio: %g, EntityMaxDistinctRatio: %g}, ",
		c.Detection.TimeParseRatio, c.Detection.MeasureParseRatio, c.Detection.EntityMaxDistinctRatio)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Security: {RequireAPIKey: %v, APIKeys: %d configured}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
