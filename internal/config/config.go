// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"

	"github.com/M4dhxv/Financial-Analysis/internal/schema"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Analysis  AnalysisConfig
	Detection DetectionConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Metrics   MetricsConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request, including
	// the uploaded file (default: 60s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"60s"`

	// WriteTimeout is the maximum duration for writing the response (default: 3m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"3m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 150s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"150s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. When empty, runs are kept
	// in memory. Supports both DATABASE_URL and DB_URL env vars.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// MemoryRuns is how many runs the in-memory store keeps (default: 100)
	MemoryRuns int `env:"MEMORY_STORE_RUNS" default:"100"`

	// RetentionMaxAge deletes runs older than this. Zero keeps runs forever.
	RetentionMaxAge time.Duration `env:"RUN_RETENTION_MAX_AGE" default:"0s"`

	// RetentionInterval is how often old runs are pruned (default: 1h)
	RetentionInterval time.Duration `env:"RUN_RETENTION_INTERVAL" default:"1h"`
}

// AnalysisConfig holds analysis run settings.
type AnalysisConfig struct {
	// MaxFileSize is the maximum allowed upload size in bytes (default: 50MB)
	MaxFileSize int64 `env:"ANALYSIS_MAX_FILE_SIZE" default:"52428800"`

	// MaxConcurrent is the maximum number of parallel analyses (default: 4)
	MaxConcurrent int `env:"ANALYSIS_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for an analysis slot (default: 30s)
	MaxWaitTime time.Duration `env:"ANALYSIS_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration for a single analysis (default: 2m)
	Timeout time.Duration `env:"ANALYSIS_TIMEOUT" default:"2m"`

	// EngineWorkers bounds parallel variance computation per run (default: 4)
	EngineWorkers int `env:"ANALYSIS_ENGINE_WORKERS" default:"4"`

	// TopMovers is the number of movers kept in run summaries (default: 10)
	TopMovers int `env:"ANALYSIS_TOP_MOVERS" default:"10"`
}

// DetectionConfig holds schema detection thresholds.
type DetectionConfig struct {
	TimeParseRatio         float64   `env:"DETECT_TIME_PARSE_RATIO" default:"0.9"`
	MeasureParseRatio      float64   `env:"DETECT_MEASURE_PARSE_RATIO" default:"0.95"`
	EntityMaxDistinctRatio float64   `env:"DETECT_ENTITY_MAX_DISTINCT_RATIO" default:"0.5"`
	EntityMinDistinctRatio float64   `env:"DETECT_ENTITY_MIN_DISTINCT_RATIO" default:"0"`
	MinDistinctValues      int       `env:"DETECT_MIN_DISTINCT_VALUES" default:"1"`
	FlagValues             []float64 `env:"DETECT_FLAG_VALUES" default:"0,1"`
	Workers                int       `env:"DETECT_WORKERS" default:"4"`

	// ThresholdsFile is an optional YAML file whose values override the
	// settings above.
	ThresholdsFile string `env:"DETECT_THRESHOLDS_FILE"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey protects /api routes with the X-API-Key header (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`

	// Runtime adds Go runtime and process collectors (default: true)
	Runtime bool `env:"METRICS_RUNTIME" default:"true"`
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

// Thresholds returns the detection settings as schema thresholds.
func (c *DetectionConfig) Thresholds() schema.Thresholds {
	return schema.Thresholds{
		TimeParseRatio:         c.TimeParseRatio,
		MeasureParseRatio:      c.MeasureParseRatio,
		EntityMaxDistinctRatio: c.EntityMaxDistinctRatio,
		EntityMinDistinctRatio: c.EntityMinDistinctRatio,
		MinDistinctValues:      c.MinDistinctValues,
		FlagValues:             append([]float64(nil), c.FlagValues...),
		Workers:                c.Workers,
	}
}

func (c *DetectionConfig) setThresholds(t schema.Thresholds) {
	c.TimeParseRatio = t.TimeParseRatio
	c.MeasureParseRatio = t.MeasureParseRatio
	c.EntityMaxDistinctRatio = t.EntityMaxDistinctRatio
	c.EntityMinDistinctRatio = t.EntityMinDistinctRatio
	c.MinDistinctValues = t.MinDistinctValues
	c.FlagValues = t.FlagValues
	c.Workers = t.Workers
}
