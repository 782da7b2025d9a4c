package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variable names. All service configuration lives under the
// AUTHOPS_ prefix; the OTEL_* endpoint variables are read by the
// exporter factories directly.
const (
	EnvJWTSecret       = "AUTHOPS_JWT_SECRET"
	EnvJWTTTLMillis    = "AUTHOPS_JWT_TTL_MS"
	EnvListen          = "AUTHOPS_LISTEN"
	EnvStore           = "AUTHOPS_STORE"
	EnvSQLitePath      = "AUTHOPS_SQLITE_PATH"
	EnvLookupTimeoutMS = "AUTHOPS_LOOKUP_TIMEOUT_MS"
	EnvSeedUsers       = "AUTHOPS_SEED_USERS"
	EnvLogLevel        = "AUTHOPS_LOG_LEVEL"
	EnvMetricsExporter = "AUTHOPS_METRICS_EXPORTER"
	EnvTracingExporter = "AUTHOPS_TRACING_EXPORTER"
	EnvTelemetryListen = "AUTHOPS_TELEMETRY_LISTEN"
)

// Store backend names.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Sentinel errors.
var (
	ErrMissingSecret = errors.New("config: signing secret is required")
	ErrInvalidSecret = errors.New("config: signing secret is not valid base64")
	ErrUnknownStore  = errors.New("config: unknown store backend")
)

// Config is the full startup configuration of the service.
type Config struct {
	// JWTSecret is the base64-encoded symmetric signing key. Supports
	// strict ${VAR} indirection so the raw secret can live in a
	// separate variable or secret-mounted file path.
	JWTSecret string

	// JWTTTL is the token lifetime.
	JWTTTL time.Duration

	// Listen is the API listen address.
	Listen string

	// Store selects the credential store backend: memory or sqlite.
	Store string

	// SQLitePath is the database path when Store is sqlite.
	SQLitePath string

	// LookupTimeout bounds each user lookup during request
	// authentication.
	LookupTimeout time.Duration

	// SeedUsers enables creating the demo accounts at startup.
	SeedUsers bool

	// LogLevel is the minimum structured log level.
	LogLevel string

	// MetricsExporter selects the metrics exporter (prometheus, otlp,
	// stdout, none).
	MetricsExporter string

	// TracingExporter selects the tracing exporter (otlp, jaeger,
	// stdout, none).
	TracingExporter string

	// TelemetryListen is the listen address for the telemetry endpoints
	// (/metrics) when the prometheus exporter is active.
	TelemetryListen string
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	secret, err := ExpandEnvStrict(os.Getenv(EnvJWTSecret))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvJWTSecret, err)
	}

	ttl, err := getMillis(EnvJWTTTLMillis, 3600000)
	if err != nil {
		return nil, err
	}

	lookupTimeout, err := getMillis(EnvLookupTimeoutMS, 2000)
	if err != nil {
		return nil, err
	}

	seed, err := getBool(EnvSeedUsers, true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		JWTSecret:       secret,
		JWTTTL:          ttl,
		Listen:          getString(EnvListen, ":8080"),
		Store:           getString(EnvStore, StoreMemory),
		SQLitePath:      getString(EnvSQLitePath, "var/authops.db"),
		LookupTimeout:   lookupTimeout,
		SeedUsers:       seed,
		LogLevel:        getString(EnvLogLevel, "info"),
		MetricsExporter: getString(EnvMetricsExporter, "prometheus"),
		TracingExporter: getString(EnvTracingExporter, "none"),
		TelemetryListen: getString(EnvTelemetryListen, ":9090"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for startup-fatal problems. Key
// length validation lives in auth.NewTokenService; this only ensures the
// secret is present and decodable so the failure points at configuration
// rather than at the token service.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%w (set %s)", ErrMissingSecret, EnvJWTSecret)
	}
	if _, err := base64.StdEncoding.DecodeString(c.JWTSecret); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("config: token TTL must be positive, got %v", c.JWTTTL)
	}
	if c.Store != StoreMemory && c.Store != StoreSQLite {
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Store)
	}
	return nil
}

func getString(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func getMillis(name string, fallback int64) (time.Duration, error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return time.Duration(fallback) * time.Millisecond, nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", name, err)
	}
	if ms <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %d", name, ms)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func getBool(name string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", name, err)
	}
	return b, nil
}
