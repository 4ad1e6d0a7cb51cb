// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"datapack/internal/standard"
)

// Config holds the settings shared by the CLI and the HTTP server.
type Config struct {
	StandardVersion string // rule document version (default standard.DefaultVersion)
	StandardsDir    string // directory of v*.yaml rule documents; empty uses the embedded set
	TypeSampleSize  int    // schema-matching sample size; 0 keeps the rule document's value
	Concurrency     int    // parallel validations in batch commands (default 4)
	LogLevel        string // log level: debug, info, warn, error (default "info")
	Env             string // environment: "development" (default) or "production"
	ListenAddr      string // HTTP listen address (default ":8080")
	MaxBodyBytes    int64  // request body limit for the HTTP API (default 32 MiB)

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// APIKeyHashes are hex SHA-256 hashes of the keys accepted by the HTTP
	// API. Empty leaves the API open.
	APIKeyHashes []string

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	return ParseLevel(c.LogLevel)
}

// ParseLevel maps a level name to an slog.Level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// StandardLoader returns the rule document loader selected by StandardsDir.
func (c *Config) StandardLoader() *standard.Loader {
	if c.StandardsDir == "" {
		return standard.Default()
	}
	return standard.NewDirLoader(c.StandardsDir)
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		StandardVersion: strings.TrimSpace(os.Getenv("STANDARD_VERSION")),
		StandardsDir:    os.Getenv("STANDARDS_DIR"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		Env:             os.Getenv("ENV"),
		ListenAddr:      os.Getenv("LISTEN_ADDR"),
	}

	if v := os.Getenv("TYPE_SAMPLE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("ignoring TYPE_SAMPLE_SIZE=%q: must be a non-negative integer", v))
		} else {
			cfg.TypeSampleSize = n
		}
	}
	if v := os.Getenv("VALIDATE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Concurrency = n
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("ignoring VALIDATE_CONCURRENCY=%q: must be a positive integer", v))
		}
	}
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}

	if v := os.Getenv("API_KEY_HASHES"); v != "" {
		for _, h := range strings.Split(v, ",") {
			h = strings.ToLower(strings.TrimSpace(h))
			if h == "" {
				continue
			}
			if !isSHA256Hex(h) {
				return nil, fmt.Errorf("API_KEY_HASHES: %q is not a hex SHA-256 hash", h)
			}
			cfg.APIKeyHashes = append(cfg.APIKeyHashes, h)
		}
	}

	// Defaults
	if cfg.StandardVersion == "" {
		cfg.StandardVersion = standard.DefaultVersion
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 4
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = 32 << 20
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.StandardsDir != "" {
		if info, err := os.Stat(cfg.StandardsDir); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("STANDARDS_DIR %q is not a readable directory", cfg.StandardsDir)
		}
	}

	// Production mode: permissive defaults are fatal errors.
	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
		if len(cfg.APIKeyHashes) == 0 {
			cfg.Warnings = append(cfg.Warnings, "API_KEY_HASHES not set, the validation API is open")
		}
	} else if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
		cfg.Warnings = append(cfg.Warnings, "CORS_ALLOWED_ORIGINS not set, allowing every origin")
	}

	return cfg, nil
}

func isSHA256Hex(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = stripQuotes(strings.TrimSpace(value))
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
