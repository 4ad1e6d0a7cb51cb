package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datapack/internal/standard"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STANDARD_VERSION", "STANDARDS_DIR", "TYPE_SAMPLE_SIZE", "VALIDATE_CONCURRENCY",
		"LOG_LEVEL", "ENV", "LISTEN_ADDR", "MAX_BODY_BYTES",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS", "API_KEY_HASHES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, standard.DefaultVersion, cfg.StandardVersion)
	assert.Empty(t, cfg.StandardsDir)
	assert.Zero(t, cfg.TypeSampleSize)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, int64(32<<20), cfg.MaxBodyBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.InDelta(t, 100.0, cfg.RateLimitRPS, 0)
	assert.Equal(t, 200, cfg.RateLimitBurst)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Len(t, cfg.Warnings, 1)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv_AllVarsSet(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("STANDARD_VERSION", "v1.0.0")
	t.Setenv("STANDARDS_DIR", dir)
	t.Setenv("TYPE_SAMPLE_SIZE", "250")
	t.Setenv("VALIDATE_CONCURRENCY", "8")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("MAX_BODY_BYTES", "1024")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "v1.0.0", cfg.StandardVersion)
	assert.Equal(t, dir, cfg.StandardsDir)
	assert.Equal(t, 250, cfg.TypeSampleSize)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, int64(1024), cfg.MaxBodyBytes)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 1e-9)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromEnv_InvalidNumbersWarn(t *testing.T) {
	clearEnv(t)
	t.Setenv("TYPE_SAMPLE_SIZE", "lots")
	t.Setenv("VALIDATE_CONCURRENCY", "0")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Zero(t, cfg.TypeSampleSize)
	assert.Equal(t, 4, cfg.Concurrency)
	require.Len(t, cfg.Warnings, 2)
	assert.Contains(t, cfg.Warnings[0], "TYPE_SAMPLE_SIZE")
	assert.Contains(t, cfg.Warnings[1], "VALIDATE_CONCURRENCY")
}

func TestLoadFromEnv_MissingStandardsDir(t *testing.T) {
	clearEnv(t)
	t.Setenv("STANDARDS_DIR", filepath.Join(t.TempDir(), "nope"))

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STANDARDS_DIR")
}

func TestLoadFromEnv_ProductionRejectsWildcardCORS(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS wildcard")

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoadFromEnv_APIKeyHashes(t *testing.T) {
	clearEnv(t)
	a := "2BB80D537B1DA3E38BD30361AA855686BDE0EACD7162FEF6A25FE97BF527A25B"
	b := "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
	t.Setenv("API_KEY_HASHES", a+", "+b+",")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b",
		b,
	}, cfg.APIKeyHashes)

	t.Setenv("API_KEY_HASHES", "secret")
	_, err = LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY_HASHES")
}

func TestLoadFromEnv_ProductionWarnsOpenAPI(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Contains(t, cfg.Warnings, "API_KEY_HASHES not set, the validation API is open")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestStandardLoader(t *testing.T) {
	cfg := &Config{}
	assert.Same(t, standard.Default(), cfg.StandardLoader())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v2.0.0.yaml"), []byte("name: custom\n"), 0o644))
	cfg.StandardsDir = dir
	assert.Equal(t, []string{"2.0.0"}, cfg.StandardLoader().ListAvailableVersions())
}

func TestLoadDotEnv_FileNotFound(t *testing.T) {
	assert.NoError(t, LoadDotEnv("/nonexistent/.env"))
}

func TestLoadDotEnv_ParsesKeyValue(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "# comment\n\nDP_TEST_KEY=test_value\nexport DP_TEST_QUOTED=\"quoted value\"\nnot a pair\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))
	t.Cleanup(func() {
		_ = os.Unsetenv("DP_TEST_KEY")
		_ = os.Unsetenv("DP_TEST_QUOTED")
	})

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "test_value", os.Getenv("DP_TEST_KEY"))
	assert.Equal(t, "quoted value", os.Getenv("DP_TEST_QUOTED"))
}

func TestLoadDotEnv_EnvVarPrecedence(t *testing.T) {
	t.Setenv("DP_TEST_PRECEDENCE", "from_env")
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DP_TEST_PRECEDENCE=from_file\n"), 0o644))

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "from_env", os.Getenv("DP_TEST_PRECEDENCE"))
}
