package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cbaclube/portal/internal/platform/logging"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SCRIPT_URL", "https://script.google.com/macros/s/abc/exec")
	t.Setenv("ATTENDANCE_FEED_URL", "https://docs.google.com/pub?output=csv&gid=1")
	t.Setenv("FINANCE_FEED_URL", "https://docs.google.com/pub?output=csv&gid=2")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, EnvDev, cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 30*time.Second, cfg.PollInterval)
	require.Equal(t, 10, cfg.DrawPool)
	require.Equal(t, 60, cfg.ComplianceWindowDays)
	require.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	require.Equal(t, logging.LevelInfo, cfg.LogLevel)
	require.True(t, cfg.ScriptCircuitEnabled)
}

func TestLoad_MissingScriptURL(t *testing.T) {
	t.Setenv("SCRIPT_URL", "")
	t.Setenv("ATTENDANCE_FEED_URL", "https://example.com/a.csv")
	t.Setenv("FINANCE_FEED_URL", "https://example.com/f.csv")

	_, err := Load()
	require.ErrorContains(t, err, "SCRIPT_URL")
}

func TestLoad_InvalidAppEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "sandbox")

	_, err := Load()
	require.ErrorContains(t, err, "APP_ENV")
}

func TestLoad_PollIntervalTooShort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POLL_INTERVAL", "200ms")

	_, err := Load()
	require.ErrorContains(t, err, "POLL_INTERVAL")
}

func TestLoad_OddDrawPool(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DRAW_POOL", "9")

	_, err := Load()
	require.ErrorContains(t, err, "DRAW_POOL")
}

func TestLoad_UptraceRequiresDSN(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")

	_, err := Load()
	require.ErrorContains(t, err, "UPTRACE_DSN")
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POLL_INTERVAL", "10s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, cfg.PollInterval)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.Equal(t, logging.LevelDebug, cfg.LogLevel)
}
