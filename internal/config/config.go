package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cbaclube/portal/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	LogLevel           logging.Level

	ScriptURL                 string
	ScriptTimeout             time.Duration
	ScriptCircuitEnabled      bool
	ScriptCircuitFailureCount int
	ScriptCircuitOpenTimeout  time.Duration
	ScriptCircuitHalfOpenReq  int

	AttendanceFeedURL string
	FinanceFeedURL    string
	FeedTimeout       time.Duration
	FeedCacheTTL      time.Duration

	PollInterval       time.Duration
	PollTimeout        time.Duration
	ReconcileMaxWorker int

	DrawPool             int
	ComplianceWindowDays int

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	scriptURL := strings.TrimSpace(getEnv("SCRIPT_URL", ""))
	if scriptURL == "" {
		return Config{}, fmt.Errorf("SCRIPT_URL is required")
	}
	attendanceFeedURL := strings.TrimSpace(getEnv("ATTENDANCE_FEED_URL", ""))
	if attendanceFeedURL == "" {
		return Config{}, fmt.Errorf("ATTENDANCE_FEED_URL is required")
	}
	financeFeedURL := strings.TrimSpace(getEnv("FINANCE_FEED_URL", ""))
	if financeFeedURL == "" {
		return Config{}, fmt.Errorf("FINANCE_FEED_URL is required")
	}

	scriptTimeout, err := getEnvAsDuration("SCRIPT_TIMEOUT", 20*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRIPT_TIMEOUT: %w", err)
	}
	scriptCircuitEnabled, err := strconv.ParseBool(getEnv("SCRIPT_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRIPT_CIRCUIT_ENABLED: %w", err)
	}
	scriptCircuitFailureCount, err := getEnvAsInt("SCRIPT_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRIPT_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	scriptCircuitOpenTimeout, err := getEnvAsDuration("SCRIPT_CIRCUIT_OPEN_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRIPT_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	scriptCircuitHalfOpenReq, err := getEnvAsInt("SCRIPT_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRIPT_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	feedTimeout, err := getEnvAsDuration("FEED_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse FEED_TIMEOUT: %w", err)
	}
	feedCacheTTL, err := getEnvAsDuration("FEED_CACHE_TTL", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse FEED_CACHE_TTL: %w", err)
	}

	pollInterval, err := getEnvAsDuration("POLL_INTERVAL", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse POLL_INTERVAL: %w", err)
	}
	if pollInterval < time.Second {
		return Config{}, fmt.Errorf("POLL_INTERVAL must be at least 1s")
	}
	pollTimeout, err := getEnvAsDuration("POLL_TIMEOUT", pollInterval)
	if err != nil {
		return Config{}, fmt.Errorf("parse POLL_TIMEOUT: %w", err)
	}
	reconcileMaxWorker, err := getEnvAsInt("RECONCILE_MAX_WORKERS", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECONCILE_MAX_WORKERS: %w", err)
	}

	drawPool, err := getEnvAsInt("DRAW_POOL", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse DRAW_POOL: %w", err)
	}
	if drawPool%2 != 0 || drawPool <= 0 {
		return Config{}, fmt.Errorf("DRAW_POOL must be a positive even number")
	}
	complianceWindowDays, err := getEnvAsInt("COMPLIANCE_WINDOW_DAYS", 60)
	if err != nil {
		return Config{}, fmt.Errorf("parse COMPLIANCE_WINDOW_DAYS: %w", err)
	}

	readTimeout, err := getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_WRITE_TIMEOUT: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServer := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServer == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}

	logLevel, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("SERVICE_NAME", "cba-portal"),
		ServiceVersion:     getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           logLevel,

		ScriptURL:                 scriptURL,
		ScriptTimeout:             scriptTimeout,
		ScriptCircuitEnabled:      scriptCircuitEnabled,
		ScriptCircuitFailureCount: scriptCircuitFailureCount,
		ScriptCircuitOpenTimeout:  scriptCircuitOpenTimeout,
		ScriptCircuitHalfOpenReq:  scriptCircuitHalfOpenReq,

		AttendanceFeedURL: attendanceFeedURL,
		FinanceFeedURL:    financeFeedURL,
		FeedTimeout:       feedTimeout,
		FeedCacheTTL:      feedCacheTTL,

		PollInterval:       pollInterval,
		PollTimeout:        pollTimeout,
		ReconcileMaxWorker: reconcileMaxWorker,

		DrawPool:             drawPool,
		ComplianceWindowDays: complianceWindowDays,

		PprofEnabled: pprofEnabled,
		PprofAddr:    getEnv("PPROF_ADDR", "localhost:6060"),

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServer,
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", "cba-portal"),
		PyroscopeAuthToken:         getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser:     getEnv("PYROSCOPE_BASIC_AUTH_USER", ""),
		PyroscopeBasicAuthPassword: getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}, nil
}

func parseAppEnv(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case EnvDev, EnvStage, EnvProd:
		return v, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) (logging.Level, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug, nil
	case "info":
		return logging.LevelInfo, nil
	case "warn", "warning":
		return logging.LevelWarn, nil
	case "error":
		return logging.LevelError, nil
	default:
		return logging.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", v)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
