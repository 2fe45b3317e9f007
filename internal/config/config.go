package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/session"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/platform/logging"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/platform/resilience"
)

// Config stores runtime configuration for the CLI and the local web UI.
type Config struct {
	AppEnv       string
	ServiceName  string
	LogLevel     logging.Level
	LogFormat    logging.Format
	HTTPAddr     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	APIBaseURL    string
	APITimeout    time.Duration
	ProfilePath   string
	Schedule      session.Schedule
	SettleDelay   time.Duration
	RosterWorkers int

	EventTitle    string
	EventLocation string

	CircuitBreaker resilience.CircuitBreakerConfig
	Observability  Observability
}

// Observability holds the opt-in telemetry exporters. Everything is off by
// default; a personal client only turns these on while debugging.
type Observability struct {
	ServiceVersion string

	UptraceEnabled bool
	UptraceDSN     string

	PprofEnabled bool
	PprofAddr    string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration
}

const writeTimeoutMargin = 5 * time.Second

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logFormat, err := parseLogFormat(getEnv("APP_LOG_FORMAT", string(logging.FormatConsole)))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	apiBaseURL, err := parseBaseURL(getEnv("RSVP_API_BASE_URL", ""))
	if err != nil {
		return Config{}, err
	}
	apiTimeout, err := time.ParseDuration(getEnv("RSVP_API_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RSVP_API_TIMEOUT: %w", err)
	}
	if apiTimeout <= 0 {
		return Config{}, fmt.Errorf("RSVP_API_TIMEOUT must be > 0")
	}

	profilePath, err := resolveProfilePath(getEnv("RSVP_PROFILE_PATH", ""))
	if err != nil {
		return Config{}, err
	}

	schedule, err := loadSchedule()
	if err != nil {
		return Config{}, err
	}

	settleDelay, err := time.ParseDuration(getEnv("RSVP_SETTLE_DELAY", "350ms"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RSVP_SETTLE_DELAY: %w", err)
	}
	if settleDelay < 0 {
		return Config{}, fmt.Errorf("RSVP_SETTLE_DELAY must be >= 0")
	}

	// A toggle holds its request open for a write, the settle delay and a refresh.
	writeTimeout := 2*apiTimeout + settleDelay + writeTimeoutMargin
	if raw := getEnv("APP_WRITE_TIMEOUT", ""); raw != "" {
		writeTimeout, err = time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
		}
	}

	rosterWorkers, err := getEnvAsInt("RSVP_ROSTER_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse RSVP_ROSTER_WORKERS: %w", err)
	}
	if rosterWorkers <= 0 {
		return Config{}, fmt.Errorf("RSVP_ROSTER_WORKERS must be > 0")
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("RSVP_CIRCUIT_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RSVP_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("RSVP_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse RSVP_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if circuitFailureCount <= 0 {
		return Config{}, fmt.Errorf("RSVP_CIRCUIT_FAILURE_COUNT must be > 0")
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv("RSVP_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RSVP_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if circuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("RSVP_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("RSVP_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse RSVP_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if circuitHalfOpenMaxReq <= 0 {
		return Config{}, fmt.Errorf("RSVP_CIRCUIT_HALF_OPEN_MAX_REQ must be > 0")
	}

	observability, err := loadObservability()
	if err != nil {
		return Config{}, err
	}

	serviceName := strings.TrimSpace(getEnv("APP_SERVICE_NAME", "lunch-hockey-rsvp"))
	if observability.PyroscopeAppName == "" {
		observability.PyroscopeAppName = serviceName
	}

	return Config{
		AppEnv:        appEnv,
		ServiceName:   serviceName,
		LogLevel:      logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:     logFormat,
		HTTPAddr:      strings.TrimSpace(getEnv("APP_HTTP_ADDR", "127.0.0.1:8080")),
		ReadTimeout:   readTimeout,
		WriteTimeout:  writeTimeout,
		APIBaseURL:    apiBaseURL,
		APITimeout:    apiTimeout,
		ProfilePath:   profilePath,
		Schedule:      schedule,
		SettleDelay:   settleDelay,
		RosterWorkers: rosterWorkers,
		EventTitle:    strings.TrimSpace(getEnv("RSVP_EVENT_TITLE", "Lunchtime Hockey")),
		EventLocation: strings.TrimSpace(getEnv("RSVP_EVENT_LOCATION", "")),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          circuitEnabled,
			FailureThreshold: circuitFailureCount,
			OpenTimeout:      circuitOpenTimeout,
			HalfOpenMaxReq:   circuitHalfOpenMaxReq,
		},
		Observability: observability,
	}, nil
}

func loadObservability() (Observability, error) {
	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Observability{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Observability{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Observability{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", "127.0.0.1:6060"))

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Observability{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Observability{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Observability{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Observability{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	return Observability{
		ServiceVersion:         strings.TrimSpace(getEnv("APP_SERVICE_VERSION", "dev")),
		UptraceEnabled:         uptraceEnabled,
		UptraceDSN:             uptraceDSN,
		PprofEnabled:           pprofEnabled,
		PprofAddr:              pprofAddr,
		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAppName:       strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", "")),
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:    pyroscopeUploadRate,
	}, nil
}

// parseUptraceDSNFromOTLPHeaders picks uptrace-dsn out of a standard
// OTEL_EXPORTER_OTLP_HEADERS value such as "uptrace-dsn=https://...".
func parseUptraceDSNFromOTLPHeaders(raw string) string {
	for _, item := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(value), "\"'")
		}
	}
	return ""
}

func loadSchedule() (session.Schedule, error) {
	loc, err := parseTimezone(getEnv("RSVP_TIMEZONE", "Local"))
	if err != nil {
		return session.Schedule{}, err
	}

	rangeStart, err := session.ParseDate(getEnv("RSVP_RANGE_START", "2026-02-01"), loc)
	if err != nil {
		return session.Schedule{}, fmt.Errorf("parse RSVP_RANGE_START: %w", err)
	}
	rangeEnd, err := session.ParseDate(getEnv("RSVP_RANGE_END", "2026-04-01"), loc)
	if err != nil {
		return session.Schedule{}, fmt.Errorf("parse RSVP_RANGE_END: %w", err)
	}
	weekdays, err := session.ParseWeekdays(getEnv("RSVP_WEEKDAYS", "TU,TH"))
	if err != nil {
		return session.Schedule{}, fmt.Errorf("parse RSVP_WEEKDAYS: %w", err)
	}
	start, err := session.ParseClock(getEnv("RSVP_START_TIME", "11:30"))
	if err != nil {
		return session.Schedule{}, fmt.Errorf("parse RSVP_START_TIME: %w", err)
	}
	end, err := session.ParseClock(getEnv("RSVP_END_TIME", "13:00"))
	if err != nil {
		return session.Schedule{}, fmt.Errorf("parse RSVP_END_TIME: %w", err)
	}

	schedule := session.Schedule{
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		Weekdays:   weekdays,
		Start:      start,
		End:        end,
		Location:   loc,
	}
	if err := schedule.Validate(); err != nil {
		return session.Schedule{}, fmt.Errorf("invalid session schedule: %w", err)
	}
	return schedule, nil
}

func parseTimezone(v string) (*time.Location, error) {
	value := strings.TrimSpace(v)
	if value == "" || strings.EqualFold(value, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(value)
	if err != nil {
		return nil, fmt.Errorf("parse RSVP_TIMEZONE: %w", err)
	}
	return loc, nil
}

func parseBaseURL(v string) (string, error) {
	value := strings.TrimSpace(v)
	if value == "" {
		return "", fmt.Errorf("RSVP_API_BASE_URL is required")
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("parse RSVP_API_BASE_URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("RSVP_API_BASE_URL must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("RSVP_API_BASE_URL must include a host")
	}
	return value, nil
}

func resolveProfilePath(v string) (string, error) {
	if value := strings.TrimSpace(v); value != "" {
		return value, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("RSVP_PROFILE_PATH is required when no user config dir is available: %w", err)
	}
	return filepath.Join(dir, "lunch-hockey", "profile.json"), nil
}

func parseLogFormat(v string) (logging.Format, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case string(logging.FormatJSON):
		return logging.FormatJSON, nil
	case string(logging.FormatConsole):
		return logging.FormatConsole, nil
	default:
		return "", fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are %s, %s", v, logging.FormatJSON, logging.FormatConsole)
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

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
