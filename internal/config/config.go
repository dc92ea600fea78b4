package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/predictleague/prediction-league/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                      string
	ServiceName                 string
	ServiceVersion              string
	HTTPAddr                    string
	ReadTimeout                 time.Duration
	WriteTimeout                time.Duration
	LogLevel                    logging.Level
	CORSAllowedOrigins          []string
	DBURL                       string
	DBDisablePreparedBinary     bool
	ServiceToken                string
	InternalJobToken            string
	SweepWorkers                int
	KalshiBaseURL               string
	KalshiAPIKey                string
	KalshiTimeout               time.Duration
	KalshiMaxRetries            int
	KalshiPageLimit             int
	KalshiCategories            []string
	KalshiCircuitEnabled        bool
	KalshiCircuitFailureCount   int
	KalshiCircuitOpenTimeout    time.Duration
	KalshiCircuitHalfOpenMaxReq int
	QStashEnabled               bool
	QStashBaseURL               string
	QStashToken                 string
	QStashTargetBaseURL         string
	QStashRetries               int
	QStashCircuitEnabled        bool
	QStashCircuitFailureCount   int
	QStashCircuitOpenTimeout    time.Duration
	QStashCircuitHalfOpenMaxReq int
	UptraceEnabled              bool
	UptraceDSN                  string
	PprofEnabled                bool
	PprofAddr                   string
	PyroscopeEnabled            bool
	PyroscopeServerAddress      string
	PyroscopeAppName            string
	PyroscopeAuthToken          string
	PyroscopeBasicAuthUser      string
	PyroscopeBasicAuthPassword  string
	PyroscopeUploadRate         time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	sweepWorkers, err := getEnvAsInt("SWEEP_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SWEEP_WORKERS: %w", err)
	}
	if sweepWorkers < 1 {
		return Config{}, fmt.Errorf("SWEEP_WORKERS must be >= 1")
	}

	kalshiTimeout, err := time.ParseDuration(getEnv("KALSHI_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse KALSHI_TIMEOUT: %w", err)
	}
	if kalshiTimeout <= 0 {
		return Config{}, fmt.Errorf("KALSHI_TIMEOUT must be > 0")
	}
	kalshiMaxRetries, err := getEnvAsInt("KALSHI_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse KALSHI_MAX_RETRIES: %w", err)
	}
	if kalshiMaxRetries < 0 {
		return Config{}, fmt.Errorf("KALSHI_MAX_RETRIES must be >= 0")
	}
	kalshiPageLimit, err := getEnvAsInt("KALSHI_PAGE_LIMIT", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse KALSHI_PAGE_LIMIT: %w", err)
	}
	if kalshiPageLimit < 1 {
		return Config{}, fmt.Errorf("KALSHI_PAGE_LIMIT must be >= 1")
	}
	kalshiCircuitEnabled, err := strconv.ParseBool(getEnv("KALSHI_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse KALSHI_CIRCUIT_ENABLED: %w", err)
	}
	kalshiCircuitFailureCount, err := getEnvAsInt("KALSHI_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse KALSHI_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if kalshiCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("KALSHI_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	kalshiCircuitOpenTimeout, err := time.ParseDuration(getEnv("KALSHI_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse KALSHI_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if kalshiCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("KALSHI_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	kalshiCircuitHalfOpenMaxReq, err := getEnvAsInt("KALSHI_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse KALSHI_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if kalshiCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("KALSHI_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	internalJobToken := strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", ""))

	qstashEnabled, err := strconv.ParseBool(getEnv("QSTASH_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_ENABLED: %w", err)
	}
	qstashRetries, err := getEnvAsInt("QSTASH_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	if qstashRetries < 0 {
		return Config{}, fmt.Errorf("QSTASH_RETRIES must be >= 0")
	}
	qstashCircuitEnabled, err := strconv.ParseBool(getEnv("QSTASH_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_ENABLED: %w", err)
	}
	qstashCircuitFailureCount, err := getEnvAsInt("QSTASH_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if qstashCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	qstashCircuitOpenTimeout, err := time.ParseDuration(getEnv("QSTASH_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if qstashCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	qstashCircuitHalfOpenMaxReq, err := getEnvAsInt("QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if qstashCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	qstashBaseURL := strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io"))
	qstashToken := strings.TrimSpace(getEnv("QSTASH_TOKEN", ""))
	qstashTargetBaseURL := strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", ""))
	if qstashEnabled {
		if qstashToken == "" {
			return Config{}, fmt.Errorf("QSTASH_TOKEN is required when QSTASH_ENABLED=true")
		}
		if qstashTargetBaseURL == "" {
			return Config{}, fmt.Errorf("QSTASH_TARGET_BASE_URL is required when QSTASH_ENABLED=true")
		}
		if internalJobToken == "" {
			return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when QSTASH_ENABLED=true")
		}
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:                      appEnv,
		ServiceName:                 getEnv("APP_SERVICE_NAME", "prediction-league-api"),
		ServiceVersion:              getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                    getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                 readTimeout,
		WriteTimeout:                writeTimeout,
		LogLevel:                    parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins:          splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DBURL:                       strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:     dbDisablePreparedBinary,
		ServiceToken:                strings.TrimSpace(getEnv("SERVICE_TOKEN", "")),
		InternalJobToken:            internalJobToken,
		SweepWorkers:                sweepWorkers,
		KalshiBaseURL:               strings.TrimSpace(getEnv("KALSHI_BASE_URL", "")),
		KalshiAPIKey:                strings.TrimSpace(getEnv("KALSHI_API_KEY", "")),
		KalshiTimeout:               kalshiTimeout,
		KalshiMaxRetries:            kalshiMaxRetries,
		KalshiPageLimit:             kalshiPageLimit,
		KalshiCategories:            splitCSV(getEnv("KALSHI_CATEGORIES", "")),
		KalshiCircuitEnabled:        kalshiCircuitEnabled,
		KalshiCircuitFailureCount:   kalshiCircuitFailureCount,
		KalshiCircuitOpenTimeout:    kalshiCircuitOpenTimeout,
		KalshiCircuitHalfOpenMaxReq: kalshiCircuitHalfOpenMaxReq,
		QStashEnabled:               qstashEnabled,
		QStashBaseURL:               qstashBaseURL,
		QStashToken:                 qstashToken,
		QStashTargetBaseURL:         qstashTargetBaseURL,
		QStashRetries:               qstashRetries,
		QStashCircuitEnabled:        qstashCircuitEnabled,
		QStashCircuitFailureCount:   qstashCircuitFailureCount,
		QStashCircuitOpenTimeout:    qstashCircuitOpenTimeout,
		QStashCircuitHalfOpenMaxReq: qstashCircuitHalfOpenMaxReq,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
		PprofEnabled:                pprofEnabled,
		PprofAddr:                   pprofAddr,
		PyroscopeEnabled:            pyroscopeEnabled,
		PyroscopeServerAddress:      pyroscopeServerAddress,
		PyroscopeAuthToken:          strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:      strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:  strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:         pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.AppEnv == EnvProd && cfg.ServiceToken == "" {
		return Config{}, fmt.Errorf("SERVICE_TOKEN is required when APP_ENV=prod")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
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

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
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
