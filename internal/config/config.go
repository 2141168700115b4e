package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/leaguesync/internal/platform/logging"
)

// Config stores runtime configuration for one reconciliation run. Values
// come from the environment once, at startup, and are threaded explicitly;
// components never read ambient process state.
type Config struct {
	ServiceName    string
	ServiceVersion string

	DBURL                   string
	DBDisablePreparedBinary bool

	InputDir       string
	LoaderPoolSize int

	OrphanTolerance int

	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration

	// Rotation closes and reopens the store connection at checkpoint
	// boundaries once either bound is exceeded.
	RotateMaxOps     int
	RotateMaxElapsed time.Duration

	UptraceEnabled bool
	UptraceDSN     string

	LogLevel logging.Level
}

func Load() (Config, error) {
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}

	disablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY: %w", err)
	}

	inputDir := strings.TrimSpace(getEnv("INPUT_DIR", "./snapshots"))

	loaderPoolSize, err := getEnvAsInt("LOADER_POOL_SIZE", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse LOADER_POOL_SIZE: %w", err)
	}
	if loaderPoolSize <= 0 {
		return Config{}, fmt.Errorf("LOADER_POOL_SIZE must be > 0")
	}

	orphanTolerance, err := getEnvAsInt("ORPHAN_TOLERANCE", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse ORPHAN_TOLERANCE: %w", err)
	}
	if orphanTolerance < 0 {
		return Config{}, fmt.Errorf("ORPHAN_TOLERANCE must be >= 0")
	}

	retryMaxAttempts, err := getEnvAsInt("RETRY_MAX_ATTEMPTS", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse RETRY_MAX_ATTEMPTS: %w", err)
	}
	if retryMaxAttempts < 1 {
		return Config{}, fmt.Errorf("RETRY_MAX_ATTEMPTS must be >= 1")
	}
	retryInitialBackoff, err := getEnvAsDuration("RETRY_INITIAL_BACKOFF", 250*time.Millisecond)
	if err != nil {
		return Config{}, fmt.Errorf("parse RETRY_INITIAL_BACKOFF: %w", err)
	}
	retryMaxBackoff, err := getEnvAsDuration("RETRY_MAX_BACKOFF", 5*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse RETRY_MAX_BACKOFF: %w", err)
	}

	rotateMaxOps, err := getEnvAsInt("ROTATE_MAX_OPS", 5000)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROTATE_MAX_OPS: %w", err)
	}
	rotateMaxElapsed, err := getEnvAsDuration("ROTATE_MAX_ELAPSED", 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROTATE_MAX_ELAPSED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	return Config{
		ServiceName:             getEnv("SERVICE_NAME", "leaguesync"),
		ServiceVersion:          getEnv("SERVICE_VERSION", "dev"),
		DBURL:                   dbURL,
		DBDisablePreparedBinary: disablePreparedBinary,
		InputDir:                inputDir,
		LoaderPoolSize:          loaderPoolSize,
		OrphanTolerance:         orphanTolerance,
		RetryMaxAttempts:        retryMaxAttempts,
		RetryInitialBackoff:     retryInitialBackoff,
		RetryMaxBackoff:         retryMaxBackoff,
		RotateMaxOps:            rotateMaxOps,
		RotateMaxElapsed:        rotateMaxElapsed,
		UptraceEnabled:          uptraceEnabled,
		UptraceDSN:              uptraceDSN,
		LogLevel:                logging.ParseLevel(getEnv("LOG_LEVEL", "info")),
	}, nil
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
