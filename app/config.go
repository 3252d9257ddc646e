package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dharvista/site/screening"
	"github.com/joho/godotenv"
)

// Config is everything the site reads from the environment.
type Config struct {
	Addr     string
	LogLevel slog.Level

	StorageDriver string
	StorageDSN    string
	UploadDir     string

	AdminEmail    string
	AdminPassword string
	SessionTTL    time.Duration

	SettingsPath string

	OpenAIAPIKey         string
	ScreeningModel       string
	ScreeningRepeats     int
	ScreeningConcurrency int
	ScreeningCache       string
	ScreeningRetries     int
	ScreeningRetryDelay  time.Duration
}

// ScreeningModelOptions are the options for the screening model chain.
func (c Config) ScreeningModelOptions() screening.ModelOptions {
	return screening.ModelOptions{
		APIKey:         c.OpenAIAPIKey,
		Model:          c.ScreeningModel,
		CachePath:      c.ScreeningCache,
		MaxConcurrency: c.ScreeningConcurrency,
		Retries:        c.ScreeningRetries,
		RetryDelay:     c.ScreeningRetryDelay,
	}
}

// ScreeningEnabled reports whether resume screening can be offered.
func (c Config) ScreeningEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// LoadConfig reads the configuration from the environment, after loading envFiles
// (".env" when none are given). Missing env files are ignored.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, errors.Join(fmt.Errorf("failed to read env file %s", f), err)
		}
	}

	var errs []error
	cfg := Config{
		Addr:           getEnv("ADDR", ":8080"),
		StorageDriver:  getEnv("STORAGE_DRIVER", "file"),
		StorageDSN:     getEnv("STORAGE_DSN", "./site-storage"),
		UploadDir:      getEnv("UPLOAD_DIR", "./site-uploads"),
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@modelcorp.com"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "admin123"),
		SettingsPath:   getEnv("SITE_SETTINGS", ""),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		ScreeningModel: getEnv("SCREENING_MODEL", "gpt-4o-mini"),
		ScreeningCache: getEnv("SCREENING_CACHE", "./screening-cache.gob"),
	}

	var err error
	if cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		errs = append(errs, err)
	}
	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 12*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.ScreeningRepeats, err = getEnvInt("SCREENING_REPEATS", 3); err != nil {
		errs = append(errs, err)
	}
	if cfg.ScreeningConcurrency, err = getEnvInt("SCREENING_CONCURRENCY", 5); err != nil {
		errs = append(errs, err)
	}
	if cfg.ScreeningRetries, err = getEnvInt("SCREENING_RETRIES", 8); err != nil {
		errs = append(errs, err)
	}
	if cfg.ScreeningRetryDelay, err = getEnvDuration("SCREENING_RETRY_DELAY", 5*time.Second); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, errors.Join(errors.New("failed to parse config"), err)
	}
	return cfg, nil
}

// getEnv gets an environment variable or returns the default value
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
