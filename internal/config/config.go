package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nholik/deploy-hook/internal/environment"
)

const (
	envCurrentEnvironment      = "WP_ENV"
	envLogLevel                = "DH_LOG_LEVEL"
	envHTTPPort                = "DH_HTTP_PORT"
	envMetricsPort             = "DH_METRICS_PORT"
	envDispatchTimeout         = "DH_DISPATCH_TIMEOUT"
	envDispatchMinInterval     = "DH_DISPATCH_MIN_INTERVAL"
	envDryRun                  = "DH_DRY_RUN"
	envOverridesFile           = "DH_OVERRIDES_FILE"
	envSlackWebhookURL         = "DH_SLACK_WEBHOOK_URL"
	envPlatformVersion         = "DH_PLATFORM_VERSION"
	envRequiredPlatformVersion = "DH_REQUIRED_PLATFORM_VERSION"
	envRequiredRuntimeVersion  = "DH_REQUIRED_RUNTIME_VERSION"
	envAdminURL                = "DH_ADMIN_URL"
	envStrictWebhookCheck      = "DH_STRICT_WEBHOOK_CHECK"
)

const (
	defaultLogLevel                = "info"
	defaultHTTPPort                = 8080
	defaultDispatchTimeout         = 5 * time.Second
	defaultRequiredPlatformVersion = "5.2"
	defaultRequiredRuntimeVersion  = "1.22"
)

// Config describes runtime configuration loaded from the environment.
type Config struct {
	Environment             environment.Environment
	RawEnvironment          string
	Webhooks                environment.WebhookMap
	LogLevel                string
	HTTPPort                int
	MetricsPort             int
	DispatchTimeout         time.Duration
	DispatchMinInterval     time.Duration
	DryRun                  bool
	OverridesFile           string
	SlackWebhookURL         string
	PlatformVersion         string
	RequiredPlatformVersion string
	RequiredRuntimeVersion  string
	AdminURL                string
	StrictWebhookCheck      bool
}

// Load reads configuration from environment variables and a local .env file if present.
// Existing environment variables take precedence over values in .env.
func Load() (Config, error) {
	if err := loadDotEnvIfPresent(".env"); err != nil {
		return Config{}, err
	}

	raw, _ := lookupTrimmed(envCurrentEnvironment)
	cfg := Config{
		Environment:             environment.Resolve(raw),
		RawEnvironment:          raw,
		Webhooks:                environment.BuildWebhookMap(lookupTrimmed),
		LogLevel:                defaultLogLevel,
		HTTPPort:                defaultHTTPPort,
		DispatchTimeout:         defaultDispatchTimeout,
		RequiredPlatformVersion: defaultRequiredPlatformVersion,
		RequiredRuntimeVersion:  defaultRequiredRuntimeVersion,
	}

	for _, env := range environment.Known {
		key, hook := cfg.Webhooks.Lookup(env)
		if hook == "" {
			continue
		}
		if err := validateURL(hook, key); err != nil {
			return Config{}, err
		}
	}

	if value, ok := lookupTrimmed(envLogLevel); ok && value != "" {
		cfg.LogLevel = value
	}

	var err error
	if cfg.HTTPPort, err = lookupPort(envHTTPPort, cfg.HTTPPort); err != nil {
		return Config{}, err
	}
	if cfg.MetricsPort, err = lookupPort(envMetricsPort, 0); err != nil {
		return Config{}, err
	}

	if value, ok := lookupTrimmed(envDispatchTimeout); ok {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", envDispatchTimeout, err)
		}
		if timeout <= 0 {
			return Config{}, fmt.Errorf("%s must be greater than zero", envDispatchTimeout)
		}
		cfg.DispatchTimeout = timeout
	}

	if value, ok := lookupTrimmed(envDispatchMinInterval); ok {
		interval, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", envDispatchMinInterval, err)
		}
		if interval < 0 {
			return Config{}, fmt.Errorf("%s cannot be negative", envDispatchMinInterval)
		}
		cfg.DispatchMinInterval = interval
	}

	if cfg.DryRun, err = lookupBool(envDryRun); err != nil {
		return Config{}, err
	}
	if cfg.StrictWebhookCheck, err = lookupBool(envStrictWebhookCheck); err != nil {
		return Config{}, err
	}

	if value, ok := lookupTrimmed(envOverridesFile); ok {
		cfg.OverridesFile = value
	}

	if value, ok := lookupTrimmed(envSlackWebhookURL); ok && value != "" {
		if err := validateURL(value, envSlackWebhookURL); err != nil {
			return Config{}, err
		}
		cfg.SlackWebhookURL = value
	}

	if value, ok := lookupTrimmed(envPlatformVersion); ok {
		cfg.PlatformVersion = value
	}
	if value, ok := lookupTrimmed(envRequiredPlatformVersion); ok {
		cfg.RequiredPlatformVersion = value
	}
	if value, ok := lookupTrimmed(envRequiredRuntimeVersion); ok {
		cfg.RequiredRuntimeVersion = value
	}

	if value, ok := lookupTrimmed(envAdminURL); ok && value != "" {
		if err := validateURL(value, envAdminURL); err != nil {
			return Config{}, err
		}
		cfg.AdminURL = value
	}

	return cfg, nil
}

func lookupTrimmed(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func lookupPort(key string, fallback int) (int, error) {
	value, ok := lookupTrimmed(key)
	if !ok || value == "" {
		return fallback, nil
	}
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("%s must be between 0 and 65535", key)
	}
	return port, nil
}

func lookupBool(key string) (bool, error) {
	value, ok := lookupTrimmed(key)
	if !ok || value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func loadDotEnvIfPresent(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return nil
	}

	return err
}

func validateURL(value, name string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid %s: must include scheme and host", name)
	}
	return nil
}
