// Package config loads the adapter's runtime configuration from YAML with
// environment variable overrides. Discovery uses first-match semantics:
// explicit path, then ./researchbridge.yaml, then ~/.researchbridge/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	projectConfigName = "researchbridge.yaml"
	homeConfigName    = "config.yaml"

	envBackendURL     = "RESEARCHBRIDGE_BACKEND_URL"
	envBackendTimeout = "RESEARCHBRIDGE_BACKEND_TIMEOUT_SECONDS"
	envHTTPAddr       = "RESEARCHBRIDGE_HTTP_ADDR"
	envLogLevel       = "RESEARCHBRIDGE_LOG_LEVEL"
	envHealthInterval = "RESEARCHBRIDGE_HEALTH_INTERVAL_SECONDS"
	envOTLPEndpoint   = "RESEARCHBRIDGE_OTLP_ENDPOINT"
)

// Config is the full runtime configuration for the adapter process.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Serve   ServeConfig   `yaml:"serve"`
	Log     LogConfig     `yaml:"log"`
	Tracing TracingConfig `yaml:"tracing"`
}

// BackendConfig configures the research backend proxy.
type BackendConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// Timeout returns the request timeout as a duration.
func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ServeConfig configures the serve command's transports.
type ServeConfig struct {
	// HTTPAddr enables the SSE endpoint when non-empty, e.g. ":8765".
	HTTPAddr string `yaml:"http_addr,omitempty"`
	// HealthIntervalSeconds is the backend probe cadence. Zero disables
	// probing.
	HealthIntervalSeconds int `yaml:"health_interval_seconds,omitempty"`
}

// HealthInterval returns the probe cadence as a duration.
func (c ServeConfig) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalSeconds) * time.Second
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string `yaml:"level,omitempty"`
}

// TracingConfig configures OTLP trace export.
type TracingConfig struct {
	// OTLPEndpoint enables trace export when non-empty, e.g. "localhost:4318".
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`
}

// Default returns the built-in configuration used when no file is present.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			URL:            "http://localhost:8080",
			TimeoutSeconds: 30,
		},
		Serve: ServeConfig{
			HealthIntervalSeconds: 30,
		},
		Log: LogConfig{Level: "info"},
	}
}

// DiscoverPath resolves the config file location with first-match semantics.
// An explicit path that does not exist is an error; absent defaults are not.
func DiscoverPath(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	return DiscoverPathFrom(explicitPath, cwd, homeDir)
}

// DiscoverPathFrom is a testable variant of DiscoverPath.
func DiscoverPathFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	candidates := make([]string, 0, 2)
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		candidates = append(candidates, filepath.Join(homeDir, ".researchbridge", homeConfigName))
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			if i == 0 && strings.TrimSpace(explicitPath) != "" {
				return "", false, fmt.Errorf("config file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking config path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

// Load resolves the configuration: defaults, then the discovered YAML file,
// then environment overrides.
func Load(explicitPath string) (Config, error) {
	cfg := Default()

	path, found, err := DiscoverPath(explicitPath)
	if err != nil {
		return Config{}, err
	}
	if found {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks constraints that would otherwise surface as confusing
// runtime failures.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Backend.URL) == "" {
		return errors.New("config: backend url is required")
	}
	if c.Backend.TimeoutSeconds < 0 {
		return errors.New("config: backend timeout must not be negative")
	}
	if c.Serve.HealthIntervalSeconds < 0 {
		return errors.New("config: health interval must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unsupported log level %q", c.Log.Level)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	// #nosec G304 -- path resolved from explicit local config discovery.
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %q: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parsing config %q: %w", path, err)
	}
	return nil
}

// applyEnv overlays RESEARCHBRIDGE_* variables onto the configuration.
// The lookup function is injected for tests.
func applyEnv(cfg *Config, lookup func(string) string) error {
	if v := strings.TrimSpace(lookup(envBackendURL)); v != "" {
		cfg.Backend.URL = v
	}
	if v := strings.TrimSpace(lookup(envBackendTimeout)); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", envBackendTimeout, err)
		}
		cfg.Backend.TimeoutSeconds = seconds
	}
	if v := strings.TrimSpace(lookup(envHTTPAddr)); v != "" {
		cfg.Serve.HTTPAddr = v
	}
	if v := strings.TrimSpace(lookup(envLogLevel)); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(lookup(envHealthInterval)); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", envHealthInterval, err)
		}
		cfg.Serve.HealthIntervalSeconds = seconds
	}
	if v := strings.TrimSpace(lookup(envOTLPEndpoint)); v != "" {
		cfg.Tracing.OTLPEndpoint = v
	}
	return nil
}
