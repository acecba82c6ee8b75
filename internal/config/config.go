// Package config loads the semcheck configuration from YAML, .env files and
// environment variables.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "config.yaml"

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	NATS      NATSConfig      `yaml:"nats"`
	Retention RetentionConfig `yaml:"retention"`
	Batch     BatchConfig     `yaml:"batch"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	// RequireAuth protects the upload endpoints. Nil means true.
	RequireAuth *bool `yaml:"require_auth,omitempty"`
}

// AuthRequired reports whether the upload endpoints need a bearer token.
func (s ServerConfig) AuthRequired() bool {
	return s.RequireAuth == nil || *s.RequireAuth
}

// AuthConfig configures JWT access tokens.
type AuthConfig struct {
	JWTSecret                string `yaml:"jwt_secret"`
	JWTAlgorithm             string `yaml:"jwt_algorithm"`
	AccessTokenExpireMinutes int    `yaml:"access_token_expire_minutes"`
}

// TokenTTL returns the access token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.AccessTokenExpireMinutes) * time.Minute
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NATSConfig configures analysis event publishing. An empty URL disables it.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// RetentionConfig configures pruning of stored analyses. A zero MaxAge
// disables pruning.
type RetentionConfig struct {
	MaxAge   time.Duration `yaml:"max_age"`
	Interval time.Duration `yaml:"interval"`
}

// BatchConfig configures the offline marker.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// Load reads configuration from configPath. A missing file is not an error:
// defaults and the environment are used instead. .env and .env.local are
// loaded first and never override variables already set.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse config file").
					WithContext("file", configPath).
					Build()
			}
		case os.IsNotExist(err):
		default:
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
				WithContext("file", configPath).
				Build()
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every default applied and no file or
// environment input.
func Default() *Config {
	cfg := &Config{}
	_ = applyDefaults(cfg)
	return cfg
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.AlreadyExistsError("configuration file already exists (use --force to overwrite)").
			WithContext("file", configPath).
			Build()
	}

	example := Default()
	example.Auth.JWTSecret = "${JWT_SECRET}"
	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "failed to write config file").
			WithContext("file", configPath).
			Build()
	}
	return nil
}
