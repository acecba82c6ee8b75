package config

import (
	"log/slog"
	"runtime"
	"time"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

type serverDefaults struct{}

func (serverDefaults) Domain() string { return "server" }

func (serverDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = 10 << 20
	}
	return nil
}

type authDefaults struct{}

func (authDefaults) Domain() string { return "auth" }

func (authDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Auth.JWTAlgorithm == "" {
		cfg.Auth.JWTAlgorithm = "HS256"
	}
	if cfg.Auth.AccessTokenExpireMinutes == 0 {
		cfg.Auth.AccessTokenExpireMinutes = 60
	}
	return nil
}

type storageDefaults struct{}

func (storageDefaults) Domain() string { return "database" }

func (storageDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Database.Path == "" {
		cfg.Database.Path = "semcheck.db"
	}
	return nil
}

type loggingDefaults struct{}

func (loggingDefaults) Domain() string { return "logging" }

func (loggingDefaults) ApplyDefaults(cfg *Config) error {
	level, ok := logLevelNormalizer.Lookup(string(cfg.Logging.Level))
	if !ok {
		slog.Warn("Unknown log level, using default",
			slog.String("value", string(cfg.Logging.Level)),
			slog.String("default", string(level)))
	}
	format, ok := logFormatNormalizer.Lookup(string(cfg.Logging.Format))
	if !ok {
		slog.Warn("Unknown log format, using default",
			slog.String("value", string(cfg.Logging.Format)),
			slog.String("default", string(format)))
	}
	cfg.Logging.Level = level
	cfg.Logging.Format = format
	return nil
}

type integrationDefaults struct{}

func (integrationDefaults) Domain() string { return "integrations" }

func (integrationDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.NATS.Subject == "" {
		cfg.NATS.Subject = "semcheck.analyses"
	}
	if cfg.Retention.MaxAge > 0 && cfg.Retention.Interval <= 0 {
		cfg.Retention.Interval = time.Hour
	}
	if cfg.Batch.Workers <= 0 {
		cfg.Batch.Workers = runtime.GOMAXPROCS(0)
	}
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		serverDefaults{},
		authDefaults{},
		storageDefaults{},
		loggingDefaults{},
		integrationDefaults{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers() {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
