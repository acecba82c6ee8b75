package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
)

// envFiles are loaded in order. Values already in the environment win.
var envFiles = []string{".env", ".env.local"}

func loadEnvFiles() error {
	for _, path := range envFiles {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "failed to load env file").
				WithContext("file", path).
				Build()
		}
	}
	return nil
}

// Environment variables that override file values.
const (
	EnvJWTSecret        = "JWT_SECRET"
	EnvJWTAlgorithm     = "JWT_ALGORITHM"
	EnvTokenExpire      = "ACCESS_TOKEN_EXPIRE_MINUTES"
	EnvTokenExpireAlias = "JWT_TOKEN_EXPIRE_MINUTES"
	EnvDBPath           = "DB_PATH"
	EnvAddr             = "SEMCHECK_ADDR"
	EnvNATSURL          = "NATS_URL"
)

func applyEnvOverrides(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString(EnvJWTSecret, &cfg.Auth.JWTSecret)
	setString(EnvJWTAlgorithm, &cfg.Auth.JWTAlgorithm)
	setString(EnvDBPath, &cfg.Database.Path)
	setString(EnvAddr, &cfg.Server.Addr)
	setString(EnvNATSURL, &cfg.NATS.URL)

	for _, key := range []string{EnvTokenExpireAlias, EnvTokenExpire} {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid token expiry").
				WithContext("env", key).
				Build()
		}
		cfg.Auth.AccessTokenExpireMinutes = minutes
	}
	return nil
}
