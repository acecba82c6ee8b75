package config

import (
	"strings"

	"git.home.luguber.info/inful/semcheck/internal/auth"
	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
)

// Validate checks settings shared by every command.
func (c *Config) Validate() error {
	if !auth.IsSupportedAlgorithm(c.Auth.JWTAlgorithm) {
		return errors.ConfigError("unsupported jwt algorithm").
			WithContext("algorithm", c.Auth.JWTAlgorithm).
			WithContext("supported", strings.Join(auth.SupportedAlgorithms(), ", ")).
			Build()
	}
	if c.Auth.AccessTokenExpireMinutes <= 0 {
		return errors.ConfigError("access token expiry must be positive").
			WithContext("minutes", c.Auth.AccessTokenExpireMinutes).
			Build()
	}
	if c.Retention.MaxAge < 0 {
		return errors.ConfigError("retention max_age must not be negative").Build()
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.ConfigError("max_upload_bytes must be positive").Build()
	}
	return nil
}

// ValidateServe additionally checks what the HTTP API needs.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.ConfigError("jwt secret is required to serve (set JWT_SECRET)").Build()
	}
	if c.Server.Addr == "" {
		return errors.ConfigError("server address must not be empty").Build()
	}
	return nil
}
