package auth

import (
	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.AuthError("incorrect email or password").Build()

	// ErrInvalidToken is returned when a bearer token is malformed, expired or
	// signed with an unexpected algorithm.
	ErrInvalidToken = errors.AuthError("could not validate credentials").Build()

	// ErrUnsupportedAlgorithm is returned for signing algorithms outside the registry.
	ErrUnsupportedAlgorithm = errors.ConfigError("unsupported jwt algorithm").Build()

	// ErrEmptySecret is returned when no signing secret is configured.
	ErrEmptySecret = errors.ConfigError("jwt secret must not be empty").Build()
)
