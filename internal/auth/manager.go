// Package auth registers accounts, checks passwords and issues JWT access
// tokens.
package auth

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/logfields"
	"git.home.luguber.info/inful/semcheck/internal/store"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 8

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Validate checks the form and normalizes the email.
func (r *RegisterRequest) Validate() error {
	email, err := NormalizeEmail(r.Email)
	if err != nil {
		return err
	}
	r.Email = email

	if utf8.RuneCountInString(r.Password) < MinPasswordLength {
		return errors.ValidationError("password is too short").
			WithContext("min_length", MinPasswordLength).
			Build()
	}
	if r.Password != r.PasswordConfirmation {
		return errors.ValidationError("passwords do not match").Build()
	}
	return nil
}

// NormalizeEmail trims and lowercases an address and rejects anything that is
// not a bare email address.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errors.ValidationError("invalid email address").
			WithContext("email", raw).
			Build()
	}
	return email, nil
}

// Manager provides a high-level interface for account operations.
type Manager struct {
	users  store.UserStore
	tokens *TokenIssuer
	cost   int
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(m *Manager) { m.cost = cost }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates an authentication manager.
func NewManager(users store.UserStore, tokens *TokenIssuer, opts ...Option) *Manager {
	m := &Manager{
		users:  users,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Tokens returns the token issuer.
func (m *Manager) Tokens() *TokenIssuer { return m.tokens }

// Register validates req and creates the account. A taken email yields
// store.ErrEmailTaken.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (*store.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), m.cost)
	if err != nil {
		if stderrors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, errors.ValidationError("password is too long").Build()
		}
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to hash password").Build()
	}

	user := &store.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := m.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	m.logger.Info("User registered", logfields.UserID(user.ID))
	return user, nil
}

// Login checks the password and issues an access token.
func (m *Manager) Login(ctx context.Context, email, password string) (*Token, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := m.users.GetUserByEmail(ctx, normalized)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		m.logger.Debug("Login rejected", logfields.UserID(user.ID))
		return nil, ErrInvalidCredentials
	}

	return m.tokens.Issue(user.ID, user.Email)
}

// Authenticate verifies a bearer token and loads its user.
func (m *Manager) Authenticate(ctx context.Context, token string) (*store.User, error) {
	claims, err := m.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := m.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
