package auth

import (
	"sort"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = "HS256"

// DefaultTokenTTL is the access token lifetime when none is configured.
const DefaultTokenTTL = 60 * time.Minute

// signingMethods lists the algorithms tokens may be issued with.
var signingMethods = map[string]jwt.SigningMethod{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

// SupportedAlgorithms returns the registered algorithm names, sorted.
func SupportedAlgorithms() []string {
	names := make([]string, 0, len(signingMethods))
	for name := range signingMethods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSupportedAlgorithm reports whether alg can sign tokens.
func IsSupportedAlgorithm(alg string) bool {
	_, ok := signingMethods[alg]
	return ok
}

// Claims are the JWT claims carried by an access token. Subject is the user ID.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Token is the login response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// TokenIssuer signs and verifies access tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// IssuerOption configures a TokenIssuer.
type IssuerOption func(*TokenIssuer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewTokenIssuer creates an issuer. An empty algorithm selects DefaultAlgorithm
// and a non-positive ttl selects DefaultTokenTTL.
func NewTokenIssuer(secret, algorithm string, ttl time.Duration, opts ...IssuerOption) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	method, ok := signingMethods[algorithm]
	if !ok {
		return nil, ErrUnsupportedAlgorithm.WithContext("algorithm", algorithm)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	i := &TokenIssuer{secret: []byte(secret), method: method, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Algorithm returns the signing algorithm name.
func (i *TokenIssuer) Algorithm() string { return i.method.Alg() }

// TTL returns the token lifetime.
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// Issue creates a signed access token for the user.
func (i *TokenIssuer) Issue(userID, email string) (*Token, error) {
	now := i.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to sign token").Build()
	}
	return &Token{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int(i.ttl.Seconds()),
	}, nil
}

// Verify parses and validates a token. Tokens signed with any algorithm other
// than the issuer's, expired tokens and tokens without a subject are rejected.
func (i *TokenIssuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryAuth, ErrInvalidToken.Message()).Build()
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
