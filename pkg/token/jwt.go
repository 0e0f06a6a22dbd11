package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single outcome for every validation failure:
// bad signature, malformed structure, or expiry. Collapsing them keeps the
// token endpoint from acting as an oracle.
var ErrInvalidToken = errors.New("invalid or expired token")

// DefaultTTL is the access token lifetime when the caller passes zero.
const DefaultTTL = 60 * time.Minute

// Claims is the resolved identity carried by a validated token.
type Claims struct {
	Subject string
	Role    string
}

// Service issues and validates signed access tokens. Tokens are stateless;
// the only cancellation mechanism is expiry.
type Service struct {
	secret []byte
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock used for iat/exp. Tests use it to
// simulate expiry without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a token service around a process-wide signing secret.
func NewService(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token signing secret is required")
	}
	s := &Service{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a token binding subject and role with an expiry ttl from now.
// A non-positive ttl falls back to DefaultTTL.
func (s *Service) Issue(subject, role string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := s.now()
	claims := accessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate parses and verifies a token, returning its claims. Any failure
// is reported as ErrInvalidToken. Expiry is checked strictly against the
// service clock with no leeway.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		Subject: claims.Subject,
		Role:    claims.Role,
	}, nil
}
