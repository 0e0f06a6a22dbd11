package auth

import (
	"context"
	"time"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/repository"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
	"github.com/clinicmgr/clinic-api/pkg/hasher"
	"github.com/clinicmgr/clinic-api/pkg/token"
)

// Service implements credential verification, token issuance, and account
// provisioning. Every login failure, unknown username, wrong password, or
// locked account reports the same InvalidCredentials error so responses
// cannot be used to probe for accounts.
type Service struct {
	users    repository.UserRepository
	hasher   hasher.PasswordHasher
	tokens   *token.Service
	limiter  *LoginLimiter
	tokenTTL time.Duration
}

func NewService(users repository.UserRepository, h hasher.PasswordHasher,
	tokens *token.Service, limiter *LoginLimiter, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		hasher:   h,
		tokens:   tokens,
		limiter:  limiter,
		tokenTTL: tokenTTL,
	}
}

// Login verifies the credential pair and returns a signed access token.
func (s *Service) Login(ctx context.Context, username, password string) (*model.TokenResponse, error) {
	if s.limiter.Locked(ctx, username) {
		return nil, apperrors.InvalidCredentials(nil)
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		s.limiter.RecordFailure(ctx, username)
		return nil, apperrors.InvalidCredentials(nil)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.limiter.RecordFailure(ctx, username)
		return nil, apperrors.InvalidCredentials(nil)
	}

	s.limiter.Reset(ctx, username)

	signed, err := s.tokens.Issue(user.Username, user.Role.String(), s.tokenTTL)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return model.NewTokenResponse(signed), nil
}

// ValidateToken resolves a bearer token into the identity it was issued
// for. It does not consult the credential store; a token whose account was
// since removed still resolves until it expires.
func (s *Service) ValidateToken(raw string) (*model.Identity, error) {
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, apperrors.Unauthenticated(err)
	}

	return &model.Identity{
		Username: claims.Subject,
		Role:     model.Role(claims.Role),
	}, nil
}

// CreateAccount provisions a credential row together with its database
// grants. An omitted role defaults to patient; an unknown role is rejected
// before anything is written.
func (s *Service) CreateAccount(ctx context.Context, req *model.CreateAccountRequest) (*model.User, error) {
	role := req.Role
	if role == "" {
		role = model.RolePatient
	}
	if !role.Valid() {
		return nil, apperrors.BadRequest("unknown role", nil)
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: digest,
		Role:         role,
	}
	if err := s.users.CreateWithGrants(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
