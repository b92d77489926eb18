package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/stockflow-erp/stockflow/internal/shared"
)

// TokenIssuer mints and revokes bearer tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Revoke(ctx context.Context, token string) error
}

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens TokenIssuer
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login validates credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout revokes the presented token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}
