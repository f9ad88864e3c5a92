package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/edgechat/backend/internal/core/domain"
	"github.com/edgechat/backend/internal/core/ports"
	"github.com/edgechat/backend/internal/core/token"
)

// AuthService implements registration, login and token refresh.
type AuthService struct {
	repo       ports.UserRepository
	codec      *token.Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(repo ports.UserRepository, codec *token.Codec, accessTTL, refreshTTL time.Duration) *AuthService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &AuthService{repo: repo, codec: codec, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Register creates a new account and returns a token pair so the client is
// logged in immediately.
func (s *AuthService) Register(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, email, string(hash))
	if err != nil {
		return nil, err
	}

	return s.issuePair(user.ID)
}

// Login verifies the password and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issuePair(user.ID)
}

// Refresh exchanges a valid refresh-kind token for a new pair. Access
// tokens are rejected here so a leaked short-lived token cannot renew
// itself.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	claims, ok := s.codec.Verify(refreshToken)
	if !ok || claims.Kind != token.KindRefresh {
		return nil, domain.ErrInvalidToken
	}
	return s.issuePair(claims.UserID)
}

// ResolveUser maps a token subject to a live account. Returns
// ErrUserNotFound when the account was deleted after token issuance.
func (s *AuthService) ResolveUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) issuePair(userID int64) (*ports.TokenPair, error) {
	access, err := s.codec.Issue(userID, token.KindAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Issue(userID, token.KindRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &ports.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
