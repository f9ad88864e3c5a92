package ports

import (
	"context"

	"github.com/edgechat/backend/internal/core/domain"
)

// TokenPair is the credential set handed to clients on register/login/refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (*TokenPair, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// ResolveUser maps a verified access-token subject to a live account.
	ResolveUser(ctx context.Context, userID int64) (*domain.User, error)
}
