package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/edgechat/backend/internal/core/domain"
	"github.com/edgechat/backend/internal/core/token"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, email, hashedPassword string) (*domain.User, error) {
	r.nextID++
	u := &domain.User{
		ID:             r.nextID,
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().UTC(),
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func newAuthService(repo *stubUserRepo) (*AuthService, *token.Codec) {
	codec := token.NewCodec("secret")
	return NewAuthService(repo, codec, 15*time.Minute, 7*24*time.Hour), codec
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestAuthService_Register_ReturnsWorkingTokenPair(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newAuthService(repo)

	pair, err := svc.Register(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if pair.TokenType != "bearer" {
		t.Fatalf("expected token_type bearer, got %q", pair.TokenType)
	}

	access, ok := codec.Verify(pair.AccessToken)
	if !ok || access.Kind != token.KindAccess {
		t.Fatalf("access token invalid or wrong kind")
	}
	refresh, ok := codec.Verify(pair.RefreshToken)
	if !ok || refresh.Kind != token.KindRefresh {
		t.Fatalf("refresh token invalid or wrong kind")
	}
	if access.UserID != refresh.UserID {
		t.Fatalf("token pair disagrees on subject: %d vs %d", access.UserID, refresh.UserID)
	}

	// Password must be stored hashed, never plain.
	u := repo.users[access.UserID]
	if u.HashedPassword == "pass123" {
		t.Fatalf("password stored in plain text")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte("pass123")) != nil {
		t.Fatalf("stored hash does not match password")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthService(repo)

	if _, err := svc.Register(context.Background(), "alice@example.com", "pass123"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(context.Background(), "alice@example.com", "other")
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newAuthService(repo)

	if _, err := svc.Register(context.Background(), "alice@example.com", "pass123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	pair, err := svc.Login(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, ok := codec.Verify(pair.AccessToken); !ok {
		t.Fatalf("login access token invalid")
	}

	cases := []struct{ email, password string }{
		{"alice@example.com", "wrong"},
		{"nobody@example.com", "pass123"},
		{"", "pass123"},
		{"alice@example.com", ""},
	}
	for _, tc := range cases {
		if _, err := svc.Login(context.Background(), tc.email, tc.password); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("Login(%q, %q): expected ErrInvalidCredentials, got %v", tc.email, tc.password, err)
		}
	}
}

func TestAuthService_Refresh(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newAuthService(repo)

	pair, err := svc.Register(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	renewed, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	claims, ok := codec.Verify(renewed.AccessToken)
	if !ok || claims.Kind != token.KindAccess {
		t.Fatalf("renewed access token invalid")
	}

	// An access token must not be accepted for renewal.
	if _, err := svc.Refresh(context.Background(), pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for access-kind token, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), "garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestAuthService_ResolveUser(t *testing.T) {
	repo := newStubUserRepo()
	svc, codec := newAuthService(repo)

	pair, err := svc.Register(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	claims, _ := codec.Verify(pair.AccessToken)

	user, err := svc.ResolveUser(context.Background(), claims.UserID)
	if err != nil {
		t.Fatalf("ResolveUser: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.ResolveUser(context.Background(), 9999); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
