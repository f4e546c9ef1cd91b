package auth

import (
	"context"
	"fmt"

	"github.com/cliplearn/backend/internal/domain"
	jwtinfra "github.com/cliplearn/backend/internal/infrastructure/jwt"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair is an access/refresh token set minted together.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type userStore interface {
	Get(ctx context.Context, userID int) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type tokenProvider interface {
	Sign(userID int, kind jwtinfra.Kind) (string, error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

type Service interface {
	Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error)
	// Refresh verifies a refresh token and mints a fresh pair. Every
	// failure wraps ErrUnauthorized: refresh is the one flow whose
	// failures surface as 401 instead of the generic 400.
	Refresh(ctx context.Context, refreshToken string) (*domain.User, TokenPair, error)
	IssuePair(userID int) (TokenPair, error)
}

type service struct {
	users  userStore
	tokens tokenProvider
}

func NewService(users userStore, tokens tokenProvider) Service {
	return &service{users: users, tokens: tokens}
}

func (s *service) Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("incorrect email or password: %w", domain.ErrBadRequest)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, TokenPair{}, fmt.Errorf("incorrect email or password: %w", domain.ErrBadRequest)
	}
	pair, err := s.IssuePair(u.UserID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u.Sanitized(), pair, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*domain.User, TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	if claims.Kind != jwtinfra.KindRefresh {
		return nil, TokenPair{}, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	u, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	pair, err := s.IssuePair(u.UserID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u.Sanitized(), pair, nil
}

func (s *service) IssuePair(userID int) (TokenPair, error) {
	access, err := s.tokens.Sign(userID, jwtinfra.KindAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.Sign(userID, jwtinfra.KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
