package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cliplearn/backend/internal/application/auth"
	"github.com/cliplearn/backend/internal/config"
	"github.com/cliplearn/backend/internal/domain"
	jwtinfra "github.com/cliplearn/backend/internal/infrastructure/jwt"
)

// --- mocks ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Login(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*domain.User)
	pair, _ := args.Get(1).(auth.TokenPair)
	return u, pair, args.Error(2)
}
func (m *mockAuthSvc) Refresh(ctx context.Context, refreshToken string) (*domain.User, auth.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	u, _ := args.Get(0).(*domain.User)
	pair, _ := args.Get(1).(auth.TokenPair)
	return u, pair, args.Error(2)
}
func (m *mockAuthSvc) IssuePair(userID int) (auth.TokenPair, error) {
	args := m.Called(userID)
	pair, _ := args.Get(0).(auth.TokenPair)
	return pair, args.Error(1)
}

type mockUserLookup struct{ mock.Mock }

func (m *mockUserLookup) Get(ctx context.Context, userID int) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserLookup) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func testTokenProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	p, err := jwtinfra.NewProvider(&config.Config{
		JWTSecret:       "handler-test-secret",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, "alice@example.com", "hunter2abc").Return(
		&domain.User{UserID: 7, Email: "alice@example.com", Role: domain.RoleUser},
		auth.TokenPair{AccessToken: "acc", RefreshToken: "ref"},
		nil,
	)
	h := NewSessionHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/login",
		jsonBody(t, map[string]string{"email": "alice@example.com", "password": "hunter2abc"}))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "acc", body["access_token"])
	assert.Equal(t, "ref", body["refresh_token"])
	assert.Equal(t, float64(7), body["user_id"])
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(
		nil, auth.TokenPair{}, fmt.Errorf("incorrect email or password: %w", domain.ErrBadRequest))
	h := NewSessionHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/login",
		jsonBody(t, map[string]string{"email": "alice@example.com", "password": "nope"}))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "incorrect email or password")
}

func TestLogin_MalformedBody(t *testing.T) {
	h := NewSessionHandler(&mockAuthSvc{})

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/login", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Refresh ---

func TestRefresh_Success(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Refresh", mock.Anything, "ref-in").Return(
		&domain.User{UserID: 7}, auth.TokenPair{AccessToken: "acc2", RefreshToken: "ref2"}, nil)
	h := NewSessionHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/refresh",
		jsonBody(t, map[string]string{"refresh_token": "ref-in"}))
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acc2", decodeBody(t, rec)["access_token"])
}

func TestRefresh_MissingToken(t *testing.T) {
	h := NewSessionHandler(&mockAuthSvc{})

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/refresh", jsonBody(t, map[string]string{}))
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Refresh", mock.Anything, "stale").Return(
		nil, auth.TokenPair{}, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized))
	h := NewSessionHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/refresh",
		jsonBody(t, map[string]string{"refresh_token": "stale"}))
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
