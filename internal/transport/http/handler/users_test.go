package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cliplearn/backend/internal/application/auth"
	userapp "github.com/cliplearn/backend/internal/application/user"
	"github.com/cliplearn/backend/internal/domain"
	jwtinfra "github.com/cliplearn/backend/internal/infrastructure/jwt"
)

// --- mocks ---

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserSvc) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if us, _ := args.Get(0).([]domain.User); us != nil {
		return us, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserSvc) Get(ctx context.Context, userID int) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserSvc) Update(ctx context.Context, userID int, req domain.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserSvc) Delete(ctx context.Context, userID, actorID int) error {
	return m.Called(ctx, userID, actorID).Error(0)
}
func (m *mockUserSvc) UpdateSelf(ctx context.Context, userID int, req userapp.UpdateSelfRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserSvc) DeleteSelf(ctx context.Context, userID int) error {
	return m.Called(ctx, userID).Error(0)
}

// --- helpers ---

func adminGate(t *testing.T) (*auth.Gate, string) {
	t.Helper()
	tp := testTokenProvider(t)
	tok, err := tp.Sign(1, jwtinfra.KindAccess)
	require.NoError(t, err)
	users := &mockUserLookup{}
	users.On("Get", mock.Anything, 1).Return(&domain.User{UserID: 1, Role: domain.RoleAdmin}, nil)
	return auth.NewGate(tp, users), "Bearer " + tok
}

func userGate(t *testing.T) (*auth.Gate, string) {
	t.Helper()
	tp := testTokenProvider(t)
	tok, err := tp.Sign(7, jwtinfra.KindAccess)
	require.NoError(t, err)
	users := &mockUserLookup{}
	users.On("Get", mock.Anything, 7).Return(&domain.User{UserID: 7, Role: domain.RoleUser}, nil)
	return auth.NewGate(tp, users), "Bearer " + tok
}

func withURLParam(r *http.Request, name, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(name, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// --- Register ---

func TestRegisterHandler_Success(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Register", mock.Anything, domain.CreateUserRequest{
		Username: "alice_01", Password: "hunter2abc", Email: "alice@example.com",
	}).Return(&domain.User{UserID: 12, Email: "alice@example.com", Role: domain.RoleUser, PasswordHash: "h"}, nil)

	authSvc := &mockAuthSvc{}
	authSvc.On("IssuePair", 12).Return(auth.TokenPair{AccessToken: "acc", RefreshToken: "ref"}, nil)

	gate, _ := userGate(t)
	h := NewUserHandler(svc, authSvc, gate)

	req := httptest.NewRequest(http.MethodPost, "/v1/users", jsonBody(t, map[string]string{
		"username": "alice_01", "password": "hunter2abc", "email": "alice@example.com",
	}))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(12), body["user_id"])
	assert.Equal(t, "acc", body["access_token"])
}

func TestRegisterHandler_MissingFields(t *testing.T) {
	gate, _ := userGate(t)
	h := NewUserHandler(&mockUserSvc{}, &mockAuthSvc{}, gate)

	req := httptest.NewRequest(http.MethodPost, "/v1/users", jsonBody(t, map[string]string{
		"username": "alice_01",
	}))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- admin gating ---

func TestListUsers_RequiresAdmin(t *testing.T) {
	gate, header := userGate(t)
	h := NewUserHandler(&mockUserSvc{}, &mockAuthSvc{}, gate)

	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req.Header.Set("Authorization", header)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User is not an admin")
}

func TestListUsers_NoToken(t *testing.T) {
	gate, _ := adminGate(t)
	h := NewUserHandler(&mockUserSvc{}, &mockAuthSvc{}, gate)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/v1/users", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token not found")
}

func TestListUsers_Admin(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("List", mock.Anything).Return([]domain.User{{UserID: 1}, {UserID: 2}}, nil)
	gate, header := adminGate(t)
	h := NewUserHandler(svc, &mockAuthSvc{}, gate)

	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req.Header.Set("Authorization", header)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteUser_BadParam(t *testing.T) {
	gate, header := adminGate(t)
	h := NewUserHandler(&mockUserSvc{}, &mockAuthSvc{}, gate)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/v1/users/abc", nil), "user_id", "abc")
	req.Header.Set("Authorization", header)
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid user_id param")
}

func TestDeleteUser_PassesActor(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Delete", mock.Anything, 9, 1).Return(nil)
	gate, header := adminGate(t)
	h := NewUserHandler(svc, &mockAuthSvc{}, gate)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/v1/users/9", nil), "user_id", "9")
	req.Header.Set("Authorization", header)
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

// --- self endpoints ---

func TestGetSelf(t *testing.T) {
	gate, header := userGate(t)
	h := NewUserHandler(&mockUserSvc{}, &mockAuthSvc{}, gate)

	req := httptest.NewRequest(http.MethodGet, "/v1/self", nil)
	req.Header.Set("Authorization", header)
	rec := httptest.NewRecorder()
	h.GetSelf(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(7), user["user_id"])
}

func TestDeleteSelf(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("DeleteSelf", mock.Anything, 7).Return(nil)
	gate, header := userGate(t)
	h := NewUserHandler(svc, &mockAuthSvc{}, gate)

	req := httptest.NewRequest(http.MethodDelete, "/v1/self", nil)
	req.Header.Set("Authorization", header)
	rec := httptest.NewRecorder()
	h.DeleteSelf(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
