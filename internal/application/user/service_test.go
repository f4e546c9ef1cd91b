package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cliplearn/backend/internal/domain"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID int) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if us, _ := args.Get(0).([]domain.User); us != nil {
		return us, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID int, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) Delete(ctx context.Context, userID int) error {
	return m.Called(ctx, userID).Error(0)
}

type mockIDAllocator struct{ mock.Mock }

func (m *mockIDAllocator) Next(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}

// --- helpers ---

func newSvc(repo *mockUserStore, ids *mockIDAllocator) Service {
	return NewService(repo, ids, "user_id")
}

func validReq() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		Username: "alice_01",
		Email:    "alice@example.com",
		Password: "hunter2abc",
	}
}

func stubFreeIdentity(repo *mockUserStore) {
	repo.On("GetByUsername", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
}

// --- Register tests ---

func TestRegister_Success(t *testing.T) {
	repo, ids := &mockUserStore{}, &mockIDAllocator{}
	stubFreeIdentity(repo)
	ids.On("Next", mock.Anything, "user_id").Return(12, nil)
	repo.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	u, err := newSvc(repo, ids).Register(context.Background(), validReq())

	require.NoError(t, err)
	assert.Equal(t, 12, u.UserID)
	assert.Equal(t, "alice_01", u.Username)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter2abc")))
	assert.False(t, u.CreatedAt.IsZero())
}

func TestRegister_TrimsUsername(t *testing.T) {
	repo, ids := &mockUserStore{}, &mockIDAllocator{}
	stubFreeIdentity(repo)
	ids.On("Next", mock.Anything, "user_id").Return(1, nil)
	repo.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	req := validReq()
	req.Username = "  alice_01  "
	u, err := newSvc(repo, ids).Register(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "alice_01", u.Username)
}

func TestRegister_UsernameValidation(t *testing.T) {
	cases := []struct {
		name     string
		username string
		wantMsg  string
	}{
		{"empty", "", "username is required"},
		{"blank", "   ", "username is required"},
		{"too short", "abc", "username must be 6 to 20 characters"},
		{"too long", "abcdefghijklmnopqrstu", "username must be 6 to 20 characters"},
		{"bad chars", "alice no", "username can contain alphabet, numeric, and _ only"},
		{"hyphen", "alice-01", "username can contain alphabet, numeric, and _ only"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validReq()
			req.Username = tc.username

			_, err := newSvc(&mockUserStore{}, &mockIDAllocator{}).Register(context.Background(), req)

			require.ErrorIs(t, err, domain.ErrBadRequest)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("GetByUsername", mock.Anything, "alice_01").Return(&domain.User{UserID: 3}, nil)

	_, err := newSvc(repo, &mockIDAllocator{}).Register(context.Background(), validReq())

	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "username is already taken")
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("GetByUsername", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	repo.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{UserID: 3}, nil)

	_, err := newSvc(repo, &mockIDAllocator{}).Register(context.Background(), validReq())

	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "email address is already taken")
}

func TestRegister_PasswordPolicy(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantMsg  string
	}{
		{"too short", "ab1", "at least 8 characters"},
		{"no digit", "abcdefgh", "at least one number and one alphabetic"},
		{"no letter", "12345678", "at least one number and one alphabetic"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockUserStore{}
			stubFreeIdentity(repo)
			req := validReq()
			req.Password = tc.password

			_, err := newSvc(repo, &mockIDAllocator{}).Register(context.Background(), req)

			require.ErrorIs(t, err, domain.ErrBadRequest)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

// --- List/Get tests ---

func TestList_StripsPasswordHashes(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("List", mock.Anything).Return([]domain.User{
		{UserID: 1, PasswordHash: "h1"},
		{UserID: 2, PasswordHash: "h2"},
	}, nil)

	users, err := newSvc(repo, &mockIDAllocator{}).List(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}
}

func TestGet_Sanitizes(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("Get", mock.Anything, 5).Return(&domain.User{UserID: 5, PasswordHash: "h"}, nil)

	u, err := newSvc(repo, &mockIDAllocator{}).Get(context.Background(), 5)

	require.NoError(t, err)
	assert.Empty(t, u.PasswordHash)
}

// --- Update tests ---

func TestUpdate_InvalidRole(t *testing.T) {
	role := "superuser"

	_, err := newSvc(&mockUserStore{}, &mockIDAllocator{}).Update(context.Background(), 5, domain.UpdateUserRequest{Role: &role})

	require.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUpdate_AppliesFields(t *testing.T) {
	repo := &mockUserStore{}
	username, role := "bobby_99", domain.RoleAdmin
	repo.On("Update", mock.Anything, 5, map[string]interface{}{
		"username": "bobby_99",
		"role":     domain.RoleAdmin,
	}).Return(nil)
	repo.On("Get", mock.Anything, 5).Return(&domain.User{UserID: 5, Username: "bobby_99", Role: role}, nil)

	u, err := newSvc(repo, &mockIDAllocator{}).Update(context.Background(), 5, domain.UpdateUserRequest{
		Username: &username,
		Role:     &role,
	})

	require.NoError(t, err)
	assert.Equal(t, "bobby_99", u.Username)
	repo.AssertExpectations(t)
}

func TestUpdate_NoFieldsIsRead(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("Get", mock.Anything, 5).Return(&domain.User{UserID: 5}, nil)

	_, err := newSvc(repo, &mockIDAllocator{}).Update(context.Background(), 5, domain.UpdateUserRequest{})

	require.NoError(t, err)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// --- Delete tests ---

func TestDelete_RefusesSelf(t *testing.T) {
	repo := &mockUserStore{}

	err := newSvc(repo, &mockIDAllocator{}).Delete(context.Background(), 5, 5)

	require.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Contains(t, err.Error(), "operation not allowed")
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDelete_OtherUser(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("Delete", mock.Anything, 5).Return(nil)

	err := newSvc(repo, &mockIDAllocator{}).Delete(context.Background(), 5, 1)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

// --- UpdateSelf tests ---

func TestUpdateSelf_RejectsBadUsername(t *testing.T) {
	bad := "no spaces"

	_, err := newSvc(&mockUserStore{}, &mockIDAllocator{}).UpdateSelf(context.Background(), 5, UpdateSelfRequest{Username: &bad})

	require.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUpdateSelf_HashesNewPassword(t *testing.T) {
	repo := &mockUserStore{}
	password := "newpass99"
	repo.On("Update", mock.Anything, 5, mock.MatchedBy(func(updates map[string]interface{}) bool {
		hash, ok := updates["password_hash"].(string)
		return ok && bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	})).Return(nil)
	repo.On("Get", mock.Anything, 5).Return(&domain.User{UserID: 5}, nil)

	_, err := newSvc(repo, &mockIDAllocator{}).UpdateSelf(context.Background(), 5, UpdateSelfRequest{Password: &password})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateSelf_RejectsWeakPassword(t *testing.T) {
	weak := "short1"

	_, err := newSvc(&mockUserStore{}, &mockIDAllocator{}).UpdateSelf(context.Background(), 5, UpdateSelfRequest{Password: &weak})

	require.ErrorIs(t, err, domain.ErrBadRequest)
}
