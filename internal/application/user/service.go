package user

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cliplearn/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldUsername     = "username"
	fieldEmail        = "email"
	fieldRole         = "role"
	fieldPasswordHash = "password_hash"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{6,20}$`)

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, userID int) (*domain.User, error)
	Update(ctx context.Context, userID int, req domain.UpdateUserRequest) (*domain.User, error)
	// Delete removes a user. actorID is the admin performing the delete;
	// deleting your own account through the admin endpoint is refused.
	Delete(ctx context.Context, userID, actorID int) error
	UpdateSelf(ctx context.Context, userID int, req UpdateSelfRequest) (*domain.User, error)
	DeleteSelf(ctx context.Context, userID int) error
}

type UpdateSelfRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password"`
}

type userStore interface {
	Get(ctx context.Context, userID int) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, userID int, updates map[string]interface{}) error
	Delete(ctx context.Context, userID int) error
}

type idAllocator interface {
	Next(ctx context.Context, name string) (int, error)
}

type service struct {
	repo      userStore
	ids       idAllocator
	idCounter string
}

func NewService(repo userStore, ids idAllocator, idCounter string) Service {
	return &service{repo: repo, ids: ids, idCounter: idCounter}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", domain.ErrBadRequest)
	}
	if len(username) < 6 || len(username) > 20 {
		return nil, fmt.Errorf("username must be 6 to 20 characters: %w", domain.ErrBadRequest)
	}
	if !usernameRe.MatchString(username) {
		return nil, fmt.Errorf("username can contain alphabet, numeric, and _ only: %w", domain.ErrBadRequest)
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("username is already taken: %w", domain.ErrConflict)
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email address is already taken: %w", domain.ErrConflict)
	}
	if err := checkPassword(req.Password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	userID, err := s.ids.Next(ctx, s.idCounter)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       userID,
		Username:     username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *service) Get(ctx context.Context, userID int) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}

func (s *service) Update(ctx context.Context, userID int, req domain.UpdateUserRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Username != nil {
		updates[fieldUsername] = *req.Username
	}
	if req.Email != nil {
		updates[fieldEmail] = *req.Email
	}
	if req.Role != nil {
		switch *req.Role {
		case domain.RoleAdmin, domain.RoleUser:
			updates[fieldRole] = *req.Role
		default:
			return nil, fmt.Errorf("invalid role: %w", domain.ErrBadRequest)
		}
	}
	return s.applyUpdates(ctx, userID, updates)
}

func (s *service) Delete(ctx context.Context, userID, actorID int) error {
	if userID == actorID {
		return fmt.Errorf("operation not allowed: %w", domain.ErrBadRequest)
	}
	return s.repo.Delete(ctx, userID)
}

func (s *service) UpdateSelf(ctx context.Context, userID int, req UpdateSelfRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if !usernameRe.MatchString(username) {
			return nil, fmt.Errorf("username can contain alphabet, numeric, and _ only: %w", domain.ErrBadRequest)
		}
		updates[fieldUsername] = username
	}
	if req.Email != nil {
		updates[fieldEmail] = *req.Email
	}
	if req.Password != nil {
		if err := checkPassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates[fieldPasswordHash] = string(hash)
	}
	return s.applyUpdates(ctx, userID, updates)
}

func (s *service) DeleteSelf(ctx context.Context, userID int) error {
	return s.repo.Delete(ctx, userID)
}

func (s *service) applyUpdates(ctx context.Context, userID int, updates map[string]interface{}) (*domain.User, error) {
	if len(updates) == 0 {
		return s.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// checkPassword enforces the registration password policy: at least 8
// characters with at least one letter and one digit.
func checkPassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long: %w", domain.ErrBadRequest)
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one number and one alphabetic character: %w", domain.ErrBadRequest)
	}
	return nil
}
