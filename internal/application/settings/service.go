package settings

import (
	"context"
	"fmt"

	"github.com/cliplearn/backend/internal/domain"
	"github.com/cliplearn/backend/internal/infrastructure/dynamo"
)

type settingsStore interface {
	Get(ctx context.Context) (*dynamo.StoredSettings, error)
	Put(ctx context.Context, s domain.Settings) error
}

type Service interface {
	// Fetch returns the effective settings: defaults with any persisted
	// values merged over them, key by key.
	Fetch(ctx context.Context) (domain.Settings, error)
	Update(ctx context.Context, req UpdateRequest) (domain.Settings, error)
}

type UpdateRequest struct {
	QuizEnabled     bool `json:"quiz_enabled"`
	ClipsBeforeQuiz int  `json:"clips_before_quiz"`
}

type service struct {
	repo settingsStore
}

func NewService(repo settingsStore) Service {
	return &service{repo: repo}
}

func (s *service) Fetch(ctx context.Context) (domain.Settings, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	merged := domain.DefaultSettings()
	if stored == nil {
		return merged, nil
	}
	if stored.QuizEnabled != nil {
		merged.QuizEnabled = *stored.QuizEnabled
	}
	if stored.ClipsBeforeQuiz != nil {
		merged.ClipsBeforeQuiz = *stored.ClipsBeforeQuiz
	}
	return merged, nil
}

func (s *service) Update(ctx context.Context, req UpdateRequest) (domain.Settings, error) {
	if req.ClipsBeforeQuiz < 2 || req.ClipsBeforeQuiz > 20 {
		return domain.Settings{}, fmt.Errorf("invalid clips_before_quiz: %w", domain.ErrBadRequest)
	}
	next := domain.Settings{
		QuizEnabled:     req.QuizEnabled,
		ClipsBeforeQuiz: req.ClipsBeforeQuiz,
	}
	if err := s.repo.Put(ctx, next); err != nil {
		return domain.Settings{}, err
	}
	return next, nil
}
