package quiz

import (
	"context"
	"time"

	"github.com/cliplearn/backend/internal/domain"
)

// quizDay is the fixed offset the once-per-day policy is evaluated in.
// Pinning one canonical offset keeps the eligibility window a deterministic
// calendar day regardless of server timezone or DST.
var quizDay = time.FixedZone("UTC+8", 8*60*60)

type attemptStore interface {
	Put(ctx context.Context, a *domain.QuizAttempt) error
	LatestSuccess(ctx context.Context, userID int) (*domain.QuizAttempt, error)
}

type Service interface {
	// IsEligible decides whether a quiz should be appended to this user's
	// next batch: quiz enabled, identity present, and no successful
	// attempt yet today (UTC+8 calendar day).
	IsEligible(ctx context.Context, user *domain.User, settings domain.Settings) (bool, error)
	RecordAttempt(ctx context.Context, userID int, success bool) (*domain.QuizAttempt, error)
}

type service struct {
	attempts attemptStore
	now      func() time.Time
}

func NewService(attempts attemptStore) Service {
	return &service{attempts: attempts, now: time.Now}
}

func (s *service) IsEligible(ctx context.Context, user *domain.User, settings domain.Settings) (bool, error) {
	if !settings.QuizEnabled {
		return false, nil
	}
	if user == nil {
		// Anonymous callers just get a plain batch, not an error.
		return false, nil
	}
	latest, err := s.attempts.LatestSuccess(ctx, user.UserID)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return true, nil
	}
	return !sameDay(latest.AttemptedAt, s.now()), nil
}

func (s *service) RecordAttempt(ctx context.Context, userID int, success bool) (*domain.QuizAttempt, error) {
	a := &domain.QuizAttempt{
		UserID:      userID,
		Success:     success,
		AttemptedAt: s.now().UTC(),
	}
	if err := s.attempts.Put(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(quizDay).Date()
	by, bm, bd := b.In(quizDay).Date()
	return ay == by && am == bm && ad == bd
}
