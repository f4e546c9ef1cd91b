package domain

import "time"

// QuizAttempt is an append-only record of one answered quiz.
type QuizAttempt struct {
	UserID      int       `json:"user_id" dynamodbav:"user_id"`
	Success     bool      `json:"success" dynamodbav:"success"`
	AttemptedAt time.Time `json:"attempted_at" dynamodbav:"attempted_at"`
}
