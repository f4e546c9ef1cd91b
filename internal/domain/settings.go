package domain

// Settings control the quiz behavior of the random clip feed.
type Settings struct {
	QuizEnabled     bool `json:"quiz_enabled" dynamodbav:"quiz_enabled"`
	ClipsBeforeQuiz int  `json:"clips_before_quiz" dynamodbav:"clips_before_quiz"`
}

// DefaultSettings are used when nothing has been persisted yet, and as the
// base that stored values are merged over.
func DefaultSettings() Settings {
	return Settings{QuizEnabled: true, ClipsBeforeQuiz: 5}
}
