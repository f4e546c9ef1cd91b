package domain

import "time"

type Clip struct {
	ClipID               int       `json:"clip_id" dynamodbav:"clip_id"`
	DescriptionPrimary   string    `json:"description_primary" dynamodbav:"description_primary"`
	DescriptionSecondary string    `json:"description_secondary" dynamodbav:"description_secondary"`
	VideoURL             string    `json:"video_url" dynamodbav:"video_url"`
	ThumbnailURL         string    `json:"thumbnail_url" dynamodbav:"thumbnail_url"`
	AddedBy              int       `json:"added_by" dynamodbav:"added_by"`
	CreatedAt            time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt            time.Time `json:"updated" dynamodbav:"updated_at"`
}

// QuizOption is one of the four answer choices attached to a quiz item.
// Ephemeral: built per request, never persisted. The correct flag rides
// along in the payload — that is the observed client contract.
type QuizOption struct {
	DescriptionPrimary string `json:"description_primary"`
	Correct            bool   `json:"correct"`
}

// BatchItem is one element of a random-batch response: a clip, plus quiz
// fields on the single synthetic item appended when the caller is eligible.
type BatchItem struct {
	Clip
	Quiz    bool         `json:"quiz,omitempty"`
	Options []QuizOption `json:"options,omitempty"`
}

type UpdateClipRequest struct {
	DescriptionPrimary   *string `json:"description_primary"`
	DescriptionSecondary *string `json:"description_secondary"`
}
