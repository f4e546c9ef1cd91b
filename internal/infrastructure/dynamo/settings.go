package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/cliplearn/backend/internal/domain"
)

// The settings table holds one well-known item.
const settingsItemID = "global"

// StoredSettings is the persisted shape. Fields are pointers so a partial
// item (written before a settings key existed) merges cleanly over defaults.
type StoredSettings struct {
	SettingsID      string `dynamodbav:"settings_id"`
	QuizEnabled     *bool  `dynamodbav:"quiz_enabled"`
	ClipsBeforeQuiz *int   `dynamodbav:"clips_before_quiz"`
}

// SettingsRepo provides DynamoDB operations for the single settings item.
type SettingsRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSettingsRepo(client *dynamodb.Client, tableName string) *SettingsRepo {
	return &SettingsRepo{client: client, tableName: tableName}
}

// Get returns the stored settings item, or nil when nothing has been
// persisted yet.
func (r *SettingsRepo) Get(ctx context.Context) (*StoredSettings, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("settings_id", settingsItemID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, nil
	}
	var s StoredSettings
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepo) Put(ctx context.Context, s domain.Settings) error {
	item, err := attributevalue.MarshalMap(StoredSettings{
		SettingsID:      settingsItemID,
		QuizEnabled:     &s.QuizEnabled,
		ClipsBeforeQuiz: &s.ClipsBeforeQuiz,
	})
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}
