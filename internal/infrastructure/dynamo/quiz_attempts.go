package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cliplearn/backend/internal/domain"
)

// QuizAttemptRepo provides typed DynamoDB operations for the quiz_attempts
// table, keyed (user_id, attempted_at) so per-user history sorts by time.
type QuizAttemptRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewQuizAttemptRepo(client *dynamodb.Client, tableName string) *QuizAttemptRepo {
	return &QuizAttemptRepo{client: client, tableName: tableName}
}

func (r *QuizAttemptRepo) Put(ctx context.Context, a *domain.QuizAttempt) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal quiz attempt: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// LatestSuccess returns the most recent successful attempt for the user, or
// nil when the user has never answered correctly. The query walks the
// user's history newest-first; DynamoDB applies Limit before the success
// filter, so pages are consumed until a match or the history is exhausted.
func (r *QuizAttemptRepo) LatestSuccess(ctx context.Context, userID int) (*domain.QuizAttempt, error) {
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    aws.String("user_id = :u"),
			FilterExpression:          aws.String("success = :t"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":u": numKey("user_id", userID)["user_id"],
				":t": &types.AttributeValueMemberBOOL{Value: true},
			},
			ScanIndexForward:  aws.Bool(false),
			Limit:             aws.Int32(25),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		if len(out.Items) > 0 {
			var a domain.QuizAttempt
			if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
				return nil, err
			}
			return &a, nil
		}
		if out.LastEvaluatedKey == nil {
			return nil, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
