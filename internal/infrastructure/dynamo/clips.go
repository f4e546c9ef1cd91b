package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cliplearn/backend/internal/domain"
)

// ClipRepo provides typed DynamoDB operations for the clips table.
type ClipRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewClipRepo(client *dynamodb.Client, tableName string) *ClipRepo {
	return &ClipRepo{client: client, tableName: tableName}
}

func (r *ClipRepo) Put(ctx context.Context, c *domain.Clip) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal clip: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ClipRepo) Get(ctx context.Context, clipID int) (*domain.Clip, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       numKey("clip_id", clipID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("clip %d: %w", clipID, domain.ErrNotFound)
	}
	var c domain.Clip
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// List scans all clips. The content library is small (hand-curated by
// admins), so the feed and the admin list both work off a full scan.
func (r *ClipRepo) List(ctx context.Context) ([]domain.Clip, error) {
	var clips []domain.Clip
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Clip
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		clips = append(clips, page...)
		if out.LastEvaluatedKey == nil {
			return clips, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// Sample draws up to n clips uniformly at random from all clips whose id is
// not in exclude. The draw is fresh per call — no caching, no bias toward
// low ids. Returns fewer than n items when not enough clips remain; the
// caller decides whether that is an error.
func (r *ClipRepo) Sample(ctx context.Context, exclude []int, n int) ([]domain.Clip, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	excluded := make(map[int]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	pool := all[:0]
	for _, c := range all {
		if _, skip := excluded[c.ClipID]; !skip {
			pool = append(pool, c)
		}
	}
	if len(pool) <= n {
		rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		return pool, nil
	}
	picked := make([]domain.Clip, 0, n)
	for _, i := range rand.Perm(len(pool))[:n] {
		picked = append(picked, pool[i])
	}
	return picked, nil
}

func (r *ClipRepo) Update(ctx context.Context, clipID int, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       numKey("clip_id", clipID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(clip_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("clip %d: %w", clipID, domain.ErrNotFound)
		}
		return err
	}
	return nil
}

// Delete removes the clip record and returns the deleted clip so the caller
// can clean up its stored media. Returns ErrNotFound when no such clip existed.
func (r *ClipRepo) Delete(ctx context.Context, clipID int) (*domain.Clip, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          numKey("clip_id", clipID),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, err
	}
	if out.Attributes == nil {
		return nil, fmt.Errorf("clip %d: %w", clipID, domain.ErrNotFound)
	}
	var c domain.Clip
	if err := attributevalue.UnmarshalMap(out.Attributes, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
