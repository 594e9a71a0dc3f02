package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"storefront-api/awsclient"
)

// counterItem is the shape persisted in the counters table. expires_at is
// also configured as the table's TTL attribute.
type counterItem struct {
	CounterKey string `dynamodbav:"counter_key"` // PK
	Count      int64  `dynamodbav:"count"`
	ExpiresAt  int64  `dynamodbav:"expires_at"` // epoch seconds
}

// DynamoStore shares counters between instances through a DynamoDB table.
// DynamoDB removes expired items lazily, so expiry is also checked on read.
type DynamoStore struct {
	client    awsclient.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

func NewDynamoStore(client awsclient.DynamoDBAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

func (s *DynamoStore) key(k string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"counter_key": &types.AttributeValueMemberS{Value: k},
	}
}

func (s *DynamoStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	now := s.nowFunc()
	nowUnix := strconv.FormatInt(now.Unix(), 10)
	expires := strconv.FormatInt(now.Add(ttl).Unix(), 10)

	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:           &s.tableName,
		Key:                 s.key(key),
		UpdateExpression:    awsString("ADD #c :one SET expires_at = if_not_exists(expires_at, :exp)"),
		ConditionExpression: awsString("attribute_not_exists(expires_at) OR expires_at > :now"),
		ExpressionAttributeNames: map[string]string{
			"#c": "count",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":exp": &types.AttributeValueMemberN{Value: expires},
			":now": &types.AttributeValueMemberN{Value: nowUnix},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err == nil {
		var item counterItem
		if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
			return 0, fmt.Errorf("unmarshal counter: %w", err)
		}
		return item.Count, nil
	}
	if !isConditionFailed(err) {
		return 0, fmt.Errorf("update counter: %w", err)
	}

	// the stored window has expired: start a fresh one
	item, err := attributevalue.MarshalMap(counterItem{
		CounterKey: key,
		Count:      1,
		ExpiresAt:  now.Add(ttl).Unix(),
	})
	if err != nil {
		return 0, fmt.Errorf("marshal counter: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	}); err != nil {
		return 0, fmt.Errorf("put counter: %w", err)
	}
	return 1, nil
}

func (s *DynamoStore) Get(ctx context.Context, key string) (int64, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            s.key(key),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return 0, fmt.Errorf("get counter: %w", err)
	}
	if len(out.Item) == 0 {
		return 0, nil
	}
	var item counterItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return 0, fmt.Errorf("unmarshal counter: %w", err)
	}
	if item.ExpiresAt <= s.nowFunc().Unix() {
		return 0, nil
	}
	return item.Count, nil
}

func (s *DynamoStore) Reset(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key:       s.key(key),
	})
	if err != nil {
		return fmt.Errorf("delete counter: %w", err)
	}
	return nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
