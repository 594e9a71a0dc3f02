package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo understands just the expressions DynamoStore sends.
type fakeDynamo struct {
	mu          sync.Mutex
	items       map[string]map[string]types.AttributeValue
	updateCalls int
	putCalls    int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func keyOf(m map[string]types.AttributeValue) (string, error) {
	v, ok := m["counter_key"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing counter_key")
	}
	return v.Value, nil
}

func numOf(v types.AttributeValue) int64 {
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	i, _ := strconv.ParseInt(n.Value, 10, 64)
	return i
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, err := keyOf(in.Key)
	if err != nil {
		return nil, err
	}
	item, ok := f.items[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	k, err := keyOf(in.Item)
	if err != nil {
		return nil, err
	}
	f.items[k] = in.Item
	return &dyn.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, in *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	k, err := keyOf(in.Key)
	if err != nil {
		return nil, err
	}
	now := numOf(in.ExpressionAttributeValues[":now"])
	item, ok := f.items[k]
	if ok {
		if exp, has := item["expires_at"]; has && numOf(exp) <= now {
			return nil, &types.ConditionalCheckFailedException{}
		}
	} else {
		item = map[string]types.AttributeValue{
			"counter_key": &types.AttributeValueMemberS{Value: k},
		}
	}
	count := numOf(item["count"]) + numOf(in.ExpressionAttributeValues[":one"])
	item["count"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(count, 10)}
	if _, has := item["expires_at"]; !has {
		item["expires_at"] = in.ExpressionAttributeValues[":exp"]
	}
	f.items[k] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, err := keyOf(in.Key)
	if err != nil {
		return nil, err
	}
	delete(f.items, k)
	return &dyn.DeleteItemOutput{}, nil
}
