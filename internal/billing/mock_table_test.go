package billing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/coachden/coachden/internal/store"
)

// fakeTable is the in-memory single table backing the engine tests. It covers
// the store operations the reconciliation path exercises: keyed reads and
// writes, SET update expressions, and the attribute_exists(pk) condition.
type fakeTable struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	nextErrs map[string][]error
}

func newFakeTable() *fakeTable {
	return &fakeTable{
		items:    map[string]map[string]types.AttributeValue{},
		nextErrs: map[string][]error{},
	}
}

func (f *fakeTable) failNext(op string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextErrs[op] = append(f.nextErrs[op], errs...)
}

func (f *fakeTable) popErr(op string) error {
	queue := f.nextErrs[op]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	f.nextErrs[op] = queue[1:]
	return err
}

func (f *fakeTable) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func tableKey(item map[string]types.AttributeValue) string {
	pk := item[store.PartitionKeyAttr].(*types.AttributeValueMemberS).Value
	sk := item[store.SortKeyAttr].(*types.AttributeValueMemberS).Value
	return pk + "|" + sk
}

func copyAttrs(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func (f *fakeTable) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.popErr("PutItem"); err != nil {
		return nil, err
	}
	f.items[tableKey(params.Item)] = copyAttrs(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeTable) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.popErr("GetItem"); err != nil {
		return nil, err
	}
	item, ok := f.items[tableKey(params.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyAttrs(item)}, nil
}

func (f *fakeTable) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.popErr("DeleteItem"); err != nil {
		return nil, err
	}
	delete(f.items, tableKey(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeTable) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.popErr("Query"); err != nil {
		return nil, err
	}

	pk := params.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value
	prefix := params.ExpressionAttributeValues[":prefix"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, item := range f.items {
		itemPK := item[store.PartitionKeyAttr].(*types.AttributeValueMemberS).Value
		itemSK := item[store.SortKeyAttr].(*types.AttributeValueMemberS).Value
		if itemPK == pk && strings.HasPrefix(itemSK, prefix) {
			items = append(items, copyAttrs(item))
		}
	}
	return &dynamodb.QueryOutput{Items: items, Count: int32(len(items))}, nil
}

func (f *fakeTable) UpdateItem(_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.popErr("UpdateItem"); err != nil {
		return nil, err
	}

	key := tableKey(params.Key)
	item, exists := f.items[key]
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_exists(pk)" && !exists {
		msg := "The conditional request failed"
		return nil, &types.ConditionalCheckFailedException{Message: &msg}
	}
	if !exists {
		item = copyAttrs(params.Key)
		f.items[key] = item
	}

	expr := *params.UpdateExpression
	if !strings.HasPrefix(expr, "SET ") {
		return nil, fmt.Errorf("fakeTable: unsupported expression %q", expr)
	}
	for _, clause := range strings.Split(strings.TrimPrefix(expr, "SET "), ", ") {
		parts := strings.Split(clause, " = ")
		if len(parts) != 2 {
			return nil, fmt.Errorf("fakeTable: malformed clause %q", clause)
		}
		attr, ok := params.ExpressionAttributeNames[parts[0]]
		if !ok {
			return nil, fmt.Errorf("fakeTable: unresolved name %q", parts[0])
		}
		val, ok := params.ExpressionAttributeValues[parts[1]]
		if !ok {
			return nil, fmt.Errorf("fakeTable: unresolved value %q", parts[1])
		}
		item[attr] = val
	}
	return &dynamodb.UpdateItemOutput{Attributes: copyAttrs(item)}, nil
}
