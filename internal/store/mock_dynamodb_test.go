package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory single-table DynamoDB used by the store tests.
// It honors the narrow slice of the API the store relies on: composite-key
// reads and writes, begins_with queries in insertion order, SET update
// expressions, and the attribute_exists(pk) condition.
type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	order []string

	// nextErrs holds errors injected per operation name; each is consumed
	// by the next matching call.
	nextErrs map[string][]error

	calls map[string]int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		items:    map[string]map[string]types.AttributeValue{},
		nextErrs: map[string][]error{},
		calls:    map[string]int{},
	}
}

func (f *fakeDynamo) failNext(op string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextErrs[op] = append(f.nextErrs[op], errs...)
}

func (f *fakeDynamo) popErr(op string) error {
	f.calls[op]++
	queue := f.nextErrs[op]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	f.nextErrs[op] = queue[1:]
	return err
}

func itemKey(item map[string]types.AttributeValue) string {
	pk := item[PartitionKeyAttr].(*types.AttributeValueMemberS).Value
	sk := item[SortKeyAttr].(*types.AttributeValueMemberS).Value
	return pk + "|" + sk
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func (f *fakeDynamo) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.popErr("PutItem"); err != nil {
		return nil, err
	}

	key := itemKey(params.Item)
	if _, exists := f.items[key]; !exists {
		f.order = append(f.order, key)
	}
	f.items[key] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.popErr("GetItem"); err != nil {
		return nil, err
	}

	item, ok := f.items[itemKey(params.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.popErr("DeleteItem"); err != nil {
		return nil, err
	}

	key := itemKey(params.Key)
	delete(f.items, key)
	for i, k := range f.order {
		if k == key {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.popErr("Query"); err != nil {
		return nil, err
	}

	pk := params.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value
	prefix := params.ExpressionAttributeValues[":prefix"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, key := range f.order {
		item := f.items[key]
		itemPK := item[PartitionKeyAttr].(*types.AttributeValueMemberS).Value
		itemSK := item[SortKeyAttr].(*types.AttributeValueMemberS).Value
		if itemPK == pk && strings.HasPrefix(itemSK, prefix) {
			items = append(items, copyItem(item))
		}
	}
	return &dynamodb.QueryOutput{Items: items, Count: int32(len(items))}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.popErr("UpdateItem"); err != nil {
		return nil, err
	}

	key := itemKey(params.Key)
	item, exists := f.items[key]
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_exists(pk)" && !exists {
		return nil, &types.ConditionalCheckFailedException{Message: strPtr("The conditional request failed")}
	}
	if !exists {
		item = copyItem(params.Key)
		f.items[key] = item
		f.order = append(f.order, key)
	}

	if err := applySet(item, *params.UpdateExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues); err != nil {
		return nil, err
	}
	return &dynamodb.UpdateItemOutput{Attributes: copyItem(item)}, nil
}

// applySet evaluates a "SET #a = :x, #b = :y" expression against an item.
func applySet(item map[string]types.AttributeValue, expr string, names map[string]string, values map[string]types.AttributeValue) error {
	if !strings.HasPrefix(expr, "SET ") {
		return fmt.Errorf("fakeDynamo: unsupported expression %q", expr)
	}
	for _, clause := range strings.Split(strings.TrimPrefix(expr, "SET "), ", ") {
		parts := strings.Split(clause, " = ")
		if len(parts) != 2 {
			return fmt.Errorf("fakeDynamo: malformed clause %q", clause)
		}
		attr, ok := names[parts[0]]
		if !ok {
			return fmt.Errorf("fakeDynamo: unresolved name %q", parts[0])
		}
		val, ok := values[parts[1]]
		if !ok {
			return fmt.Errorf("fakeDynamo: unresolved value %q", parts[1])
		}
		item[attr] = val
	}
	return nil
}

func strPtr(s string) *string { return &s }
