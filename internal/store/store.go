package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/coachden/coachden/internal/awsx"
)

// Record is implemented by every entity the store can persist. The store
// derives the physical address from these three values; it never trusts a
// caller-supplied key.
type Record interface {
	OwnerIdentity() string
	RecordID() string
	RecordKind() Kind
}

// Store is the generic per-kind CRUD facade over the single physical table.
// It is the only component that performs DynamoDB I/O.
type Store[T Record] struct {
	client  awsx.DynamoDBAPI
	table   string
	kind    Kind
	log     *zap.Logger
	nowFunc func() time.Time

	readAttempts int
	backoffBase  time.Duration
}

// New creates a Store bound to one entity kind.
func New[T Record](client awsx.DynamoDBAPI, table string, kind Kind, log *zap.Logger) *Store[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store[T]{
		client:       client,
		table:        table,
		kind:         kind,
		log:          log.Named("store." + string(kind)),
		nowFunc:      time.Now,
		readAttempts: 3,
		backoffBase:  100 * time.Millisecond,
	}
}

// Put writes the full record, stamping created_at and updated_at. Callers
// cannot supply either timestamp. Write failures are surfaced, never retried,
// so business logic above never double-applies side effects.
func (s *Store[T]) Put(ctx context.Context, entity T) (T, error) {
	var zero T

	if entity.RecordKind() != s.kind {
		return zero, fmt.Errorf("%w: record declares kind %s, store holds %s",
			ErrWriteConflict, entity.RecordKind(), s.kind)
	}

	addr, err := AddressOf(s.kind, entity.OwnerIdentity(), entity.RecordID())
	if err != nil {
		return zero, err
	}

	item, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return zero, fmt.Errorf("marshal %s record: %w", s.kind, err)
	}

	now := s.nowFunc().UTC().Format(time.RFC3339Nano)
	item[PartitionKeyAttr] = &types.AttributeValueMemberS{Value: addr.PK}
	item[SortKeyAttr] = &types.AttributeValueMemberS{Value: addr.SK}
	item[KindAttr] = &types.AttributeValueMemberS{Value: string(s.kind)}
	item["created_at"] = &types.AttributeValueMemberS{Value: now}
	item["updated_at"] = &types.AttributeValueMemberS{Value: now}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: sdkaws.String(s.table),
		Item:      item,
	}); err != nil {
		return zero, fmt.Errorf("put %s %s: %w", s.kind, addr.SK, err)
	}

	var out T
	if err := attributevalue.UnmarshalMap(item, &out); err != nil {
		return zero, fmt.Errorf("unmarshal %s record: %w", s.kind, err)
	}
	return out, nil
}

// GetOne fetches the record at (kind, owner, id), retrying transient faults.
func (s *Store[T]) GetOne(ctx context.Context, owner, id string) (T, error) {
	var zero T

	addr, err := AddressOf(s.kind, owner, id)
	if err != nil {
		return zero, err
	}

	var out *dynamodb.GetItemOutput
	err = s.withReadRetries(ctx, func() error {
		var getErr error
		out, getErr = s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: sdkaws.String(s.table),
			Key:       addr.key(),
		})
		return getErr
	})
	if err != nil {
		return zero, err
	}
	if len(out.Item) == 0 {
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, s.kind, addr.SK)
	}

	var entity T
	if err := attributevalue.UnmarshalMap(out.Item, &entity); err != nil {
		return zero, fmt.Errorf("unmarshal %s record: %w", s.kind, err)
	}
	return entity, nil
}

// QueryOption adjusts a GetByPrefix call.
type QueryOption[T Record] func(*queryOptions[T])

type queryOptions[T Record] struct {
	less func(a, b T) bool
}

// WithSort requests an in-layer sort of the results. The table has no
// secondary index, so any ordering other than insertion time happens here.
func WithSort[T Record](less func(a, b T) bool) QueryOption[T] {
	return func(o *queryOptions[T]) { o.less = less }
}

// GetByPrefix returns every record of the store's kind under one owner, in
// insertion order unless a sort option is given. The query is restartable: a
// transient fault re-runs it from the beginning.
func (s *Store[T]) GetByPrefix(ctx context.Context, owner string, opts ...QueryOption[T]) ([]T, error) {
	if !ownerScoped(s.kind) {
		return nil, fmt.Errorf("%w: kind %s is business-keyed, not owner-scoped", ErrWriteConflict, s.kind)
	}
	if owner == "" {
		return nil, fmt.Errorf("%w: empty owner", ErrWriteConflict)
	}

	var options queryOptions[T]
	for _, o := range opts {
		o(&options)
	}

	// Only the I/O is retried; decoding happens after the query succeeds so
	// a bad item surfaces as a decode error, not as a transient fault.
	var items []map[string]types.AttributeValue
	err := s.withReadRetries(ctx, func() error {
		items = items[:0]

		paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
			TableName:              sdkaws.String(s.table),
			KeyConditionExpression: sdkaws.String("pk = :pk AND begins_with(sk, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":     &types.AttributeValueMemberS{Value: ownerPrefix + owner},
				":prefix": &types.AttributeValueMemberS{Value: PrefixOf(s.kind)},
			},
		})

		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return err
			}
			items = append(items, page.Items...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]T, 0, len(items))
	for _, raw := range items {
		var entity T
		if err := attributevalue.UnmarshalMap(raw, &entity); err != nil {
			return nil, fmt.Errorf("unmarshal %s record: %w", s.kind, err)
		}
		results = append(results, entity)
	}

	if options.less != nil {
		sort.SliceStable(results, func(i, j int) bool { return options.less(results[i], results[j]) })
	}
	return results, nil
}

// Update applies exactly the named fields (plus updated_at) in one atomic
// UpdateItem call. There is no upsert: a missing address is ErrNotFound.
// Never retried.
func (s *Store[T]) Update(ctx context.Context, owner, id string, fields ...Field) (T, error) {
	var zero T

	addr, err := AddressOf(s.kind, owner, id)
	if err != nil {
		return zero, err
	}

	desc, err := BuildPartialUpdate(addr, fields, s.nowFunc().UTC())
	if err != nil {
		return zero, err
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 sdkaws.String(s.table),
		Key:                       addr.key(),
		UpdateExpression:          sdkaws.String(desc.Expression),
		ConditionExpression:       sdkaws.String("attribute_exists(pk)"),
		ExpressionAttributeNames:  desc.Names,
		ExpressionAttributeValues: desc.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return zero, fmt.Errorf("%w: %s %s", ErrNotFound, s.kind, addr.SK)
		}
		return zero, fmt.Errorf("update %s %s: %w", s.kind, addr.SK, err)
	}

	var entity T
	if err := attributevalue.UnmarshalMap(out.Attributes, &entity); err != nil {
		return zero, fmt.Errorf("unmarshal %s record: %w", s.kind, err)
	}
	return entity, nil
}

// Delete removes the record at (owner, id). Deleting an absent address
// succeeds silently. Never retried.
func (s *Store[T]) Delete(ctx context.Context, owner, id string) error {
	addr, err := AddressOf(s.kind, owner, id)
	if err != nil {
		return err
	}

	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: sdkaws.String(s.table),
		Key:       addr.key(),
	}); err != nil {
		return fmt.Errorf("delete %s %s: %w", s.kind, addr.SK, err)
	}
	return nil
}

func (a Address) key() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		PartitionKeyAttr: &types.AttributeValueMemberS{Value: a.PK},
		SortKeyAttr:      &types.AttributeValueMemberS{Value: a.SK},
	}
}
