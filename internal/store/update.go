package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Field names one attribute to change in a partial update.
type Field struct {
	Name  string
	Value interface{}
}

// UpdateDescription is the fully built partial-update operation: the address,
// a SET expression with placeholder names/values, and the timestamp the store
// stamps into updated_at. It is pure data; EntityStore performs the mutation.
type UpdateDescription struct {
	Address    Address
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
	Timestamp  time.Time
}

// managed attributes are owned by the store and can never be assigned by a
// caller-supplied field list.
var managedAttrs = map[string]bool{
	PartitionKeyAttr: true,
	SortKeyAttr:      true,
	KindAttr:         true,
	"created_at":     true,
	"updated_at":     true,
}

// BuildPartialUpdate produces the update operation for the named fields plus
// an always-appended updated_at assignment. Managed attributes in the field
// list are dropped; if nothing assignable remains, ErrNoFieldsSpecified is
// returned. Field legality beyond that is a repository concern: the table is
// schemaless, so unknown names are passed through untouched.
func BuildPartialUpdate(addr Address, fields []Field, now time.Time) (*UpdateDescription, error) {
	names := map[string]string{
		"#updated_at": "updated_at",
	}
	values := map[string]types.AttributeValue{}

	var setClauses []string
	i := 0
	for _, f := range fields {
		if managedAttrs[f.Name] {
			continue
		}
		av, err := attributevalue.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", f.Name, err)
		}
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		names[nameKey] = f.Name
		values[valueKey] = av
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
		i++
	}

	if len(setClauses) == 0 {
		return nil, ErrNoFieldsSpecified
	}

	values[":updated_at"] = &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)}
	setClauses = append(setClauses, "#updated_at = :updated_at")

	return &UpdateDescription{
		Address:    addr,
		Expression: "SET " + strings.Join(setClauses, ", "),
		Names:      names,
		Values:     values,
		Timestamp:  now,
	}, nil
}
