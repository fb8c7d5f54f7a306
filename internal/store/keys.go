// Package store implements the single-table document layer: key encoding,
// partial-update construction, and the generic entity store that performs all
// DynamoDB I/O.
package store

import (
	"fmt"
	"strings"
)

// Kind discriminates which repository a record belongs to. It is encoded in
// the sort-key prefix of every item.
type Kind string

const (
	KindUser         Kind = "USER"
	KindMember       Kind = "MEMBER"
	KindBilling      Kind = "BILLING"
	KindVideo        Kind = "VIDEO"
	KindChallenge    Kind = "CHALLENGE"
	KindLive         Kind = "LIVE"
	KindLocation     Kind = "LOCATION"
	KindLink         Kind = "LINK"
	KindLandingPage  Kind = "LANDING"
	KindPayment      Kind = "PAYMENT"
	KindCategory     Kind = "CATEGORY"
	KindSubscription Kind = "SUBSCRIPTION"
)

const (
	// PartitionKeyAttr is the partition key attribute name on the table.
	PartitionKeyAttr = "pk"

	// SortKeyAttr is the sort key attribute name on the table.
	SortKeyAttr = "sk"

	// KindAttr mirrors the sort-key prefix as a plain attribute for debugging.
	KindAttr = "entity_kind"

	ownerPrefix = "OWNER#"
)

// keySpec describes how a kind maps onto the composite key.
type keySpec struct {
	// singleton kinds keep exactly one record per owner; the owner identity
	// doubles as the instance id in the sort key.
	singleton bool

	// businessKeyed kinds are addressed by a cross-cutting business key (a
	// provider subscription id, a connected-account id) instead of an owning
	// collection. Their partition key repeats the kind-prefixed key.
	businessKeyed bool
}

var kindSpecs = map[Kind]keySpec{
	KindUser:         {singleton: true},
	KindMember:       {},
	KindBilling:      {businessKeyed: true},
	KindVideo:        {},
	KindChallenge:    {},
	KindLive:         {},
	KindLocation:     {},
	KindLink:         {},
	KindLandingPage:  {},
	KindPayment:      {},
	KindCategory:     {},
	KindSubscription: {businessKeyed: true},
}

// Address is the physical location of a record.
type Address struct {
	PK string
	SK string
}

// PrefixOf returns the fixed sort-key prefix for a kind, used for range
// queries over all instances of the kind under one owner.
func PrefixOf(kind Kind) string {
	return string(kind) + "#"
}

// AddressOf derives the composite key for (kind, owner, id). It is pure and
// injective across distinct triples: owners and ids are opaque segments, and
// no registered kind prefix is a prefix of another.
func AddressOf(kind Kind, owner, id string) (Address, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return Address{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if owner == "" {
		return Address{}, fmt.Errorf("%w: empty owner for kind %s", ErrWriteConflict, kind)
	}

	if spec.businessKeyed {
		// The business key is the instance id; owner identity travels in the
		// record body, not the key.
		if id == "" {
			return Address{}, fmt.Errorf("%w: empty business key for kind %s", ErrWriteConflict, kind)
		}
		key := PrefixOf(kind) + id
		return Address{PK: key, SK: key}, nil
	}

	if spec.singleton {
		id = owner
	}
	if id == "" {
		return Address{}, fmt.Errorf("%w: empty id for kind %s", ErrWriteConflict, kind)
	}

	return Address{
		PK: ownerPrefix + owner,
		SK: PrefixOf(kind) + id,
	}, nil
}

// KindOf reports which kind a sort key belongs to. It fails with
// ErrUnknownKind when the prefix matches no registered kind; callers decide
// whether to skip the item or hard-fail.
func KindOf(sortKey string) (Kind, error) {
	for kind := range kindSpecs {
		if strings.HasPrefix(sortKey, PrefixOf(kind)) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: sort key %q", ErrUnknownKind, sortKey)
}

// ownerScoped reports whether a kind lives under an OWNER# partition and thus
// supports prefix queries.
func ownerScoped(kind Kind) bool {
	return !kindSpecs[kind].businessKeyed
}
