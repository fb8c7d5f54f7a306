package store

import "errors"

var (
	// ErrNotFound is returned when no record exists at an address.
	ErrNotFound = errors.New("store: record not found")

	// ErrWriteConflict is returned when a record's declared owner or kind
	// contradicts the key the store would derive for it.
	ErrWriteConflict = errors.New("store: record kind/address conflict")

	// ErrNoFieldsSpecified is returned when a partial update names no fields.
	ErrNoFieldsSpecified = errors.New("store: no fields specified for update")

	// ErrTransientStore is returned after read-path retries are exhausted on
	// a retryable storage fault.
	ErrTransientStore = errors.New("store: transient storage failure")

	// ErrUnknownKind is returned when a sort-key prefix maps to no registered
	// entity kind.
	ErrUnknownKind = errors.New("store: unknown entity kind")
)
