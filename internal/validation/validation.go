// Package validation holds the shared validator used by repositories to check
// entity shapes before they are persisted. The table itself is schemaless;
// this is the only place field legality is enforced.
package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator for entity structs.
func New() *validatorv10.Validate {
	return validatorv10.New()
}
