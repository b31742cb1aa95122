// Package sentinel holds the errors the storage layer reports as plain
// infrastructure facts. Stores return these (optionally wrapped); services
// translate them into coded domain errors at the boundary, so the two error
// vocabularies never mix.
package sentinel

import "errors"

var (
	// ErrNotFound: the entity does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrConflict: the write lost against a concurrent update or a
	// uniqueness rule.
	ErrConflict = errors.New("conflict")
)
