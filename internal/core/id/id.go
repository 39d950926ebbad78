// Package id generates the time-ordered identifiers used for record history
// entries.
package id

import (
	"github.com/google/uuid"
)

// ID is a UUID.
type ID = uuid.UUID

// New generates a UUIDv7. History entries sort by it.
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// IsNil checks if ID is zero-value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
