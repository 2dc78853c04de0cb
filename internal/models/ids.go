package models

import "github.com/google/uuid"

// ID is the identifier type shared by every orchestration entity.
type ID = uuid.UUID

// NewID generates a fresh random identifier for a new entity.
func NewID() ID {
	return uuid.New()
}

// ParseID parses a string-form UUID into an ID, returning an error if it
// isn't well-formed.
func ParseID(s string) (ID, error) {
	return uuid.Parse(s)
}
