package utils

import (
	"github.com/google/uuid"
)

// NewID returns a random (v4) identifier.
func NewID() string {
	return uuid.NewString()
}

// NewOrderedID returns a time-ordered (v7) identifier. It falls back to a
// random identifier if the v7 generator fails.
func NewOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
