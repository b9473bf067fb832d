// Package ids generates identifiers for people and ideas.
package ids

import "github.com/google/uuid"

// Generator produces identifiers that are unique for the lifetime of the data.
type Generator interface {
	NewID() string
}

// UUID generates random (version 4) UUID strings.
type UUID struct{}

// NewID returns a new random UUID string.
func (UUID) NewID() string {
	return uuid.New().String()
}

// Func adapts an ordinary function to the Generator interface.
type Func func() string

// NewID calls f.
func (f Func) NewID() string {
	return f()
}
