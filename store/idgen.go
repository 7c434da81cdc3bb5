package store

import "github.com/google/uuid"

// IDGenerator supplies fresh globally-unique record ids.
//
// The generator is an external collaborator: the store guards against
// collisions (ErrAlreadyExists) but relies on the generator for uniqueness.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates random (version 4) UUID ids. It is the default.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
