package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidEntity     = errors.New("invalid entity")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("access forbidden")
	ErrUnauthenticated   = errors.New("not authenticated")
	ErrDuplicateEmail    = errors.New("email already taken")
	ErrDuplicateRole     = errors.New("role already exists")
	ErrAlreadyInRole     = errors.New("user already in role")
	ErrInvalidInput      = errors.New("invalid input")
)

// StorageError reports an I/O failure at the database boundary.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// CommitError reports that a unit of work could not be committed. Nothing
// staged in that unit of work became durable.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("error committing transaction: %v", e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
