package conversation

import (
	"errors"
	"fmt"
)

// StorageErrorKind classifies storage failures.
type StorageErrorKind string

const (
	// NotFound means the key does not exist in the backing medium.
	NotFound StorageErrorKind = "not_found"
	// IOFailure means the backing medium failed: network, disk, permissions,
	// or a corrupt record that cannot be decoded.
	IOFailure StorageErrorKind = "io_failure"
)

// StorageError is the error type returned by every Store backend.
type StorageError struct {
	Kind StorageErrorKind
	Key  string // the storage key the operation targeted
	Err  error  // underlying cause, nil for plain not-found
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conversation storage %s: %s: %v", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("conversation storage %s: %s", e.Kind, e.Key)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewNotFound builds a NotFound error for the given key.
func NewNotFound(key string) *StorageError {
	return &StorageError{Kind: NotFound, Key: key}
}

// NewIOFailure wraps an underlying IO error for the given key.
func NewIOFailure(key string, err error) *StorageError {
	return &StorageError{Kind: IOFailure, Key: key, Err: err}
}

// IsNotFound reports whether err is a NotFound storage error.
func IsNotFound(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr) && storageErr.Kind == NotFound
}

// IsIOFailure reports whether err is an IOFailure storage error.
func IsIOFailure(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr) && storageErr.Kind == IOFailure
}
