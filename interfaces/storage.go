package interfaces

import (
	"context"
	"errors"
)

var (
	// ErrRecordNotFound is returned when no record exists at the given locator.
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordExists is returned by Insert when a record already exists at
	// the given locator. Insert is atomic per key: either the record becomes
	// visible, or the insert fails with this error because another writer
	// got there first.
	ErrRecordExists = errors.New("record already exists")

	// ErrStoreUnavailable is returned when a key store is not accessible.
	// This could be due to network issues, authentication failures, or
	// service outages.
	ErrStoreUnavailable = errors.New("key store unavailable")

	// ErrInvalidLocationURI is returned when a key store URI is malformed or
	// unsupported. URIs must follow the format: [scheme]://[host][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid key store location URI")
)

// KeyStore provides namespaced byte-blob persistence for key material.
//
// The store holds at most one record per locator. Records are never updated
// in place: the root identity is written exactly once per deployment and is
// immutable afterwards.
type KeyStore interface {
	// Get retrieves the record at the locator.
	// Returns ErrRecordNotFound if absent.
	Get(ctx context.Context, locator RecordLocator) ([]byte, error)

	// Insert writes a record only if none exists at the locator.
	// Returns ErrRecordExists if a record is already present. The check and
	// the write are atomic with respect to concurrent Insert calls on the
	// same locator.
	Insert(ctx context.Context, locator RecordLocator, value []byte) error

	// Available checks if the store is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this store.
	LocationURI() string
}

// KeyStoreFactory creates key stores.
type KeyStoreFactory interface {
	// KeyStoreFor creates a store from a URI.
	// Supports file://, vault://, mem://
	KeyStoreFor(locationURI string) (KeyStore, error)
}
