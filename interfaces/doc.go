// Package interfaces defines core interfaces and types for the cloud secure
// area service, separating interface definitions from implementations.
//
// The package provides the contracts between the key components of the system:
//
// # Storage Interfaces
//
// KeyStore: Namespaced byte-blob persistence with get and insert-if-absent
// semantics. The root key material record lives under a fixed
// namespace/partition/key triple, and the insert operation is atomic per
// key so that concurrent bootstraps elect exactly one winner.
//
// KeyStoreFactory: Creates key stores from URI strings
// (file://, vault://, mem://).
//
// # Command Processing Interfaces
//
// CommandProcessor: The delegated secure-area protocol engine. It receives
// raw command bytes plus the caller's identity and returns a status code and
// response bytes. The engine itself is an external collaborator; this
// package only defines the contract and the configuration handed to it.
//
// # Type Definitions
//
//   - RecordLocator: namespace/partition/key address of a persisted record
//   - SignatureAlgorithm: identifier for certificate signing algorithms
//   - CallerIdentity: network origin of a command request
//   - ProcessorPolicy / LockoutPolicy: operational policy for the delegate
//
// # Error Types
//
// Standard errors returned by storage operations:
//
//   - ErrRecordNotFound: no record exists at the given locator
//   - ErrRecordExists: insert lost to a concurrent or earlier writer
//   - ErrStoreUnavailable: transient infrastructure fault
//   - ErrInvalidLocationURI: malformed or unsupported store URI
package interfaces
