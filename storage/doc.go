// Package storage provides durable key stores with pluggable backends.
//
// A key store holds namespaced byte-blob records addressed by a
// namespace/partition/key locator, with get and insert-if-absent semantics.
// The insert operation is atomic per key: concurrent inserts on the same
// locator elect exactly one winner, which is what the key material
// bootstrapper relies on for its create-once guarantee.
//
// Supported backends:
//
//   - File system storage for local development and single-node deployments
//   - HashiCorp Vault (KV v2) storage using check-and-set writes
//   - In-memory storage for tests
//
// # Store URI Format
//
// Stores are specified using URI format:
//
//	[scheme]://[host][/path][?params]
//
// Supported URI schemes:
//
//   - file:///var/lib/secure-area/state/
//   - vault://vault.example.com:8200/secret/secure-area?insecure=false
//   - mem://
//
// # Atomicity
//
// The file backend inserts by linking a fully written temporary file into
// place, so a record is either absent or complete. The Vault backend uses
// the KV v2 check-and-set parameter (cas=0) so the server rejects writes to
// an existing version.
package storage
