// Package keymaterial manages the root cryptographic identity of the cloud
// secure area service.
//
// The root identity is a bundle of long-lived materials created at most once
// per deployment:
//
//   - a 32-byte bound secret tying provisioned keys to this server instance
//   - an attestation signing key (EC P-256) and its certificate chain,
//     rooted in an externally provisioned certificate
//   - a cloud binding key (EC P-256) and its self-signed certificate
//
// The package has three parts:
//
// # Codec
//
// Encode and Decode transform a RootIdentity to and from a canonical,
// fixed-arity CBOR record. The encoding is deterministic: re-encoding a
// decoded value yields byte-identical output, so the persisted record can be
// treated as content-stable. Decode rejects any blob that does not parse as
// the expected shape with ErrMalformedEncoding; it never coerces.
//
// # Chain Builder
//
// ChainBuilder mints a brand-new identity. The attestation root certificate
// is signed by the externally provisioned root key; the cloud binding root
// is self-signed. Both carry serial 1, a ten-year validity window and no
// extensions. Each invocation produces distinct keys; re-running bootstrap
// after a store wipe must not reuse old material.
//
// # Bootstrapper
//
// Bootstrapper performs the idempotent get-or-create against a KeyStore.
// A record that exists but fails to decode is fatal (ErrCorruptState):
// regenerating over existing state would silently invalidate attestations
// already held by clients. Concurrent first-time bootstraps are serialized
// by a process-wide mutex plus the store's atomic insert-if-absent; losers
// of the insert race adopt the winner's persisted record.
package keymaterial
