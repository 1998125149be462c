// Package cryptoutils provides the PEM-level cryptographic plumbing for the
// cloud secure area service.
//
// It defines validated byte types for the externally provisioned root
// certificate and private key, and helpers for rendering certificate chains
// back to PEM for display. The root material is a read-only input: it is
// loaded from operator-provisioned resources, used to sign the attestation
// root certificate during bootstrap, and never persisted or regenerated by
// this service.
//
// # Key Types
//
//   - RootCertPEM: PEM-encoded X.509 certificate with a validating constructor
//   - RootKeyPEM: PEM-encoded EC private key with a validating constructor
//
// All keys are ECDSA over NIST P-256, matching the attestation signature
// algorithm (ECDSA with SHA-256) used throughout the service.
package cryptoutils
