// Package processor contains the in-repo side of the delegated secure-area
// command processor.
//
// The real protocol engine (parsing client commands, provisioning keys,
// enforcing lockout and rekeying policy) is an external collaborator. This
// package provides Stub, a stand-in implementation that validates the
// configuration handed to it and rejects every command with 501 Not
// Implemented. It keeps the service wiring and tests honest about the
// processor contract without pretending to implement the protocol.
package processor
