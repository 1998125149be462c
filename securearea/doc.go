// Package securearea holds the process-wide service state and dispatches
// incoming secure-area commands to the delegated protocol engine.
//
// The Service owns exactly one RootIdentity and one CommandProcessor for
// the process lifetime. Initialization is modeled as an explicit state
// machine:
//
//	Uninitialized -> Initializing -> Ready
//	                              -> Failed
//
// Initialize may be called at most once; a second call is a programming
// error (ErrAlreadyInitialized), not a runtime condition to recover from.
// Commands arriving while the service is initializing block until the
// outcome is known; commands arriving before Initialize fail with
// ErrNotInitialized rather than dereferencing unset state.
//
// The facade adds no secure-area protocol logic of its own: HandleCommand
// is pure delegation once the readiness precondition holds, and responses
// from the delegate are passed through verbatim.
package securearea
