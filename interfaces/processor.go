package interfaces

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"time"
)

// CallerIdentity describes the network origin of a command request as seen
// by the transport layer. The delegate uses it for lockout accounting and
// audit logging only; it carries no authentication weight.
type CallerIdentity struct {
	// Origin is the caller's network address, host:port form.
	Origin string
}

// LockoutPolicy limits repeated failed authentication attempts against a
// provisioned key.
type LockoutPolicy struct {
	// MaxFailedAttempts before the key is locked out.
	MaxFailedAttempts int

	// Duration of the lockout once triggered.
	Duration time.Duration
}

// ProcessorPolicy carries the operational settings handed to the delegate
// command processor at construction.
type ProcessorPolicy struct {
	// RekeyingInterval is how often session keys are rotated.
	RekeyingInterval time.Duration

	// RequireDeviceAttestation makes the delegate reject key provisioning
	// from clients that cannot present device attestation evidence.
	RequireDeviceAttestation bool

	// AllowedSignerDigests restricts which client signing authorities are
	// accepted, as hex-encoded SHA-256 digests. Empty means no restriction.
	AllowedSignerDigests []string

	// Lockout limits repeated failed passphrase checks per provisioned key.
	Lockout LockoutPolicy
}

// ProcessorConfig is everything the delegate command processor needs to
// operate: the server's root identity material plus the operational policy.
// All fields are read-only after construction.
type ProcessorConfig struct {
	// BoundSecret ties keys provisioned by the delegate to this server
	// instance. 32 bytes, generated once at bootstrap.
	BoundSecret []byte

	// Attestation signing identity.
	AttestationKey       *ecdsa.PrivateKey
	AttestationAlgorithm SignatureAlgorithm
	AttestationIssuer    string
	AttestationCertChain []*x509.Certificate

	// Cloud binding identity, self-signed.
	CloudBindingKey       *ecdsa.PrivateKey
	CloudBindingAlgorithm SignatureAlgorithm
	CloudBindingIssuer    string
	CloudBindingCertChain []*x509.Certificate

	Policy ProcessorPolicy
}

// CommandProcessor executes secure-area protocol commands against keys
// custodied by this server. Implementations live outside this module; the
// service facade only forwards raw bytes and passes responses through
// verbatim.
type CommandProcessor interface {
	// Process parses and executes one command. It returns an HTTP-style
	// status code together with the raw response body. A non-nil error
	// means the processor itself failed, not that the command was rejected.
	Process(ctx context.Context, command []byte, caller CallerIdentity) (int, []byte, error)
}
