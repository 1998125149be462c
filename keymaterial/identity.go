package keymaterial

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/attestd/cloud-secure-area/interfaces"
)

// BoundSecretSize is the length of the instance bound secret in bytes.
const BoundSecretSize = 32

// RootIdentity is the server's root cryptographic identity. It is created at
// most once per deployment and immutable for the process lifetime once
// loaded.
type RootIdentity struct {
	// BoundSecret is mixed into key binding by the delegate processor so
	// that provisioned keys are tied to this server instance. Generated
	// once, never derived.
	BoundSecret []byte

	// AttestationKey signs attestation certificates for keys the service
	// provisions on behalf of clients.
	AttestationKey *ecdsa.PrivateKey

	// AttestationCertChain is ordered leaf first; the leaf certifies
	// AttestationKey's public key and the chain ends in the externally
	// provisioned root.
	AttestationCertChain []*x509.Certificate

	// AttestationAlgorithm is the algorithm used to produce the attestation
	// leaf certificate.
	AttestationAlgorithm interfaces.SignatureAlgorithm

	// AttestationIssuer is the subject name embedded in the attestation
	// leaf, recorded for the delegate processor.
	AttestationIssuer string

	// Cloud binding identity: the self-signed analogue used to attest that
	// a provisioned key is cloud-bound rather than hardware-bound.
	CloudBindingKey       *ecdsa.PrivateKey
	CloudBindingCertChain []*x509.Certificate
	CloudBindingAlgorithm interfaces.SignatureAlgorithm
	CloudBindingIssuer    string
}

// Validate checks the structural invariants of the identity: bound secret
// length, recognized algorithms, chain shapes, and that each leaf
// certificate actually certifies the corresponding private key.
func (id *RootIdentity) Validate() error {
	if len(id.BoundSecret) != BoundSecretSize {
		return fmt.Errorf("bound secret must be %d bytes, got %d", BoundSecretSize, len(id.BoundSecret))
	}

	if !id.AttestationAlgorithm.Valid() {
		return fmt.Errorf("invalid attestation signature algorithm: %d", id.AttestationAlgorithm)
	}
	if !id.CloudBindingAlgorithm.Valid() {
		return fmt.Errorf("invalid cloud binding signature algorithm: %d", id.CloudBindingAlgorithm)
	}

	if len(id.AttestationCertChain) < 2 {
		return fmt.Errorf("attestation chain must contain the leaf and at least one issuer, got %d certificates", len(id.AttestationCertChain))
	}
	if len(id.CloudBindingCertChain) < 1 {
		return errors.New("cloud binding chain must contain at least the self-signed leaf")
	}

	cbLeaf := id.CloudBindingCertChain[0]
	if !bytes.Equal(cbLeaf.RawIssuer, cbLeaf.RawSubject) {
		return errors.New("cloud binding leaf certificate is not self-signed")
	}

	if err := leafCertifiesKey(id.AttestationCertChain[0], id.AttestationKey); err != nil {
		return fmt.Errorf("attestation chain: %w", err)
	}
	if err := leafCertifiesKey(cbLeaf, id.CloudBindingKey); err != nil {
		return fmt.Errorf("cloud binding chain: %w", err)
	}

	return nil
}

func leafCertifiesKey(leaf *x509.Certificate, key *ecdsa.PrivateKey) error {
	if key == nil {
		return errors.New("private key is nil")
	}
	leafPub, ok := leaf.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return fmt.Errorf("leaf certificate holds a %T public key, expected ECDSA", leaf.PublicKey)
	}
	if !leafPub.Equal(&key.PublicKey) {
		return errors.New("leaf certificate public key does not match the private key")
	}
	return nil
}

// Equal reports whether two identities are field-for-field identical,
// comparing certificates by their raw DER bytes.
func (id *RootIdentity) Equal(other *RootIdentity) bool {
	if other == nil {
		return false
	}
	return bytes.Equal(id.BoundSecret, other.BoundSecret) &&
		id.AttestationKey.Equal(other.AttestationKey) &&
		chainsEqual(id.AttestationCertChain, other.AttestationCertChain) &&
		id.AttestationAlgorithm == other.AttestationAlgorithm &&
		id.AttestationIssuer == other.AttestationIssuer &&
		id.CloudBindingKey.Equal(other.CloudBindingKey) &&
		chainsEqual(id.CloudBindingCertChain, other.CloudBindingCertChain) &&
		id.CloudBindingAlgorithm == other.CloudBindingAlgorithm &&
		id.CloudBindingIssuer == other.CloudBindingIssuer
}

func chainsEqual(a, b []*x509.Certificate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i].Raw, b[i].Raw) {
			return false
		}
	}
	return true
}

// ProcessorConfig assembles the construction parameters for the delegate
// command processor from this identity and the supplied policy.
func (id *RootIdentity) ProcessorConfig(policy interfaces.ProcessorPolicy) interfaces.ProcessorConfig {
	secret := make([]byte, len(id.BoundSecret))
	copy(secret, id.BoundSecret)

	return interfaces.ProcessorConfig{
		BoundSecret:           secret,
		AttestationKey:        id.AttestationKey,
		AttestationAlgorithm:  id.AttestationAlgorithm,
		AttestationIssuer:     id.AttestationIssuer,
		AttestationCertChain:  id.AttestationCertChain,
		CloudBindingKey:       id.CloudBindingKey,
		CloudBindingAlgorithm: id.CloudBindingAlgorithm,
		CloudBindingIssuer:    id.CloudBindingIssuer,
		CloudBindingCertChain: id.CloudBindingCertChain,
		Policy:                policy,
	}
}
