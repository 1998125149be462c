package interfaces

import (
	"crypto/x509"
	"errors"
	"fmt"
	"strings"
)

// SignatureAlgorithm identifies the algorithm used to sign attestation
// certificates. The identifier is part of the persisted key material
// encoding, so values must never be renumbered.
type SignatureAlgorithm int

const (
	// SignatureAlgorithmUnknown is the zero value and never valid in a
	// persisted record.
	SignatureAlgorithmUnknown SignatureAlgorithm = iota

	// ECDSAWithSHA256 is the only algorithm currently produced by the
	// attestation chain builder.
	ECDSAWithSHA256
)

// NewSignatureAlgorithm validates a raw identifier as read from a persisted
// record.
func NewSignatureAlgorithm(raw int) (SignatureAlgorithm, error) {
	alg := SignatureAlgorithm(raw)
	if !alg.Valid() {
		return SignatureAlgorithmUnknown, fmt.Errorf("unrecognized signature algorithm identifier: %d", raw)
	}
	return alg, nil
}

// Valid reports whether the algorithm is a known identifier.
func (a SignatureAlgorithm) Valid() bool {
	return a == ECDSAWithSHA256
}

// X509 returns the corresponding crypto/x509 algorithm.
func (a SignatureAlgorithm) X509() x509.SignatureAlgorithm {
	switch a {
	case ECDSAWithSHA256:
		return x509.ECDSAWithSHA256
	default:
		return x509.UnknownSignatureAlgorithm
	}
}

// String returns the algorithm name.
func (a SignatureAlgorithm) String() string {
	switch a {
	case ECDSAWithSHA256:
		return "ECDSA-SHA256"
	default:
		return "unknown"
	}
}

// RecordLocator addresses a single persisted record in a KeyStore.
// Partition may be empty.
type RecordLocator struct {
	Namespace string
	Partition string
	Key       string
}

// NewRecordLocator creates a locator with validation. Namespace and key are
// required; none of the components may contain a path separator, since
// file-backed stores map components to directories.
func NewRecordLocator(namespace, partition, key string) (RecordLocator, error) {
	if namespace == "" || key == "" {
		return RecordLocator{}, errors.New("record locator requires a namespace and a key")
	}
	for _, component := range []string{namespace, partition, key} {
		if strings.ContainsAny(component, "/\\") {
			return RecordLocator{}, fmt.Errorf("record locator component %q contains a path separator", component)
		}
	}
	return RecordLocator{Namespace: namespace, Partition: partition, Key: key}, nil
}

// String returns the locator in namespace/partition/key form for logging.
func (l RecordLocator) String() string {
	return l.Namespace + "/" + l.Partition + "/" + l.Key
}
