package keymaterial

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/attestd/cloud-secure-area/cryptoutils"
	"github.com/attestd/cloud-secure-area/interfaces"
)

// ErrMalformedEncoding is returned by Decode when a byte sequence does not
// parse as the expected fixed-arity record, when a sub-field has the wrong
// shape, or when an algorithm identifier is unrecognized.
var ErrMalformedEncoding = errors.New("malformed key material encoding")

// encodedIdentity is the persisted wire form: a fixed-arity CBOR array with
// field order matching the declaration order below. Keys are SEC1 DER,
// certificates are per-certificate DER, leaf first. The order and the
// algorithm identifiers are part of the storage contract and must not
// change.
type encodedIdentity struct {
	_ struct{} `cbor:",toarray"`

	BoundSecret          []byte
	AttestationKey       []byte
	AttestationChain     [][]byte
	AttestationAlgorithm int
	AttestationIssuer    string
	CloudBindingKey      []byte
	CloudBindingChain    [][]byte
	CloudBindingAlg      int
	CloudBindingIssuer   string
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// Core Deterministic Encoding makes decode(encode(x)) re-encode to the
	// exact same bytes, so the persisted record is content-stable.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthForbidden,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Encode serializes a root identity to its canonical binary form.
func Encode(id *RootIdentity) ([]byte, error) {
	if err := id.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to encode invalid identity: %w", err)
	}

	attKeyDER, err := cryptoutils.MarshalECKey(id.AttestationKey)
	if err != nil {
		return nil, err
	}

	cbKeyDER, err := cryptoutils.MarshalECKey(id.CloudBindingKey)
	if err != nil {
		return nil, err
	}

	record := encodedIdentity{
		BoundSecret:          id.BoundSecret,
		AttestationKey:       attKeyDER,
		AttestationChain:     cryptoutils.ChainDER(id.AttestationCertChain),
		AttestationAlgorithm: int(id.AttestationAlgorithm),
		AttestationIssuer:    id.AttestationIssuer,
		CloudBindingKey:      cbKeyDER,
		CloudBindingChain:    cryptoutils.ChainDER(id.CloudBindingCertChain),
		CloudBindingAlg:      int(id.CloudBindingAlgorithm),
		CloudBindingIssuer:   id.CloudBindingIssuer,
	}

	data, err := encMode.Marshal(&record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode key material: %w", err)
	}
	return data, nil
}

// Decode parses the canonical binary form back into a root identity. Any
// shape mismatch is rejected with ErrMalformedEncoding; decoding never
// falls back to a partially populated identity.
func Decode(data []byte) (*RootIdentity, error) {
	var record encodedIdentity
	if err := decMode.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}

	attAlg, err := interfaces.NewSignatureAlgorithm(record.AttestationAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: attestation: %v", ErrMalformedEncoding, err)
	}
	cbAlg, err := interfaces.NewSignatureAlgorithm(record.CloudBindingAlg)
	if err != nil {
		return nil, fmt.Errorf("%w: cloud binding: %v", ErrMalformedEncoding, err)
	}

	attKey, err := cryptoutils.ParseECKey(record.AttestationKey)
	if err != nil {
		return nil, fmt.Errorf("%w: attestation key: %v", ErrMalformedEncoding, err)
	}
	cbKey, err := cryptoutils.ParseECKey(record.CloudBindingKey)
	if err != nil {
		return nil, fmt.Errorf("%w: cloud binding key: %v", ErrMalformedEncoding, err)
	}

	attChain, err := cryptoutils.ParseChainDER(record.AttestationChain)
	if err != nil {
		return nil, fmt.Errorf("%w: attestation chain: %v", ErrMalformedEncoding, err)
	}
	cbChain, err := cryptoutils.ParseChainDER(record.CloudBindingChain)
	if err != nil {
		return nil, fmt.Errorf("%w: cloud binding chain: %v", ErrMalformedEncoding, err)
	}

	id := &RootIdentity{
		BoundSecret:           record.BoundSecret,
		AttestationKey:        attKey,
		AttestationCertChain:  attChain,
		AttestationAlgorithm:  attAlg,
		AttestationIssuer:     record.AttestationIssuer,
		CloudBindingKey:       cbKey,
		CloudBindingCertChain: cbChain,
		CloudBindingAlgorithm: cbAlg,
		CloudBindingIssuer:    record.CloudBindingIssuer,
	}

	if err := id.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return id, nil
}
