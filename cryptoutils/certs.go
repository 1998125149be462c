package cryptoutils

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// RenderChainPEM encodes a certificate chain, leaf first, as concatenated
// PEM blocks for display and export.
func RenderChainPEM(chain []*x509.Certificate) []byte {
	var buf bytes.Buffer
	for _, cert := range chain {
		pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	}
	return buf.Bytes()
}

// MarshalECKey serializes an ECDSA private key to SEC1 DER. The SEC1
// encoding of a parsed key is byte-stable, which the canonical key material
// encoding relies on.
func MarshalECKey(key *ecdsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal EC private key: %w", err)
	}
	return der, nil
}

// ParseECKey parses a SEC1 DER EC private key.
func ParseECKey(der []byte) (*ecdsa.PrivateKey, error) {
	key, err := x509.ParseECPrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EC private key: %w", err)
	}
	return key, nil
}

// ParseChainDER parses a certificate chain from per-certificate DER blobs,
// leaf first.
func ParseChainDER(chain [][]byte) ([]*x509.Certificate, error) {
	if len(chain) == 0 {
		return nil, errors.New("empty certificate chain")
	}

	certs := make([]*x509.Certificate, 0, len(chain))
	for i, der := range chain {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate %d: %w", i, err)
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// ChainDER returns the per-certificate DER encoding of a chain, leaf first.
func ChainDER(chain []*x509.Certificate) [][]byte {
	ders := make([][]byte, 0, len(chain))
	for _, cert := range chain {
		ders = append(ders, cert.Raw)
	}
	return ders
}
