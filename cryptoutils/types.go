package cryptoutils

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// RootCertPEM represents the externally provisioned root certificate in PEM
// format.
type RootCertPEM []byte

// NewRootCertPEM creates a new root certificate object from PEM-encoded data
// with validation.
func NewRootCertPEM(data []byte) (RootCertPEM, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return RootCertPEM{}, errors.New("invalid root certificate: not in PEM format or not a certificate")
	}

	if _, err := x509.ParseCertificate(block.Bytes); err != nil {
		return RootCertPEM{}, fmt.Errorf("invalid root certificate structure: %w", err)
	}

	return RootCertPEM(data), nil
}

// Validate checks if the certificate is properly formed.
func (cert RootCertPEM) Validate() error {
	_, err := NewRootCertPEM(cert)
	return err
}

// GetX509Cert returns the parsed X.509 certificate.
func (cert RootCertPEM) GetX509Cert() (*x509.Certificate, error) {
	block, _ := pem.Decode(cert)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}
	return x509.ParseCertificate(block.Bytes)
}

// RootKeyPEM represents the externally provisioned root private key in PEM
// format. Both PKCS#8 ("PRIVATE KEY") and SEC1 ("EC PRIVATE KEY") encodings
// are accepted; the key must be ECDSA.
type RootKeyPEM []byte

// NewRootKeyPEM creates a new root key object from PEM-encoded data with
// validation.
func NewRootKeyPEM(data []byte) (RootKeyPEM, error) {
	key := RootKeyPEM(data)
	if _, err := key.GetECDSAKey(); err != nil {
		return RootKeyPEM{}, err
	}
	return key, nil
}

// Validate checks if the private key is properly formed.
func (key RootKeyPEM) Validate() error {
	_, err := NewRootKeyPEM(key)
	return err
}

// GetECDSAKey returns the parsed ECDSA private key.
func (key RootKeyPEM) GetECDSAKey() (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(key)
	if block == nil || (block.Type != "PRIVATE KEY" && block.Type != "EC PRIVATE KEY") {
		return nil, errors.New("invalid root key: not in PEM format or not a private key")
	}

	if parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		ecKey, ok := parsed.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("unsupported root key type: %T", parsed)
		}
		return ecKey, nil
	}

	ecKey, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("invalid root key structure: %w", err)
	}
	return ecKey, nil
}

// MatchesCertificate verifies that the key corresponds to the certificate's
// public key.
func (key RootKeyPEM) MatchesCertificate(cert RootCertPEM) error {
	ecKey, err := key.GetECDSAKey()
	if err != nil {
		return err
	}

	x509Cert, err := cert.GetX509Cert()
	if err != nil {
		return err
	}

	certPub, ok := x509Cert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return fmt.Errorf("root certificate public key type %T does not match EC private key", x509Cert.PublicKey)
	}

	if !certPub.Equal(&ecKey.PublicKey) {
		return errors.New("root private key does not match root certificate")
	}
	return nil
}
