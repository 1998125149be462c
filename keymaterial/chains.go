package keymaterial

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/attestd/cloud-secure-area/cryptoutils"
	"github.com/attestd/cloud-secure-area/interfaces"
)

// ErrCryptoProvider is returned when key generation or certificate
// construction fails during bootstrap. Fatal: no partial identity is ever
// returned.
var ErrCryptoProvider = errors.New("crypto provider failure")

// Common names embedded in the minted root certificates.
const (
	AttestationRootCN  = "Cloud Secure Area Attestation Root"
	CloudBindingRootCN = "Cloud Secure Area Cloud Binding Key Attestation Root"
)

// identityValidityYears is the validity window of the minted certificates.
const identityValidityYears = 10

// ChainBuilder mints a fresh RootIdentity from the externally provisioned
// root certificate and key. The root material is a read-only input; the
// builder never generates or persists it.
type ChainBuilder struct {
	rootCert *x509.Certificate
	rootKey  *ecdsa.PrivateKey
	rand     io.Reader
	now      func() time.Time
}

// NewChainBuilder creates a builder from the provisioned root PEM pair.
// The key must correspond to the certificate's public key.
func NewChainBuilder(rootCert cryptoutils.RootCertPEM, rootKey cryptoutils.RootKeyPEM) (*ChainBuilder, error) {
	cert, err := rootCert.GetX509Cert()
	if err != nil {
		return nil, fmt.Errorf("invalid root certificate: %w", err)
	}

	key, err := rootKey.GetECDSAKey()
	if err != nil {
		return nil, fmt.Errorf("invalid root key: %w", err)
	}

	if err := rootKey.MatchesCertificate(rootCert); err != nil {
		return nil, err
	}

	return &ChainBuilder{
		rootCert: cert,
		rootKey:  key,
		rand:     rand.Reader,
		now:      time.Now,
	}, nil
}

// WithRand creates a new builder using the provided randomness source.
// Useful for testing.
func (b *ChainBuilder) WithRand(r io.Reader) *ChainBuilder {
	newb := *b
	newb.rand = r
	return &newb
}

// WithClock creates a new builder using the provided clock.
// Useful for testing validity windows.
func (b *ChainBuilder) WithClock(now func() time.Time) *ChainBuilder {
	newb := *b
	newb.now = now
	return &newb
}

// Mint generates a brand-new root identity: a fresh bound secret, an
// attestation key certified by the provisioned root, and an independent
// self-signed cloud binding key. Each call produces distinct key material.
func (b *ChainBuilder) Mint() (*RootIdentity, error) {
	boundSecret := make([]byte, BoundSecretSize)
	if _, err := io.ReadFull(b.rand, boundSecret); err != nil {
		return nil, fmt.Errorf("%w: generating bound secret: %v", ErrCryptoProvider, err)
	}

	notBefore := b.now()
	notAfter := notBefore.AddDate(identityValidityYears, 0, 0)

	attKey, attChain, err := b.buildAttestationChain(notBefore, notAfter)
	if err != nil {
		return nil, err
	}

	cbKey, cbChain, err := b.buildCloudBindingChain(notBefore, notAfter)
	if err != nil {
		return nil, err
	}

	identity := &RootIdentity{
		BoundSecret:           boundSecret,
		AttestationKey:        attKey,
		AttestationCertChain:  attChain,
		AttestationAlgorithm:  interfaces.ECDSAWithSHA256,
		AttestationIssuer:     attChain[0].Subject.String(),
		CloudBindingKey:       cbKey,
		CloudBindingCertChain: cbChain,
		CloudBindingAlgorithm: interfaces.ECDSAWithSHA256,
		CloudBindingIssuer:    cbChain[0].Subject.String(),
	}

	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: minted identity failed validation: %v", ErrCryptoProvider, err)
	}
	return identity, nil
}

// buildAttestationChain generates the attestation key and its certificate,
// signed by the provisioned root. The chain is leaf first, ending in the
// root certificate itself.
func (b *ChainBuilder) buildAttestationChain(notBefore, notAfter time.Time) (*ecdsa.PrivateKey, []*x509.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), b.rand)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: generating attestation key: %v", ErrCryptoProvider, err)
	}

	template := x509.Certificate{
		SerialNumber:       big.NewInt(1),
		Subject:            pkix.Name{CommonName: AttestationRootCN},
		NotBefore:          notBefore,
		NotAfter:           notAfter,
		SignatureAlgorithm: x509.ECDSAWithSHA256,
	}

	// Issuer is taken from the provisioned root's subject by signing with
	// the root as parent.
	der, err := x509.CreateCertificate(b.rand, &template, b.rootCert, &key.PublicKey, b.rootKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: creating attestation certificate: %v", ErrCryptoProvider, err)
	}

	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: parsing attestation certificate: %v", ErrCryptoProvider, err)
	}

	return key, []*x509.Certificate{leaf, b.rootCert}, nil
}

// buildCloudBindingChain generates the independent cloud binding key and its
// self-signed certificate. The chain is the single leaf.
func (b *ChainBuilder) buildCloudBindingChain(notBefore, notAfter time.Time) (*ecdsa.PrivateKey, []*x509.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), b.rand)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: generating cloud binding key: %v", ErrCryptoProvider, err)
	}

	template := x509.Certificate{
		SerialNumber:       big.NewInt(1),
		Subject:            pkix.Name{CommonName: CloudBindingRootCN},
		NotBefore:          notBefore,
		NotAfter:           notAfter,
		SignatureAlgorithm: x509.ECDSAWithSHA256,
	}

	der, err := x509.CreateCertificate(b.rand, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: creating cloud binding certificate: %v", ErrCryptoProvider, err)
	}

	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: parsing cloud binding certificate: %v", ErrCryptoProvider, err)
	}

	return key, []*x509.Certificate{leaf}, nil
}
