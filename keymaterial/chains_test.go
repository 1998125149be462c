package keymaterial

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestd/cloud-secure-area/cryptoutils"
	"github.com/attestd/cloud-secure-area/interfaces"
)

// testRootPEM generates a throwaway external root CA pair for tests.
func testRootPEM(t *testing.T) (cryptoutils.RootCertPEM, cryptoutils.RootKeyPEM) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err, "Failed to generate test root key")

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Test External Root"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().AddDate(20, 0, 0),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err, "Failed to self-sign test root certificate")

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err, "Failed to marshal test root key")
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	rootCert, err := cryptoutils.NewRootCertPEM(certPEM)
	require.NoError(t, err, "Test root certificate should validate")
	rootKey, err := cryptoutils.NewRootKeyPEM(keyPEM)
	require.NoError(t, err, "Test root key should validate")

	return rootCert, rootKey
}

func testBuilder(t *testing.T) *ChainBuilder {
	t.Helper()
	rootCert, rootKey := testRootPEM(t)
	builder, err := NewChainBuilder(rootCert, rootKey)
	require.NoError(t, err, "NewChainBuilder should succeed with matching root material")
	return builder
}

func TestNewChainBuilder_RejectsMismatchedKey(t *testing.T) {
	rootCert, _ := testRootPEM(t)
	_, otherKey := testRootPEM(t)

	_, err := NewChainBuilder(rootCert, otherKey)
	assert.Error(t, err, "Should reject a key that does not match the certificate")
}

func TestChainBuilder_Mint(t *testing.T) {
	builder := testBuilder(t)

	identity, err := builder.Mint()
	require.NoError(t, err, "Mint should succeed")
	require.NoError(t, identity.Validate(), "Minted identity should validate")

	assert.Len(t, identity.BoundSecret, BoundSecretSize, "Bound secret should be 32 bytes")
	assert.Equal(t, interfaces.ECDSAWithSHA256, identity.AttestationAlgorithm)
	assert.Equal(t, interfaces.ECDSAWithSHA256, identity.CloudBindingAlgorithm)

	// Attestation chain: leaf signed by the external root, root appended.
	require.Len(t, identity.AttestationCertChain, 2, "Attestation chain should be leaf plus root")
	leaf, root := identity.AttestationCertChain[0], identity.AttestationCertChain[1]
	assert.Equal(t, root.Subject.String(), leaf.Issuer.String(), "Leaf should be issued by the external root")
	assert.NoError(t, leaf.CheckSignatureFrom(root), "Root should have signed the attestation leaf")
	assert.Equal(t, AttestationRootCN, leaf.Subject.CommonName)
	assert.Equal(t, int64(1), leaf.SerialNumber.Int64(), "Serial number is fixed at 1")

	// Cloud binding chain: single self-signed certificate.
	require.Len(t, identity.CloudBindingCertChain, 1, "Cloud binding chain should be the self-signed leaf only")
	cbLeaf := identity.CloudBindingCertChain[0]
	assert.Equal(t, cbLeaf.Subject.String(), cbLeaf.Issuer.String(), "Cloud binding leaf should be self-signed")
	assert.NoError(t, cbLeaf.CheckSignatureFrom(cbLeaf), "Cloud binding leaf should verify against itself")
	assert.Equal(t, CloudBindingRootCN, cbLeaf.Subject.CommonName)

	assert.Equal(t, leaf.Subject.String(), identity.AttestationIssuer, "Issuer string comes from the leaf subject")
	assert.Equal(t, cbLeaf.Subject.String(), identity.CloudBindingIssuer)
}

func TestChainBuilder_MintValidityWindow(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	builder := testBuilder(t).WithClock(func() time.Time { return fixed })

	identity, err := builder.Mint()
	require.NoError(t, err, "Mint should succeed")

	leaf := identity.AttestationCertChain[0]
	assert.WithinDuration(t, fixed, leaf.NotBefore, time.Second)
	assert.WithinDuration(t, fixed.AddDate(10, 0, 0), leaf.NotAfter, time.Second, "Validity should be ten years")
}

func TestChainBuilder_MintProducesDistinctMaterial(t *testing.T) {
	builder := testBuilder(t)

	first, err := builder.Mint()
	require.NoError(t, err)
	second, err := builder.Mint()
	require.NoError(t, err)

	assert.NotEqual(t, first.BoundSecret, second.BoundSecret, "Each mint should draw a fresh bound secret")
	assert.False(t, first.AttestationKey.Equal(second.AttestationKey), "Each mint should generate a fresh attestation key")
	assert.False(t, first.CloudBindingKey.Equal(second.CloudBindingKey), "Each mint should generate a fresh cloud binding key")
	assert.False(t, first.Equal(second), "Two mints should never be equal")
}

func TestChainBuilder_MintFailsOnRandomness(t *testing.T) {
	builder := testBuilder(t).WithRand(&failingReader{})

	_, err := builder.Mint()
	require.Error(t, err, "Mint should fail when randomness is unavailable")
	assert.ErrorIs(t, err, ErrCryptoProvider)
}

type failingReader struct{}

func (r *failingReader) Read(p []byte) (int, error) {
	return 0, assert.AnError
}
