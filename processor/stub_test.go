package processor

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestd/cloud-secure-area/cryptoutils"
	"github.com/attestd/cloud-secure-area/interfaces"
	"github.com/attestd/cloud-secure-area/keymaterial"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProcessorConfig(t *testing.T) interfaces.ProcessorConfig {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
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
	require.NoError(t, err)
	rootCert, err := cryptoutils.NewRootCertPEM(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	rootKey, err := cryptoutils.NewRootKeyPEM(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}))
	require.NoError(t, err)

	builder, err := keymaterial.NewChainBuilder(rootCert, rootKey)
	require.NoError(t, err)
	identity, err := builder.Mint()
	require.NoError(t, err)

	return identity.ProcessorConfig(interfaces.ProcessorPolicy{})
}

func TestNewStub_ValidatesConfig(t *testing.T) {
	cfg := testProcessorConfig(t)

	stub, err := NewStub(cfg, testLogger())
	require.NoError(t, err, "Complete config should be accepted")
	assert.NotNil(t, stub)

	short := cfg
	short.BoundSecret = short.BoundSecret[:8]
	_, err = NewStub(short, testLogger())
	assert.Error(t, err, "Short bound secret should be rejected")

	noKey := cfg
	noKey.AttestationKey = nil
	_, err = NewStub(noKey, testLogger())
	assert.Error(t, err, "Missing attestation key should be rejected")

	noChain := cfg
	noChain.CloudBindingCertChain = nil
	_, err = NewStub(noChain, testLogger())
	assert.Error(t, err, "Missing certificate chain should be rejected")
}

func TestStub_RefusesCommands(t *testing.T) {
	stub, err := NewStub(testProcessorConfig(t), testLogger())
	require.NoError(t, err)

	status, resp, err := stub.Process(context.Background(), []byte("cmd"), interfaces.CallerIdentity{Origin: "test"})
	require.NoError(t, err, "Refusal is a response, not an error")
	assert.Equal(t, http.StatusNotImplemented, status)
	assert.NotEmpty(t, resp)
}
