package httpserver

import (
	"bytes"
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
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestd/cloud-secure-area/cryptoutils"
	"github.com/attestd/cloud-secure-area/interfaces"
	"github.com/attestd/cloud-secure-area/keymaterial"
	"github.com/attestd/cloud-secure-area/processor"
	"github.com/attestd/cloud-secure-area/securearea"
	"github.com/attestd/cloud-secure-area/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testService(t *testing.T) *securearea.Service {
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

	rootCert, err := cryptoutils.NewRootCertPEM(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	rootKey, err := cryptoutils.NewRootKeyPEM(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}))
	require.NoError(t, err)

	builder, err := keymaterial.NewChainBuilder(rootCert, rootKey)
	require.NoError(t, err)

	logger := testLogger()
	service, err := securearea.New(securearea.Config{
		Bootstrapper: keymaterial.NewBootstrapper(storage.NewMemoryStore(), builder, logger),
		NewProcessor: func(cfg interfaces.ProcessorConfig) (interfaces.CommandProcessor, error) {
			return processor.NewStub(cfg, logger)
		},
		Log: logger,
	})
	require.NoError(t, err, "Failed to create service")
	return service
}

func TestHandler_HandleCommand(t *testing.T) {
	service := testService(t)
	require.NoError(t, service.Initialize(context.Background()))
	handler := NewHandler(service, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte{0x01, 0x02, 0x03}))
	rec := httptest.NewRecorder()
	handler.HandleCommand(rec, req)

	// The stub processor refuses every command with 501.
	assert.Equal(t, http.StatusNotImplemented, rec.Code, "Delegate status should pass through")
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes(), "Delegate response bytes should pass through")
}

func TestHandler_HandleCommandBeforeInitialize(t *testing.T) {
	service := testService(t)
	handler := NewHandler(service, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("cmd")))
	rec := httptest.NewRecorder()
	handler.HandleCommand(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "Uninitialized service should return 503")
}

func TestHandler_HandleCommandBodyTooLarge(t *testing.T) {
	service := testService(t)
	require.NoError(t, service.Initialize(context.Background()))
	handler := NewHandler(service, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(make([]byte, maxCommandBodySize+1)))
	rec := httptest.NewRecorder()
	handler.HandleCommand(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandler_HandleStatus(t *testing.T) {
	service := testService(t)
	require.NoError(t, service.Initialize(context.Background()))
	handler := NewHandler(service, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.HandleStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "BEGIN CERTIFICATE", "Status page should render PEM chains")
	assert.Contains(t, body, keymaterial.AttestationRootCN)
	assert.Contains(t, body, keymaterial.CloudBindingRootCN)
}

func TestHandler_HandleStatusBeforeInitialize(t *testing.T) {
	service := testService(t)
	handler := NewHandler(service, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.HandleStatus(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "Uninitialized service should return 503")
}

func TestServer_HealthEndpoints(t *testing.T) {
	service := testService(t)
	require.NoError(t, service.Initialize(context.Background()))

	srv, err := New(&HTTPServerConfig{
		ListenAddr:  "127.0.0.1:0",
		MetricsAddr: "",
		Log:         testLogger(),
	}, NewHandler(service, testLogger()))
	require.NoError(t, err, "Failed to create server")

	router := srv.getRouter()

	check := func(path string, wantStatus int) {
		t.Helper()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, wantStatus, rec.Code, "GET %s", path)
	}

	check("/livez", http.StatusOK)
	check("/readyz", http.StatusOK)
	check("/drain", http.StatusOK)
	check("/readyz", http.StatusServiceUnavailable)
	check("/undrain", http.StatusOK)
	check("/readyz", http.StatusOK)
}
