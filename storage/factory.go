package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/attestd/cloud-secure-area/interfaces"
)

// KeyStoreFactory creates key stores from URI strings.
type KeyStoreFactory struct {
	log *slog.Logger
}

// NewKeyStoreFactory creates a new factory instance.
func NewKeyStoreFactory(log *slog.Logger) *KeyStoreFactory {
	return &KeyStoreFactory{log: log}
}

// KeyStoreFor creates a key store from a location URI.
//
// Supported schemes:
//   - file:///path/to/state for local filesystem storage
//   - vault://host:port/mount/prefix?token=...&insecure=true for HashiCorp Vault KV v2
//   - mem:// for in-process storage in tests and ephemeral runs
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (f *KeyStoreFactory) KeyStoreFor(locationURI string) (interfaces.KeyStore, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return f.createFileStore(u)
	case "vault":
		return f.createVaultStore(u)
	case "mem":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported scheme: %s", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

func (f *KeyStoreFactory) createFileStore(u *url.URL) (interfaces.KeyStore, error) {
	baseDir := u.Path
	if u.Host != "" {
		// file://relative/path parses the first segment as host.
		baseDir = u.Host + u.Path
	}
	if baseDir == "" {
		return nil, fmt.Errorf("%w: file URI requires a path", interfaces.ErrInvalidLocationURI)
	}
	return NewFileStore(baseDir, f.log)
}

func (f *KeyStoreFactory) createVaultStore(u *url.URL) (interfaces.KeyStore, error) {
	if u.Host == "" {
		return nil, fmt.Errorf("%w: vault URI requires a host", interfaces.ErrInvalidLocationURI)
	}

	scheme := "https"
	if u.Query().Get("insecure") == "true" {
		scheme = "http"
	}
	address := fmt.Sprintf("%s://%s", scheme, u.Host)

	segments := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
	if segments[0] == "" {
		return nil, fmt.Errorf("%w: vault URI requires a mount path", interfaces.ErrInvalidLocationURI)
	}
	mountPath := segments[0]
	dataPath := ""
	if len(segments) == 2 {
		dataPath = segments[1]
	}

	return NewVaultStore(address, mountPath, dataPath, u.Query().Get("token"), f.log)
}
