// Package resources resolves named configuration resources (the
// operator-provisioned root certificate and private key PEM files) from a
// base directory.
package resources

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Default resource names for the externally provisioned root material.
const (
	DefaultRootCertificate = "cloud_secure_area/certificate.pem"
	DefaultRootPrivateKey  = "cloud_secure_area/private_key.pem"
)

// Loader resolves resource names to file contents under a base directory.
type Loader struct {
	baseDir string
}

// NewLoader creates a loader rooted at baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{baseDir: baseDir}
}

// Resolve reads the resource with the given name. Names are relative paths
// within the base directory; escaping the base directory is rejected.
func (l *Loader) Resolve(name string) ([]byte, error) {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("resource name %q escapes the resource directory", name)
	}

	data, err := os.ReadFile(filepath.Join(l.baseDir, clean))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve resource %q: %w", name, err)
	}
	return data, nil
}
