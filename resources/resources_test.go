package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Resolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cloud_secure_area"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cloud_secure_area", "certificate.pem"), []byte("pem data"), 0600))

	loader := NewLoader(dir)

	data, err := loader.Resolve(DefaultRootCertificate)
	require.NoError(t, err, "Resolve should read the provisioned resource")
	assert.Equal(t, []byte("pem data"), data)
}

func TestLoader_ResolveMissing(t *testing.T) {
	loader := NewLoader(t.TempDir())

	_, err := loader.Resolve("does/not/exist.pem")
	assert.Error(t, err, "Missing resources should error")
}

func TestLoader_RejectsEscapingNames(t *testing.T) {
	loader := NewLoader(t.TempDir())

	for _, name := range []string{"../outside.pem", "/etc/passwd", "a/../../outside"} {
		_, err := loader.Resolve(name)
		assert.Error(t, err, "Name %q should be rejected", name)
	}
}
