package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/attestd/cloud-secure-area/interfaces"
)

// FileStore implements a key store using the local file system. Each record
// is a single file at baseDir/namespace[/partition]/key.
type FileStore struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileStore creates a new file-backed key store rooted at baseDir,
// creating the directory if needed.
func NewFileStore(baseDir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileStore{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Get retrieves the record at the locator.
// Returns interfaces.ErrRecordNotFound if the file doesn't exist.
func (s *FileStore) Get(ctx context.Context, locator interfaces.RecordLocator) ([]byte, error) {
	data, err := os.ReadFile(s.recordPath(locator))
	if errors.Is(err, os.ErrNotExist) {
		return nil, interfaces.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	s.log.Debug("Fetched record from file store",
		slog.String("locator", locator.String()),
		slog.Int("size", len(data)))

	return data, nil
}

// Insert writes a record only if none exists at the locator. The value is
// fully written to a temporary file first and then hard-linked into place;
// link fails with EEXIST if another writer got there first, so a visible
// record is always complete.
func (s *FileStore) Insert(ctx context.Context, locator interfaces.RecordLocator, value []byte) error {
	recordPath := s.recordPath(locator)
	if err := os.MkdirAll(filepath.Dir(recordPath), 0700); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	tmpPath := filepath.Join(filepath.Dir(recordPath), ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmpPath, value, 0600); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}
	defer os.Remove(tmpPath)

	if err := os.Link(tmpPath, recordPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			return interfaces.ErrRecordExists
		}
		return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	s.log.Debug("Inserted record into file store",
		slog.String("locator", locator.String()),
		slog.Int("size", len(value)))

	return nil
}

// Available checks if the store is accessible by verifying the base
// directory exists.
func (s *FileStore) Available(ctx context.Context) bool {
	_, err := os.Stat(s.baseDir)
	if err != nil {
		s.log.Debug("File store unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this store.
func (s *FileStore) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(s.baseDir))
}

// LocationURI returns the URI that identifies this store.
func (s *FileStore) LocationURI() string {
	return s.locationURI
}

// recordPath maps a locator to a file path. Locator components are
// validated against path separators at construction time.
func (s *FileStore) recordPath(locator interfaces.RecordLocator) string {
	if locator.Partition == "" {
		return filepath.Join(s.baseDir, locator.Namespace, locator.Key)
	}
	return filepath.Join(s.baseDir, locator.Namespace, locator.Partition, locator.Key)
}
