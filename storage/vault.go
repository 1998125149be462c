package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"

	"github.com/attestd/cloud-secure-area/interfaces"
)

// VaultStore implements a key store using HashiCorp Vault's KV v2 secrets
// engine. Inserts use the check-and-set parameter with cas=0, so Vault
// itself enforces the insert-only-if-absent contract.
type VaultStore struct {
	client      *api.Client
	mountPath   string
	dataPath    string
	log         *slog.Logger
	locationURI string
}

// NewVaultStore creates a new Vault-backed key store.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - dataPath: path prefix within the mount (e.g. "secure-area")
//   - token: Vault token; falls back to the client's environment config if empty
//   - log: structured logger for operational insights
func NewVaultStore(address, mountPath, dataPath, token string, log *slog.Logger) (*VaultStore, error) {
	config := api.DefaultConfig()
	config.Address = address
	config.Timeout = 30 * time.Second

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	mountPath = strings.TrimSuffix(mountPath, "/")
	dataPath = strings.Trim(dataPath, "/")

	return &VaultStore{
		client:      client,
		mountPath:   mountPath,
		dataPath:    dataPath,
		log:         log,
		locationURI: fmt.Sprintf("vault://%s/%s/%s", address, mountPath, dataPath),
	}, nil
}

// Get retrieves the record at the locator using the KV v2 read API.
func (s *VaultStore) Get(ctx context.Context, locator interfaces.RecordLocator) ([]byte, error) {
	path := s.recordPath(locator)

	secret, err := s.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		s.log.Error("Failed to read from Vault",
			slog.String("path", path),
			"err", err)
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	if secret == nil || secret.Data == nil {
		return nil, interfaces.ErrRecordNotFound
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid data format in Vault response at %s", path)
	}

	encoded, ok := data["value"].(string)
	if !ok {
		return nil, fmt.Errorf("value key not found in Vault data at %s", path)
	}

	value, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid value encoding in Vault data at %s: %w", path, err)
	}

	s.log.Debug("Fetched record from Vault",
		slog.String("locator", locator.String()),
		slog.Int("size", len(value)))

	return value, nil
}

// Insert writes a record only if none exists, using cas=0 so that Vault
// rejects the write when any version is already present.
func (s *VaultStore) Insert(ctx context.Context, locator interfaces.RecordLocator, value []byte) error {
	path := s.recordPath(locator)

	_, err := s.client.Logical().WriteWithContext(ctx, path, map[string]interface{}{
		"data": map[string]interface{}{
			"value": base64.StdEncoding.EncodeToString(value),
		},
		"options": map[string]interface{}{
			"cas": 0,
		},
	})
	if err != nil {
		if strings.Contains(err.Error(), "check-and-set parameter did not match") {
			return interfaces.ErrRecordExists
		}
		s.log.Error("Failed to write to Vault",
			slog.String("path", path),
			"err", err)
		return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	s.log.Debug("Inserted record into Vault",
		slog.String("locator", locator.String()),
		slog.Int("size", len(value)))

	return nil
}

// Available checks if the Vault server is reachable and unsealed.
func (s *VaultStore) Available(ctx context.Context) bool {
	health, err := s.client.Sys().HealthWithContext(ctx)
	if err != nil {
		s.log.Debug("Vault store unavailable", "err", err)
		return false
	}
	return health.Initialized && !health.Sealed
}

// Name returns a unique identifier for this store.
func (s *VaultStore) Name() string {
	return fmt.Sprintf("vault-%s", s.mountPath)
}

// LocationURI returns the URI that identifies this store.
func (s *VaultStore) LocationURI() string {
	return s.locationURI
}

// recordPath builds the KV v2 data path for a locator.
func (s *VaultStore) recordPath(locator interfaces.RecordLocator) string {
	segments := []string{s.mountPath, "data"}
	if s.dataPath != "" {
		segments = append(segments, s.dataPath)
	}
	segments = append(segments, locator.Namespace)
	if locator.Partition != "" {
		segments = append(segments, locator.Partition)
	}
	segments = append(segments, locator.Key)
	return strings.Join(segments, "/")
}
