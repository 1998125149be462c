package keymaterial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/attestd/cloud-secure-area/interfaces"
	"github.com/attestd/cloud-secure-area/metrics"
)

// ErrCorruptState is returned when a persisted record exists but fails to
// decode. Fatal: the service must not silently regenerate over existing
// state, since that would invalidate attestations already trusted by
// clients. Operator intervention is required.
var ErrCorruptState = errors.New("persisted key material is corrupt")

// RootRecordLocator is the fixed logical address of the one key material
// record per deployment.
var RootRecordLocator = interfaces.RecordLocator{
	Namespace: "RootState",
	Partition: "",
	Key:       "cloudSecureAreaKeyMaterial",
}

// Bootstrapper performs the idempotent get-or-create of the root identity
// against a durable key store.
type Bootstrapper struct {
	store   interfaces.KeyStore
	builder *ChainBuilder
	log     *slog.Logger

	// mu serializes the read-check-create-write sequence within the
	// process. Cross-process races are resolved by the store's atomic
	// insert-if-absent.
	mu sync.Mutex
}

// NewBootstrapper creates a bootstrapper backed by the given store and chain
// builder.
func NewBootstrapper(store interfaces.KeyStore, builder *ChainBuilder, log *slog.Logger) *Bootstrapper {
	return &Bootstrapper{
		store:   store,
		builder: builder,
		log:     log,
	}
}

// Obtain returns the deployment's root identity, minting and persisting it
// if no record exists yet. At most one create ever succeeds per deployment;
// callers that lose the insert race read back and return the winner's
// persisted value.
//
// Error taxonomy: interfaces.ErrStoreUnavailable for transient store faults
// (the service must refuse to come up), ErrCorruptState for undecodable
// existing records, ErrCryptoProvider for generation failures.
func (b *Bootstrapper) Obtain(ctx context.Context) (*RootIdentity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := b.store.Get(ctx, RootRecordLocator)
	switch {
	case err == nil:
		identity, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
		b.log.Debug("Loaded existing root identity",
			slog.String("locator", RootRecordLocator.String()),
			slog.Int("size", len(data)))
		return identity, nil

	case errors.Is(err, interfaces.ErrRecordNotFound):
		// First run for this deployment, fall through to create.

	default:
		return nil, fmt.Errorf("%w: reading %s: %v", interfaces.ErrStoreUnavailable, RootRecordLocator, err)
	}

	identity, err := b.builder.Mint()
	if err != nil {
		return nil, err
	}

	encoded, err := Encode(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding minted identity: %v", ErrCryptoProvider, err)
	}

	err = b.store.Insert(ctx, RootRecordLocator, encoded)
	switch {
	case err == nil:
		metrics.BootstrapCreatesTotal.Inc()
		b.log.Info("Minted and persisted new root identity",
			slog.String("locator", RootRecordLocator.String()),
			slog.String("store", b.store.Name()))

	case errors.Is(err, interfaces.ErrRecordExists):
		// Another bootstrap won the insert race. Discard the freshly
		// minted identity and adopt the winner's record.
		b.log.Info("Lost bootstrap race, adopting persisted root identity",
			slog.String("locator", RootRecordLocator.String()))
		data, err := b.store.Get(ctx, RootRecordLocator)
		if err != nil {
			return nil, fmt.Errorf("%w: reading winner's record: %v", interfaces.ErrStoreUnavailable, err)
		}
		encoded = data

	default:
		return nil, fmt.Errorf("%w: writing %s: %v", interfaces.ErrStoreUnavailable, RootRecordLocator, err)
	}

	// Return the decoded persisted form so every caller observes exactly
	// what the store holds.
	persisted, err := Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return persisted, nil
}
