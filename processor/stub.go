package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/attestd/cloud-secure-area/interfaces"
)

// Stub implements interfaces.CommandProcessor for deployments where the
// secure-area protocol engine is not linked in. It accepts the full
// processor configuration so that wiring mistakes surface at startup, but
// refuses every command.
type Stub struct {
	cfg interfaces.ProcessorConfig
	log *slog.Logger
}

// NewStub validates the configuration and creates a stub processor.
func NewStub(cfg interfaces.ProcessorConfig, log *slog.Logger) (*Stub, error) {
	if len(cfg.BoundSecret) != 32 {
		return nil, fmt.Errorf("processor config: bound secret must be 32 bytes, got %d", len(cfg.BoundSecret))
	}
	if cfg.AttestationKey == nil || cfg.CloudBindingKey == nil {
		return nil, errors.New("processor config: attestation and cloud binding keys are required")
	}
	if len(cfg.AttestationCertChain) == 0 || len(cfg.CloudBindingCertChain) == 0 {
		return nil, errors.New("processor config: certificate chains are required")
	}
	if !cfg.AttestationAlgorithm.Valid() || !cfg.CloudBindingAlgorithm.Valid() {
		return nil, errors.New("processor config: signature algorithms are required")
	}

	return &Stub{cfg: cfg, log: log}, nil
}

// Process rejects the command with 501 Not Implemented.
func (p *Stub) Process(ctx context.Context, command []byte, caller interfaces.CallerIdentity) (int, []byte, error) {
	p.log.Debug("Rejecting command, protocol engine not linked",
		slog.String("caller", caller.Origin),
		slog.Int("commandSize", len(command)))
	return http.StatusNotImplemented, []byte("secure area protocol engine is not available in this deployment"), nil
}
