package securearea

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/atomic"

	"github.com/attestd/cloud-secure-area/cryptoutils"
	"github.com/attestd/cloud-secure-area/interfaces"
	"github.com/attestd/cloud-secure-area/keymaterial"
)

var (
	// ErrAlreadyInitialized is returned when Initialize is called more than
	// once. This is a host-integration bug, not a runtime fault.
	ErrAlreadyInitialized = errors.New("secure area service already initialized")

	// ErrNotInitialized is returned by request entry points invoked before
	// Initialize has completed successfully.
	ErrNotInitialized = errors.New("secure area service not initialized")
)

// Service lifecycle states.
const (
	stateUninitialized int32 = iota
	stateInitializing
	stateReady
	stateFailed
)

// ProcessorFactory constructs the delegate command processor from the root
// identity material and policy.
type ProcessorFactory func(interfaces.ProcessorConfig) (interfaces.CommandProcessor, error)

// Config carries the collaborators the service needs.
type Config struct {
	Bootstrapper *keymaterial.Bootstrapper
	NewProcessor ProcessorFactory
	Policy       interfaces.ProcessorPolicy
	Log          *slog.Logger
}

// Service is the process-wide state holder and request dispatcher. Create
// it with New, call Initialize exactly once, then serve requests through
// HandleCommand and DescribeRoots concurrently.
type Service struct {
	cfg Config
	log *slog.Logger

	// state transitions are guarded by mu; readers take the fast path on
	// the atomic flag. identity and processor are written once, before
	// state becomes Ready, and never mutated afterwards.
	state     atomic.Int32
	mu        sync.Mutex
	identity  *keymaterial.RootIdentity
	processor interfaces.CommandProcessor
}

// New creates an uninitialized service.
func New(cfg Config) (*Service, error) {
	if cfg.Bootstrapper == nil {
		return nil, errors.New("securearea: bootstrapper is required")
	}
	if cfg.NewProcessor == nil {
		return nil, errors.New("securearea: processor factory is required")
	}
	if cfg.Log == nil {
		return nil, errors.New("securearea: logger is required")
	}

	return &Service{cfg: cfg, log: cfg.Log}, nil
}

// Initialize obtains the root identity through the bootstrapper and
// constructs the delegate command processor. All bootstrap-time errors are
// fatal: the caller must refuse to serve requests and abort startup.
func (s *Service) Initialize(ctx context.Context) error {
	if !s.state.CompareAndSwap(stateUninitialized, stateInitializing) {
		return ErrAlreadyInitialized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	identity, err := s.cfg.Bootstrapper.Obtain(ctx)
	if err != nil {
		s.state.Store(stateFailed)
		return fmt.Errorf("bootstrapping root identity: %w", err)
	}

	processor, err := s.cfg.NewProcessor(identity.ProcessorConfig(s.cfg.Policy))
	if err != nil {
		s.state.Store(stateFailed)
		return fmt.Errorf("constructing command processor: %w", err)
	}

	s.identity = identity
	s.processor = processor
	s.state.Store(stateReady)

	s.log.Info("Secure area service initialized",
		slog.String("attestationIssuer", identity.AttestationIssuer),
		slog.String("cloudBindingIssuer", identity.CloudBindingIssuer),
		slog.Int("attestationChainLen", len(identity.AttestationCertChain)))

	return nil
}

// HandleCommand forwards one raw command to the delegate processor and
// passes its status code and response bytes through verbatim. Callers
// arriving while initialization is in flight block until it resolves.
func (s *Service) HandleCommand(ctx context.Context, command []byte, caller interfaces.CallerIdentity) (int, []byte, error) {
	if err := s.awaitReady(); err != nil {
		return 0, nil, err
	}
	return s.processor.Process(ctx, command, caller)
}

// RootDescription exposes the identity's certificate chains for status
// reporting. Read-only.
type RootDescription struct {
	AttestationChain      []byte // PEM, leaf first
	CloudBindingChain     []byte // PEM
	AttestationIssuer     string
	CloudBindingIssuer    string
	AttestationAlgorithm  interfaces.SignatureAlgorithm
	CloudBindingAlgorithm interfaces.SignatureAlgorithm
}

// DescribeRoots returns the two certificate chains for display.
func (s *Service) DescribeRoots() (RootDescription, error) {
	if err := s.awaitReady(); err != nil {
		return RootDescription{}, err
	}

	return RootDescription{
		AttestationChain:      cryptoutils.RenderChainPEM(s.identity.AttestationCertChain),
		CloudBindingChain:     cryptoutils.RenderChainPEM(s.identity.CloudBindingCertChain),
		AttestationIssuer:     s.identity.AttestationIssuer,
		CloudBindingIssuer:    s.identity.CloudBindingIssuer,
		AttestationAlgorithm:  s.identity.AttestationAlgorithm,
		CloudBindingAlgorithm: s.identity.CloudBindingAlgorithm,
	}, nil
}

// awaitReady checks the initialization precondition. The fast path is a
// single atomic load; callers racing an in-flight Initialize block on the
// state mutex until the transition resolves.
func (s *Service) awaitReady() error {
	switch s.state.Load() {
	case stateReady:
		return nil
	case stateInitializing:
		// Wait for Initialize to release the mutex, then re-check.
		s.mu.Lock()
		s.mu.Unlock() //nolint:staticcheck // empty critical section is the wait
		if s.state.Load() == stateReady {
			return nil
		}
		return ErrNotInitialized
	default:
		return ErrNotInitialized
	}
}
