package registration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"fakturo/internal/peppol"
	"fakturo/internal/platform/metrics"

	dErrors "fakturo/pkg/domain-errors"
)

// Client is the upstream registration resource collaborator.
type Client interface {
	Get(ctx context.Context) (*peppol.RegistrationRecord, error)
	VerifyPeppolID(ctx context.Context, enterpriseNumber string) (*peppol.VerificationResult, error)
	Enable(ctx context.Context) (*peppol.RegistrationRecord, error)
	PollTransfer(ctx context.Context) (*peppol.RegistrationRecord, error)
}

// Service owns the registration screen state for one screen visit. All state
// access goes through its methods; Snapshot hands out the current state. The
// mutex guards the state, never an upstream call: state is read under the
// lock to decide a transition, the lock is released for the network round
// trip, and reacquired to apply the outcome.
type Service struct {
	client  Client
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu    sync.Mutex
	state State
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a Service in the Loading state.
func New(client Client, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("registration client is required")
	}
	s := &Service{
		client: client,
		state:  State{Kind: KindLoading},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Snapshot returns the current screen state.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load performs the initial fetch. Entry always passes through Loading; a
// fetch failure lands in the Error state, recoverable via Refresh.
func (s *Service) Load(ctx context.Context) State {
	s.mu.Lock()
	s.state = State{Kind: KindLoading}
	s.mu.Unlock()
	return s.fetchAndMap(ctx)
}

// Refresh re-fetches and re-maps the registration resource. Valid in every
// terminal state and in the Error state.
func (s *Service) Refresh(ctx context.Context) State {
	return s.fetchAndMap(ctx)
}

// VerifyPeppolID checks whether the enterprise number can be registered and
// enters the VerificationResult state. Only valid from Welcome.
func (s *Service) VerifyPeppolID(ctx context.Context, enterpriseNumber string) (State, error) {
	s.mu.Lock()
	if s.state.Kind != KindWelcome {
		defer s.mu.Unlock()
		return s.state, dErrors.Newf(dErrors.CodeConflict, "verify is not available in state %s", s.state.Kind)
	}
	s.state.IsVerifying = true
	s.mu.Unlock()

	result, err := s.client.VerifyPeppolID(ctx, enterpriseNumber)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsVerifying = false
	if err != nil {
		s.metrics.CountPeppolOperation("verify_peppol_id", "error")
		// Verification failure keeps the user on Welcome; it is not a
		// screen-level error.
		if s.logger != nil {
			s.logger.WarnContext(ctx, "peppol id verification failed", "error", err)
		}
		return s.state, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification failed")
	}

	s.metrics.CountPeppolOperation("verify_peppol_id", "success")
	s.state = State{Kind: KindVerificationResult, Verification: result}
	return s.state, nil
}

// EnablePeppol enrolls the business. Valid from Welcome, or from
// VerificationResult when the verification indicated availability. On success
// the fresh record is mapped into the next state.
func (s *Service) EnablePeppol(ctx context.Context) (State, error) {
	s.mu.Lock()
	if !s.state.CanEnable() {
		defer s.mu.Unlock()
		return s.state, dErrors.Newf(dErrors.CodeConflict, "enable is not available in state %s", s.state.Kind)
	}
	s.mu.Unlock()

	record, err := s.client.Enable(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.metrics.CountPeppolOperation("enable_peppol", "error")
		return s.state, dErrors.Wrap(err, dErrors.CodeUnavailable, "enable failed")
	}

	s.metrics.CountPeppolOperation("enable_peppol", "success")
	return s.applyRecordLocked(record), nil
}

// BackToWelcome returns to the Welcome state. Only valid from
// VerificationResult.
func (s *Service) BackToWelcome() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Kind != KindVerificationResult {
		return s.state, dErrors.Newf(dErrors.CodeConflict, "back to welcome is not available in state %s", s.state.Kind)
	}
	s.state = State{Kind: KindWelcome}
	return s.state, nil
}

// PollTransfer polls the transfer-status endpoint. Only valid while waiting
// for a transfer; the polling cadence is the caller's concern. A poll failure
// keeps the current state: polling is advisory.
func (s *Service) PollTransfer(ctx context.Context) (State, error) {
	s.mu.Lock()
	if !s.state.CanPollTransfer() {
		defer s.mu.Unlock()
		return s.state, dErrors.Newf(dErrors.CodeConflict, "transfer polling is not available in state %s", s.state.Kind)
	}
	s.mu.Unlock()

	record, err := s.client.PollTransfer(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.logger != nil {
			s.logger.DebugContext(ctx, "transfer poll failed", "error", err)
		}
		return s.state, nil
	}
	return s.applyRecordLocked(record), nil
}

func (s *Service) fetchAndMap(ctx context.Context) State {
	record, err := s.client.Get(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = State{
			Kind: KindError,
			Err:  dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load registration"),
		}
		return s.state
	}
	return s.applyRecordLocked(record)
}

func (s *Service) applyRecordLocked(record *peppol.RegistrationRecord) State {
	kind, err := ToUIState(record.Status)
	if err != nil {
		// An unmapped status is a defect; surface it instead of guessing.
		s.state = State{Kind: KindError, Err: err}
		return s.state
	}
	s.state = State{Kind: kind, Registration: record}
	return s.state
}
