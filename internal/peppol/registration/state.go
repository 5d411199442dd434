// Package registration implements the screen state machine over the
// externally-owned PEPPOL registration resource. It specifies the
// deterministic status-to-state mapping and which user actions are valid in
// each state; the backend semantics of each status live upstream.
package registration

import (
	"fakturo/internal/peppol"
	"fakturo/pkg/domain"

	dErrors "fakturo/pkg/domain-errors"
)

// Kind discriminates the registration screen states. Exactly one is active.
type Kind string

const (
	KindLoading            Kind = "loading"
	KindWelcome            Kind = "welcome"
	KindVerificationResult Kind = "verification_result"
	KindPending            Kind = "pending"
	KindActive             Kind = "active"
	KindWaitingTransfer    Kind = "waiting_transfer"
	KindSendingOnly        Kind = "sending_only"
	KindExternal           Kind = "external"
	KindFailed             Kind = "failed"
	KindError              Kind = "error"
)

// State is the current registration screen state. Registration carries the
// last fetched record for the terminal kinds; Verification carries the result
// while in KindVerificationResult; Err and Retry are set in KindError.
type State struct {
	Kind         Kind
	Registration *peppol.RegistrationRecord
	Verification *peppol.VerificationResult
	IsVerifying  bool
	Err          error
}

// statusToKind is the total mapping from backend status to screen state.
var statusToKind = map[domain.RegistrationStatus]Kind{
	domain.RegistrationNotConfigured:   KindWelcome,
	domain.RegistrationPending:         KindPending,
	domain.RegistrationActive:          KindActive,
	domain.RegistrationWaitingTransfer: KindWaitingTransfer,
	domain.RegistrationSendingOnly:     KindSendingOnly,
	domain.RegistrationExternal:        KindExternal,
	domain.RegistrationFailed:          KindFailed,
}

// ToUIState maps a backend registration status to its screen state. The
// mapping is total over the enumerated statuses; an unmapped status is a
// defect in this codebase, reported loudly rather than absorbed.
func ToUIState(status domain.RegistrationStatus) (Kind, error) {
	kind, ok := statusToKind[status]
	if !ok {
		return "", dErrors.Newf(dErrors.CodeInternal, "unmapped registration status: %s", status)
	}
	return kind, nil
}

// CanEnable reports whether EnablePeppol is a valid action in this state:
// from Welcome always, from VerificationResult only when the verification
// indicated availability.
func (s State) CanEnable() bool {
	switch s.Kind {
	case KindWelcome:
		return true
	case KindVerificationResult:
		return s.Verification != nil && s.Verification.Available
	default:
		return false
	}
}

// CanPollTransfer reports whether transfer polling is valid in this state.
func (s State) CanPollTransfer() bool {
	return s.Kind == KindWaitingTransfer
}
