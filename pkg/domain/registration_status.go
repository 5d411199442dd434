package domain

import dErrors "fakturo/pkg/domain-errors"

// RegistrationStatus is the PEPPOL enrollment status reported by the upstream
// API. The UI-facing state machine maps each status to exactly one screen
// state; an unknown status is a defect, never silently tolerated.
type RegistrationStatus string

// Statuses the upstream registration resource can report.
const (
	RegistrationNotConfigured   RegistrationStatus = "not_configured"
	RegistrationPending         RegistrationStatus = "pending"
	RegistrationActive          RegistrationStatus = "active"
	RegistrationWaitingTransfer RegistrationStatus = "waiting_transfer"
	RegistrationSendingOnly     RegistrationStatus = "sending_only"
	RegistrationExternal        RegistrationStatus = "external"
	RegistrationFailed          RegistrationStatus = "failed"
)

// validRegistrationStatuses is the single source of truth for valid statuses.
var validRegistrationStatuses = map[RegistrationStatus]bool{
	RegistrationNotConfigured:   true,
	RegistrationPending:         true,
	RegistrationActive:          true,
	RegistrationWaitingTransfer: true,
	RegistrationSendingOnly:     true,
	RegistrationExternal:        true,
	RegistrationFailed:          true,
}

// ParseRegistrationStatus constructs a RegistrationStatus from external input.
func ParseRegistrationStatus(s string) (RegistrationStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "registration status cannot be empty")
	}
	st := RegistrationStatus(s)
	if !st.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown registration status: %s", s)
	}
	return st, nil
}

// IsValid checks if the status is one of the enumerated values.
func (s RegistrationStatus) IsValid() bool {
	return validRegistrationStatuses[s]
}

// String returns the string representation of the status.
func (s RegistrationStatus) String() string {
	return string(s)
}
