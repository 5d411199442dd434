// Package peppol holds the models shared by the registration and sending
// workflows. All records are owned by the upstream PEPPOL access point API.
package peppol

import (
	"time"

	"fakturo/pkg/domain"
)

// RegistrationRecord is the business's enrollment on the PEPPOL network as
// reported by the upstream API.
type RegistrationRecord struct {
	Status           domain.RegistrationStatus `json:"status"`
	ParticipantID    string                    `json:"participant_id,omitempty"`
	EnterpriseNumber string                    `json:"enterprise_number,omitempty"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// VerificationResult is the outcome of checking whether an enterprise number
// can be registered on the network.
type VerificationResult struct {
	EnterpriseNumber string `json:"enterprise_number"`
	Available        bool   `json:"available"`
	ExistingProvider string `json:"existing_provider,omitempty"`
}

// RecipientVerification is the outcome of checking whether a recipient
// participant can receive documents.
type RecipientVerification struct {
	ParticipantID string `json:"participant_id"`
	Registered    bool   `json:"registered"`
}

// ValidationResult is the outcome of validating an invoice document before
// sending.
type ValidationResult struct {
	InvoiceID domain.InvoiceID `json:"invoice_id"`
	Valid     bool             `json:"valid"`
	Problems  []string         `json:"problems,omitempty"`
}

// SendResponse acknowledges a sent invoice.
type SendResponse struct {
	TransmissionID domain.TransmissionID `json:"transmission_id"`
	SentAt         time.Time             `json:"sent_at"`
}

// PollResponse reports how many new inbound documents arrived since the last
// poll.
type PollResponse struct {
	NewDocuments int `json:"new_documents"`
}

// Transmission is a single sent or received e-invoice document event.
type Transmission struct {
	ID          domain.TransmissionID        `json:"id"`
	InvoiceID   domain.InvoiceID             `json:"invoice_id,omitempty"`
	Direction   domain.TransmissionDirection `json:"direction"`
	Status      domain.TransmissionStatus    `json:"status"`
	Counterpart string                       `json:"counterpart"`
	CreatedAt   time.Time                    `json:"created_at"`
}
