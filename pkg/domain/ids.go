// Package domain holds the shared domain primitives: typed entity IDs and the
// enumerated values the rest of the codebase branches on. Constructing them
// through the Parse* functions enforces validity at trust boundaries; direct
// casting bypasses validation.
package domain

import (
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "fakturo/pkg/domain-errors"
)

// Typed IDs prevent cross-entity assignment at compile time. All entities are
// owned by the upstream API; IDs only pass through this service.
type (
	ContactID      uuid.UUID
	InvoiceID      uuid.UUID
	TransmissionID uuid.UUID
)

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", what)
	}
	if !utf8.ValidString(s) {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not valid UTF-8", what)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", what)
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", what)
	}
	return id, nil
}

// ParseContactID constructs a ContactID from external input.
func ParseContactID(s string) (ContactID, error) {
	id, err := parseUUID(s, "contact id")
	return ContactID(id), err
}

// ParseInvoiceID constructs an InvoiceID from external input.
func ParseInvoiceID(s string) (InvoiceID, error) {
	id, err := parseUUID(s, "invoice id")
	return InvoiceID(id), err
}

// ParseTransmissionID constructs a TransmissionID from external input.
func ParseTransmissionID(s string) (TransmissionID, error) {
	id, err := parseUUID(s, "transmission id")
	return TransmissionID(id), err
}

func (id ContactID) String() string      { return uuid.UUID(id).String() }
func (id InvoiceID) String() string      { return uuid.UUID(id).String() }
func (id TransmissionID) String() string { return uuid.UUID(id).String() }

func (id ContactID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id InvoiceID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id TransmissionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// IDs travel through JSON as canonical UUID strings. Unmarshaling is lenient
// about absent values (empty string, nil UUID) because IDs on upstream
// payloads are sometimes optional; strict validation of required IDs happens
// through the Parse* functions at the handler boundary.

func (id ContactID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id InvoiceID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id TransmissionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func unmarshalUUID(b []byte) (uuid.UUID, error) {
	s := string(b)
	if s == "" || s == uuid.Nil.String() {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

func (id *ContactID) UnmarshalText(b []byte) error {
	parsed, err := unmarshalUUID(b)
	if err != nil {
		return err
	}
	*id = ContactID(parsed)
	return nil
}

func (id *InvoiceID) UnmarshalText(b []byte) error {
	parsed, err := unmarshalUUID(b)
	if err != nil {
		return err
	}
	*id = InvoiceID(parsed)
	return nil
}

func (id *TransmissionID) UnmarshalText(b []byte) error {
	parsed, err := unmarshalUUID(b)
	if err != nil {
		return err
	}
	*id = TransmissionID(parsed)
	return nil
}
