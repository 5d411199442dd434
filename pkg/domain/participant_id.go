package domain

import (
	"strings"

	"github.com/asaskevich/govalidator"

	dErrors "fakturo/pkg/domain-errors"
)

// ParticipantID is a PEPPOL participant identifier in `scheme:identifier`
// form, e.g. "0208:0123456789" for a Belgian enterprise number.
type ParticipantID struct {
	Scheme     string
	Identifier string
}

// ParseParticipantID validates and splits a raw participant identifier.
//
// Errors: returns CodeInvalidInput for anything that is not a 4-digit scheme
// followed by a colon and a non-empty identifier. Malformed identifiers are
// reported inline against the field; they never abort an enclosing form.
func ParseParticipantID(raw string) (ParticipantID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ParticipantID{}, dErrors.New(dErrors.CodeInvalidInput, "peppol id cannot be empty")
	}

	scheme, identifier, found := strings.Cut(raw, ":")
	if !found {
		return ParticipantID{}, dErrors.New(dErrors.CodeInvalidInput, "peppol id must be scheme:identifier")
	}
	if len(scheme) != 4 || !govalidator.IsNumeric(scheme) {
		return ParticipantID{}, dErrors.New(dErrors.CodeInvalidInput, "peppol id scheme must be 4 digits")
	}
	if identifier == "" || !govalidator.IsAlphanumeric(identifier) {
		return ParticipantID{}, dErrors.New(dErrors.CodeInvalidInput, "peppol id identifier is malformed")
	}

	return ParticipantID{Scheme: scheme, Identifier: identifier}, nil
}

// String returns the canonical scheme:identifier form.
func (p ParticipantID) String() string {
	return p.Scheme + ":" + p.Identifier
}

// IsNil reports whether the participant id is unset.
func (p ParticipantID) IsNil() bool {
	return p.Scheme == "" && p.Identifier == ""
}
