package domain

import dErrors "fakturo/pkg/domain-errors"

// TransmissionDirection distinguishes sent from received documents in the
// transmission history.
type TransmissionDirection string

const (
	DirectionIncoming TransmissionDirection = "incoming"
	DirectionOutgoing TransmissionDirection = "outgoing"
)

var validDirections = map[TransmissionDirection]bool{
	DirectionIncoming: true,
	DirectionOutgoing: true,
}

// ParseTransmissionDirection constructs a direction from external input.
// An empty string is accepted and means "no direction filter".
func ParseTransmissionDirection(s string) (TransmissionDirection, error) {
	if s == "" {
		return "", nil
	}
	d := TransmissionDirection(s)
	if !validDirections[d] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown transmission direction: %s", s)
	}
	return d, nil
}

// TransmissionStatus is the upstream delivery status of a transmission.
type TransmissionStatus string

const (
	TransmissionPending   TransmissionStatus = "pending"
	TransmissionDelivered TransmissionStatus = "delivered"
	TransmissionFailed    TransmissionStatus = "failed"
)

var validTransmissionStatuses = map[TransmissionStatus]bool{
	TransmissionPending:   true,
	TransmissionDelivered: true,
	TransmissionFailed:    true,
}

// ParseTransmissionStatus constructs a status from external input.
// An empty string is accepted and means "no status filter".
func ParseTransmissionStatus(s string) (TransmissionStatus, error) {
	if s == "" {
		return "", nil
	}
	st := TransmissionStatus(s)
	if !validTransmissionStatuses[st] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown transmission status: %s", s)
	}
	return st, nil
}
