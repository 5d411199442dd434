// Package sending implements the send/transmission workflow screen state:
// five independent operation slots plus the paginated transmission history.
package sending

import (
	"context"

	"fakturo/internal/pagination"
	"fakturo/internal/peppol"
)

// OpKind discriminates one operation slot's tri-state (plus idle).
type OpKind string

const (
	OpIdle    OpKind = "idle"
	OpLoading OpKind = "loading"
	OpSuccess OpKind = "success"
	OpError   OpKind = "error"
)

// OpState is one operation slot. Payload is set on success; Err and Retry on
// error. Retry re-invokes the same operation with the same arguments; nothing
// retries automatically.
type OpState[T any] struct {
	Kind    OpKind
	Payload T
	Err     error
	Retry   func(ctx context.Context)
}

func idle[T any]() OpState[T] {
	return OpState[T]{Kind: OpIdle}
}

// Kind discriminates the workflow screen states.
type Kind string

const (
	KindIdle    Kind = "idle"
	KindLoading Kind = "loading"
	KindContent Kind = "content"
	KindError   Kind = "error"
)

// State is a snapshot of the whole workflow screen. The five slots are
// independent: starting or completing one operation never resets or blocks
// another slot.
type State struct {
	Kind Kind
	Err  error

	Verification       OpState[*peppol.RecipientVerification]
	Validation         OpState[*peppol.ValidationResult]
	Send               OpState[*peppol.SendResponse]
	InboxPoll          OpState[*peppol.PollResponse]
	TransmissionLookup OpState[*peppol.Transmission]

	History pagination.ListState[peppol.Transmission]
}
