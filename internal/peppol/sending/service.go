package sending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fakturo/internal/pagination"
	"fakturo/internal/peppol"
	"fakturo/internal/platform/metrics"
	"fakturo/pkg/domain"

	dErrors "fakturo/pkg/domain-errors"
	"fakturo/pkg/platform/sentinel"
)

// HistoryPageSize is the transmission-history page size.
const HistoryPageSize = 50

// Client is the upstream transmission collaborator.
type Client interface {
	List(ctx context.Context, direction domain.TransmissionDirection, status domain.TransmissionStatus, limit, offset int) ([]peppol.Transmission, error)
	VerifyRecipient(ctx context.Context, peppolID string) (*peppol.RecipientVerification, error)
	ValidateInvoice(ctx context.Context, invoiceID domain.InvoiceID) (*peppol.ValidationResult, error)
	SendInvoice(ctx context.Context, invoiceID domain.InvoiceID) (*peppol.SendResponse, error)
	PollInbox(ctx context.Context) (*peppol.PollResponse, error)
	GetForInvoice(ctx context.Context, invoiceID domain.InvoiceID) (*peppol.Transmission, error)
}

// HistoryFilter narrows the transmission history. Changing it resets
// pagination before the first page is re-fetched.
type HistoryFilter struct {
	Direction domain.TransmissionDirection
	Status    domain.TransmissionStatus
}

// Workflow owns the send screen state for one screen visit. The send
// sequence (verify recipient, validate, send) is caller-orchestrated: each
// operation is independently invokable and independently inspectable; this
// service does not enforce that verification precedes send.
type Workflow struct {
	client  Client
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu                 sync.Mutex
	kind               Kind
	err                error
	verification       OpState[*peppol.RecipientVerification]
	validation         OpState[*peppol.ValidationResult]
	send               OpState[*peppol.SendResponse]
	inboxPoll          OpState[*peppol.PollResponse]
	transmissionLookup OpState[*peppol.Transmission]

	filter  HistoryFilter
	history *pagination.Session[peppol.Transmission]
}

// Option configures a Workflow.
type Option func(*Workflow)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Workflow) {
		w.metrics = m
	}
}

// New creates a Workflow in the Idle state.
func New(client Client, opts ...Option) (*Workflow, error) {
	if client == nil {
		return nil, fmt.Errorf("transmission client is required")
	}
	w := &Workflow{
		client:             client,
		kind:               KindIdle,
		verification:       idle[*peppol.RecipientVerification](),
		validation:         idle[*peppol.ValidationResult](),
		send:               idle[*peppol.SendResponse](),
		inboxPoll:          idle[*peppol.PollResponse](),
		transmissionLookup: idle[*peppol.Transmission](),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.history = pagination.NewSession(HistoryPageSize, w.fetchHistoryPage)
	return w, nil
}

// Snapshot returns the current workflow state.
func (w *Workflow) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Workflow) snapshotLocked() State {
	return State{
		Kind:               w.kind,
		Err:                w.err,
		Verification:       w.verification,
		Validation:         w.validation,
		Send:               w.send,
		InboxPoll:          w.inboxPoll,
		TransmissionLookup: w.transmissionLookup,
		History:            w.history.Snapshot(),
	}
}

// Load performs the initial history fetch, moving Idle through Loading into
// Content, or into Error with a retry when the first page fails.
func (w *Workflow) Load(ctx context.Context) State {
	w.mu.Lock()
	w.kind = KindLoading
	w.err = nil
	w.mu.Unlock()

	list := w.history.Refresh(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if list.Kind == pagination.KindError {
		w.kind = KindError
		w.err = list.Err
	} else {
		w.kind = KindContent
	}
	return w.snapshotLocked()
}

// SetHistoryFilter applies new direction/status filters. Pagination resets
// and the first page is re-fetched under the new criteria. When the workflow
// is still Idle this doubles as the initial load, so a first request that
// already carries filters fetches filtered history.
func (w *Workflow) SetHistoryFilter(ctx context.Context, filter HistoryFilter) State {
	w.mu.Lock()
	w.filter = filter
	firstVisit := w.kind == KindIdle
	if firstVisit {
		w.kind = KindLoading
		w.err = nil
	}
	w.mu.Unlock()

	list := w.history.Refresh(ctx)
	w.metrics.CountPageLoad("transmissions", "filter_reset")

	w.mu.Lock()
	defer w.mu.Unlock()
	if firstVisit {
		if list.Kind == pagination.KindError {
			w.kind = KindError
			w.err = list.Err
		} else {
			w.kind = KindContent
		}
	}
	return w.snapshotLocked()
}

// LoadMoreHistory fetches the next history page if one is due.
func (w *Workflow) LoadMoreHistory(ctx context.Context) State {
	w.history.LoadMore(ctx)
	return w.Snapshot()
}

func (w *Workflow) fetchHistoryPage(ctx context.Context, page, pageSize int) ([]peppol.Transmission, error) {
	w.mu.Lock()
	filter := w.filter
	w.mu.Unlock()

	offset := (page - 1) * pageSize
	items, err := w.client.List(ctx, filter.Direction, filter.Status, pageSize, offset)
	if err != nil {
		w.metrics.CountPageLoad("transmissions", "error")
		if w.logger != nil {
			w.logger.WarnContext(ctx, "transmission page fetch failed",
				"page", page,
				"error", err,
			)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load transmissions")
	}
	w.metrics.CountPageLoad("transmissions", "success")
	return items, nil
}

// VerifyRecipient checks whether the recipient participant can receive
// documents. Mutates only the verification slot.
func (w *Workflow) VerifyRecipient(ctx context.Context, peppolID domain.ParticipantID) State {
	w.mu.Lock()
	w.verification = OpState[*peppol.RecipientVerification]{Kind: OpLoading}
	w.mu.Unlock()

	resp, err := w.client.VerifyRecipient(ctx, peppolID.String())

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.metrics.CountPeppolOperation("verify_recipient", "error")
		w.verification = OpState[*peppol.RecipientVerification]{
			Kind: OpError,
			Err:  dErrors.Wrap(err, dErrors.CodeUnavailable, "recipient verification failed"),
			Retry: func(ctx context.Context) {
				w.VerifyRecipient(ctx, peppolID)
			},
		}
	} else {
		w.metrics.CountPeppolOperation("verify_recipient", "success")
		w.verification = OpState[*peppol.RecipientVerification]{Kind: OpSuccess, Payload: resp}
	}
	return w.snapshotLocked()
}

// ValidateInvoice validates the invoice document upstream. Mutates only the
// validation slot.
func (w *Workflow) ValidateInvoice(ctx context.Context, invoiceID domain.InvoiceID) State {
	w.mu.Lock()
	w.validation = OpState[*peppol.ValidationResult]{Kind: OpLoading}
	w.mu.Unlock()

	result, err := w.client.ValidateInvoice(ctx, invoiceID)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.metrics.CountPeppolOperation("validate_invoice", "error")
		w.validation = OpState[*peppol.ValidationResult]{
			Kind: OpError,
			Err:  dErrors.Wrap(err, dErrors.CodeUnavailable, "invoice validation failed"),
			Retry: func(ctx context.Context) {
				w.ValidateInvoice(ctx, invoiceID)
			},
		}
	} else {
		w.metrics.CountPeppolOperation("validate_invoice", "success")
		w.validation = OpState[*peppol.ValidationResult]{Kind: OpSuccess, Payload: result}
	}
	return w.snapshotLocked()
}

// SendInvoice sends the invoice over the network. Mutates only the send
// slot; on success the transmission history is refreshed so the list
// reflects the new transmission.
func (w *Workflow) SendInvoice(ctx context.Context, invoiceID domain.InvoiceID) State {
	w.mu.Lock()
	w.send = OpState[*peppol.SendResponse]{Kind: OpLoading}
	w.mu.Unlock()

	resp, err := w.client.SendInvoice(ctx, invoiceID)

	w.mu.Lock()
	if err != nil {
		w.metrics.CountPeppolOperation("send_invoice", "error")
		w.send = OpState[*peppol.SendResponse]{
			Kind: OpError,
			Err:  dErrors.Wrap(err, dErrors.CodeUnavailable, "send failed"),
			Retry: func(ctx context.Context) {
				w.SendInvoice(ctx, invoiceID)
			},
		}
		defer w.mu.Unlock()
		return w.snapshotLocked()
	}
	w.metrics.CountPeppolOperation("send_invoice", "success")
	w.send = OpState[*peppol.SendResponse]{Kind: OpSuccess, Payload: resp}
	w.mu.Unlock()

	w.history.Refresh(ctx)
	return w.Snapshot()
}

// PollInbox checks for newly received documents. Mutates only the inbox-poll
// slot; the history is refreshed only when new documents arrived, avoiding
// redundant fetches.
func (w *Workflow) PollInbox(ctx context.Context) State {
	w.mu.Lock()
	w.inboxPoll = OpState[*peppol.PollResponse]{Kind: OpLoading}
	w.mu.Unlock()

	resp, err := w.client.PollInbox(ctx)

	w.mu.Lock()
	if err != nil {
		w.metrics.CountPeppolOperation("poll_inbox", "error")
		w.inboxPoll = OpState[*peppol.PollResponse]{
			Kind: OpError,
			Err:  dErrors.Wrap(err, dErrors.CodeUnavailable, "inbox poll failed"),
			Retry: func(ctx context.Context) {
				w.PollInbox(ctx)
			},
		}
		defer w.mu.Unlock()
		return w.snapshotLocked()
	}
	w.metrics.CountPeppolOperation("poll_inbox", "success")
	w.inboxPoll = OpState[*peppol.PollResponse]{Kind: OpSuccess, Payload: resp}
	w.mu.Unlock()

	if resp.NewDocuments > 0 {
		w.history.Refresh(ctx)
	}
	return w.Snapshot()
}

// LookupTransmission resolves the transmission for an invoice, if any.
// A missing transmission is a successful lookup with a nil payload, not an
// error. Mutates only the transmission-lookup slot.
func (w *Workflow) LookupTransmission(ctx context.Context, invoiceID domain.InvoiceID) State {
	w.mu.Lock()
	w.transmissionLookup = OpState[*peppol.Transmission]{Kind: OpLoading}
	w.mu.Unlock()

	tx, err := w.client.GetForInvoice(ctx, invoiceID)

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		w.transmissionLookup = OpState[*peppol.Transmission]{Kind: OpSuccess, Payload: nil}
	case err != nil:
		w.transmissionLookup = OpState[*peppol.Transmission]{
			Kind: OpError,
			Err:  dErrors.Wrap(err, dErrors.CodeUnavailable, "transmission lookup failed"),
			Retry: func(ctx context.Context) {
				w.LookupTransmission(ctx, invoiceID)
			},
		}
	default:
		w.transmissionLookup = OpState[*peppol.Transmission]{Kind: OpSuccess, Payload: tx}
	}
	return w.snapshotLocked()
}
