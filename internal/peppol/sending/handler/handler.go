// Package handler exposes the PEPPOL send workflow over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fakturo/internal/peppol"
	"fakturo/internal/peppol/sending"
	"fakturo/internal/platform/metrics"
	"fakturo/internal/platform/middleware"
	dErrors "fakturo/pkg/domain-errors"
	"fakturo/pkg/domain"
	"fakturo/pkg/platform/httputil"
)

// Workflow drives the send screen state.
type Workflow interface {
	Snapshot() sending.State
	Load(ctx context.Context) sending.State
	SetHistoryFilter(ctx context.Context, filter sending.HistoryFilter) sending.State
	LoadMoreHistory(ctx context.Context) sending.State
	VerifyRecipient(ctx context.Context, peppolID domain.ParticipantID) sending.State
	ValidateInvoice(ctx context.Context, invoiceID domain.InvoiceID) sending.State
	SendInvoice(ctx context.Context, invoiceID domain.InvoiceID) sending.State
	PollInbox(ctx context.Context) sending.State
	LookupTransmission(ctx context.Context, invoiceID domain.InvoiceID) sending.State
}

// Handler handles transmission endpoints.
type Handler struct {
	logger   *slog.Logger
	workflow Workflow
	metrics  *metrics.Metrics
}

// New creates a new sending Handler.
func New(workflow Workflow, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		workflow: workflow,
		metrics:  m,
	}
}

// Register registers the transmission routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/peppol/transmissions", h.handleHistory)
	r.Post("/peppol/inbox/poll", h.handlePollInbox)
	r.Post("/peppol/invoices/{invoiceID}/verify-recipient", h.handleVerifyRecipient)
	r.Post("/peppol/invoices/{invoiceID}/validate", h.handleValidate)
	r.Post("/peppol/invoices/{invoiceID}/send", h.handleSend)
	r.Get("/peppol/invoices/{invoiceID}/transmission", h.handleLookup)
}

type historyResponse struct {
	Kind          string                `json:"kind"`
	Transmissions []peppol.Transmission `json:"transmissions"`
	Page          int                   `json:"page"`
	HasMore       bool                  `json:"has_more"`
	Error         string                `json:"error,omitempty"`
}

func toHistoryResponse(state sending.State) historyResponse {
	resp := historyResponse{
		Kind:          string(state.Kind),
		Transmissions: state.History.Pagination.Data,
		Page:          state.History.Pagination.CurrentPage,
		HasMore:       state.History.Pagination.HasMorePages,
	}
	if resp.Transmissions == nil {
		resp.Transmissions = []peppol.Transmission{}
	}
	if state.Err != nil {
		resp.Error = dErrors.MessageOf(state.Err)
	}
	return resp
}

// handleHistory serves the transmission history. Filter params select
// direction and status; more=true appends the next page to the session
// instead of restarting from the first.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var filter sending.HistoryFilter
	if raw := q.Get("direction"); raw != "" {
		direction, err := domain.ParseTransmissionDirection(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Direction = direction
	}
	if raw := q.Get("status"); raw != "" {
		status, err := domain.ParseTransmissionStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Status = status
	}

	var state sending.State
	switch {
	case q.Get("more") == "true":
		state = h.workflow.LoadMoreHistory(ctx)
	case h.workflow.Snapshot().Kind == sending.KindIdle && filter == (sending.HistoryFilter{}):
		state = h.workflow.Load(ctx)
	default:
		state = h.workflow.SetHistoryFilter(ctx, filter)
	}

	outcome := "success"
	if state.Kind == sending.KindError {
		outcome = "error"
	}
	h.metrics.CountPageLoad("transmissions", outcome)

	httputil.WriteJSON(w, http.StatusOK, toHistoryResponse(state))
}

type opResponse[T any] struct {
	Kind    string `json:"kind"`
	Payload T      `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

func toOpResponse[T any](op sending.OpState[T]) opResponse[T] {
	resp := opResponse[T]{
		Kind:    string(op.Kind),
		Payload: op.Payload,
	}
	if op.Err != nil {
		resp.Error = dErrors.MessageOf(op.Err)
	}
	return resp
}

func opStatus[T any](op sending.OpState[T]) int {
	if op.Kind == sending.OpError {
		return httputil.StatusForError(op.Err)
	}
	return http.StatusOK
}

type verifyRecipientRequest struct {
	ParticipantID string `json:"participant_id"`
}

func (h *Handler) handleVerifyRecipient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyRecipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	pid, err := domain.ParseParticipantID(req.ParticipantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	state := h.workflow.VerifyRecipient(ctx, pid)
	h.countOp(ctx, "verify_recipient", state.Verification.Kind, state.Verification.Err)
	httputil.WriteJSON(w, opStatus(state.Verification), toOpResponse(state.Verification))
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invoiceID, err := domain.ParseInvoiceID(chi.URLParam(r, "invoiceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	state := h.workflow.ValidateInvoice(ctx, invoiceID)
	h.countOp(ctx, "validate", state.Validation.Kind, state.Validation.Err)
	httputil.WriteJSON(w, opStatus(state.Validation), toOpResponse(state.Validation))
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invoiceID, err := domain.ParseInvoiceID(chi.URLParam(r, "invoiceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	state := h.workflow.SendInvoice(ctx, invoiceID)
	h.countOp(ctx, "send", state.Send.Kind, state.Send.Err)
	httputil.WriteJSON(w, opStatus(state.Send), toOpResponse(state.Send))
}

func (h *Handler) handlePollInbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state := h.workflow.PollInbox(ctx)
	h.countOp(ctx, "poll_inbox", state.InboxPoll.Kind, state.InboxPoll.Err)
	httputil.WriteJSON(w, opStatus(state.InboxPoll), toOpResponse(state.InboxPoll))
}

// handleLookup returns the transmission for an invoice. A never-sent invoice
// is a successful lookup with a null payload, not an error.
func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invoiceID, err := domain.ParseInvoiceID(chi.URLParam(r, "invoiceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	state := h.workflow.LookupTransmission(ctx, invoiceID)
	h.countOp(ctx, "lookup", state.TransmissionLookup.Kind, state.TransmissionLookup.Err)
	httputil.WriteJSON(w, opStatus(state.TransmissionLookup), toOpResponse(state.TransmissionLookup))
}

func (h *Handler) countOp(ctx context.Context, operation string, kind sending.OpKind, err error) {
	if kind != sending.OpError {
		h.metrics.CountPeppolOperation(operation, "success")
		return
	}
	h.metrics.CountPeppolOperation(operation, "error")
	h.logger.WarnContext(ctx, "peppol operation failed",
		"request_id", middleware.GetRequestID(ctx),
		"operation", operation,
		"error", dErrors.MessageOf(err),
	)
}
