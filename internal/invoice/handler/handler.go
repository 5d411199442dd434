// Package handler exposes invoice total computation over HTTP.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fakturo/internal/invoice"
	"fakturo/internal/platform/middleware"
	dErrors "fakturo/pkg/domain-errors"
	"fakturo/pkg/domain"
	"fakturo/pkg/platform/httputil"
)

const maxLineItems = 500

// Handler handles invoice endpoints.
type Handler struct {
	logger *slog.Logger
}

// New creates a new invoice Handler.
func New(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Register registers the invoice routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/invoices/totals", h.handleTotals)
}

type totalsRequest struct {
	LineItems []invoice.LineItem `json:"line_items"`
}

type totalsResponse struct {
	Subtotal  string `json:"subtotal"`
	VATAmount string `json:"vat_amount"`
	Total     string `json:"total"`
}

// handleTotals recomputes the draft totals from the submitted lines. The
// server never stores drafts; every call derives the amounts from scratch.
func (h *Handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req totalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid totals request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if len(req.LineItems) > maxLineItems {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "at most %d line items per invoice", maxLineItems))
		return
	}
	for i, item := range req.LineItems {
		if _, err := domain.ParseVATRate(item.VATRate.Percent()); err != nil {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "line %d: %s", i+1, dErrors.MessageOf(err)))
			return
		}
		if item.Quantity.IsNegative() {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "line %d: quantity cannot be negative", i+1))
			return
		}
		if item.UnitPrice.IsNegative() {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "line %d: unit price cannot be negative", i+1))
			return
		}
	}

	totals := invoice.ComputeTotals(req.LineItems)
	httputil.WriteJSON(w, http.StatusOK, totalsResponse{
		Subtotal:  invoice.FormatAmount(totals.Subtotal),
		VATAmount: invoice.FormatAmount(totals.VATAmount),
		Total:     invoice.FormatAmount(totals.Total),
	})
}
