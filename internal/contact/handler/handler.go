// Package handler exposes the contact list and duplicate detection over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fakturo/internal/contact"
	"fakturo/internal/platform/metrics"
	"fakturo/internal/platform/middleware"
	dErrors "fakturo/pkg/domain-errors"
	"fakturo/pkg/domain"
	"fakturo/pkg/platform/httputil"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// Finder runs the duplicate detection passes.
type Finder interface {
	FindDuplicates(ctx context.Context, form contact.Form, exclude domain.ContactID) []contact.PotentialDuplicate
}

// Lister returns one page of the contact book.
type Lister interface {
	List(ctx context.Context, query string, limit, offset int) ([]contact.Contact, error)
}

// Handler handles contact endpoints.
type Handler struct {
	logger  *slog.Logger
	finder  Finder
	lister  Lister
	metrics *metrics.Metrics
}

// New creates a new contact Handler.
func New(finder Finder, lister Lister, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		finder:  finder,
		lister:  lister,
		metrics: m,
	}
}

// Register registers the contact routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/contacts", h.handleList)
	r.Post("/contacts/duplicate-check", h.handleDuplicateCheck)
}

type duplicateCheckRequest struct {
	contact.Form
	ExcludeID string `json:"exclude_id,omitempty"`
}

type duplicateCheckResponse struct {
	Duplicates []contact.PotentialDuplicate `json:"duplicates"`
}

// handleDuplicateCheck runs the detection passes against the submitted form.
// An empty duplicates list is a definitive "no concerns" answer: lookup
// failures inside the detector degrade to fewer matches, never to an error.
func (h *Handler) handleDuplicateCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req duplicateCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid duplicate check request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	var exclude domain.ContactID
	if req.ExcludeID != "" {
		parsed, err := domain.ParseContactID(req.ExcludeID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		exclude = parsed
	}

	duplicates := h.finder.FindDuplicates(ctx, req.Form, exclude)
	if duplicates == nil {
		duplicates = []contact.PotentialDuplicate{}
	}
	httputil.WriteJSON(w, http.StatusOK, duplicateCheckResponse{Duplicates: duplicates})
}

type listResponse struct {
	Contacts []contact.Contact `json:"contacts"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	HasMore  bool              `json:"has_more"`
}

// handleList serves one page of contacts. A full page means there may be
// more; an exact-boundary final page costs the client one extra empty fetch.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := positiveQueryInt(r, "page", 1)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pageSize, err := positiveQueryInt(r, "page_size", defaultPageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	query := r.URL.Query().Get("q")

	contacts, err := h.lister.List(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		h.metrics.CountPageLoad("contacts", "error")
		h.logger.ErrorContext(ctx, "contact list failed",
			"request_id", middleware.GetRequestID(ctx),
			"page", page,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	h.metrics.CountPageLoad("contacts", "success")

	if contacts == nil {
		contacts = []contact.Contact{}
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{
		Contacts: contacts,
		Page:     page,
		PageSize: pageSize,
		HasMore:  len(contacts) == pageSize,
	})
}

func positiveQueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "%s must be a positive integer", name)
	}
	return n, nil
}
