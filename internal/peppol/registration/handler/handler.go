// Package handler exposes the PEPPOL registration state machine over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fakturo/internal/peppol"
	"fakturo/internal/peppol/registration"
	"fakturo/internal/platform/metrics"
	"fakturo/internal/platform/middleware"
	dErrors "fakturo/pkg/domain-errors"
	"fakturo/pkg/platform/httputil"
)

// Service drives the registration screen state.
type Service interface {
	Refresh(ctx context.Context) registration.State
	VerifyPeppolID(ctx context.Context, enterpriseNumber string) (registration.State, error)
	EnablePeppol(ctx context.Context) (registration.State, error)
	BackToWelcome() (registration.State, error)
	PollTransfer(ctx context.Context) (registration.State, error)
}

// Handler handles registration endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
	metrics *metrics.Metrics
}

// New creates a new registration Handler.
func New(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		metrics: m,
	}
}

// Register registers the registration routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/peppol/registration", h.handleGet)
	r.Post("/peppol/registration/verify", h.handleVerify)
	r.Post("/peppol/registration/enable", h.handleEnable)
	r.Post("/peppol/registration/back", h.handleBack)
	r.Post("/peppol/registration/poll-transfer", h.handlePollTransfer)
}

type stateResponse struct {
	Kind         string                     `json:"kind"`
	Registration *peppol.RegistrationRecord `json:"registration,omitempty"`
	Verification *peppol.VerificationResult `json:"verification,omitempty"`
	IsVerifying  bool                       `json:"is_verifying,omitempty"`
	Error        string                     `json:"error,omitempty"`
	CanEnable    bool                       `json:"can_enable"`
	CanPoll      bool                       `json:"can_poll_transfer"`
}

func toStateResponse(state registration.State) stateResponse {
	resp := stateResponse{
		Kind:         string(state.Kind),
		Registration: state.Registration,
		Verification: state.Verification,
		IsVerifying:  state.IsVerifying,
		CanEnable:    state.CanEnable(),
		CanPoll:      state.CanPollTransfer(),
	}
	if state.Err != nil {
		resp.Error = dErrors.MessageOf(state.Err)
	}
	return resp
}

// handleGet re-fetches the enrollment and returns the mapped screen state.
// A fetch failure is a renderable state (kind "error"), not an HTTP error.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	state := h.service.Refresh(r.Context())
	httputil.WriteJSON(w, http.StatusOK, toStateResponse(state))
}

type verifyRequest struct {
	EnterpriseNumber string `json:"enterprise_number"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.EnterpriseNumber == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "enterprise_number is required"))
		return
	}

	state, err := h.service.VerifyPeppolID(ctx, req.EnterpriseNumber)
	if err != nil {
		h.metrics.CountPeppolOperation("verify", "error")
		h.logger.WarnContext(ctx, "peppol id verification rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	h.metrics.CountPeppolOperation("verify", "success")
	httputil.WriteJSON(w, http.StatusOK, toStateResponse(state))
}

func (h *Handler) handleEnable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state, err := h.service.EnablePeppol(ctx)
	if err != nil {
		h.metrics.CountPeppolOperation("enable", "error")
		h.logger.WarnContext(ctx, "peppol enable rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	h.metrics.CountPeppolOperation("enable", "success")
	httputil.WriteJSON(w, http.StatusOK, toStateResponse(state))
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.BackToWelcome()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStateResponse(state))
}

func (h *Handler) handlePollTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state, err := h.service.PollTransfer(ctx)
	if err != nil {
		h.metrics.CountPeppolOperation("poll_transfer", "error")
		httputil.WriteError(w, err)
		return
	}
	h.metrics.CountPeppolOperation("poll_transfer", "success")
	httputil.WriteJSON(w, http.StatusOK, toStateResponse(state))
}
