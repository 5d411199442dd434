package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"fakturo/internal/peppol"
	"fakturo/internal/peppol/registration"
	dErrors "fakturo/pkg/domain-errors"
	"fakturo/pkg/domain"
)

type stubService struct {
	state     registration.State
	err       error
	gotNumber string
}

func (s *stubService) Refresh(context.Context) registration.State { return s.state }

func (s *stubService) VerifyPeppolID(_ context.Context, enterpriseNumber string) (registration.State, error) {
	s.gotNumber = enterpriseNumber
	return s.state, s.err
}

func (s *stubService) EnablePeppol(context.Context) (registration.State, error) {
	return s.state, s.err
}

func (s *stubService) BackToWelcome() (registration.State, error) {
	return s.state, s.err
}

func (s *stubService) PollTransfer(context.Context) (registration.State, error) {
	return s.state, s.err
}

type RegistrationHandlerSuite struct {
	suite.Suite
	service *stubService
	router  chi.Router
}

func TestRegistrationHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegistrationHandlerSuite))
}

func (s *RegistrationHandlerSuite) SetupTest() {
	s.service = &stubService{}
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *RegistrationHandlerSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RegistrationHandlerSuite) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RegistrationHandlerSuite) TestHandleGet() {
	s.Run("active registration", func() {
		s.service.state = registration.State{
			Kind: registration.KindActive,
			Registration: &peppol.RegistrationRecord{
				Status:        domain.RegistrationActive,
				ParticipantID: "0208:0123456789",
			},
		}

		w := s.get("/peppol/registration")
		s.Equal(http.StatusOK, w.Code)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("active", resp["kind"])
		s.Equal(false, resp["can_enable"])
		s.Equal(false, resp["can_poll_transfer"])
	})

	s.Run("welcome allows enabling", func() {
		s.service.state = registration.State{Kind: registration.KindWelcome}

		w := s.get("/peppol/registration")
		var resp map[string]any
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("welcome", resp["kind"])
		s.Equal(true, resp["can_enable"])
	})

	s.Run("fetch failure renders error state with 200", func() {
		s.service.state = registration.State{
			Kind: registration.KindError,
			Err:  dErrors.New(dErrors.CodeUnavailable, "upstream down"),
		}

		w := s.get("/peppol/registration")
		s.Equal(http.StatusOK, w.Code)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("error", resp["kind"])
		s.Equal("upstream down", resp["error"])
	})
}

func (s *RegistrationHandlerSuite) TestHandleVerify() {
	s.Run("forwards enterprise number", func() {
		s.service.state = registration.State{
			Kind: registration.KindVerificationResult,
			Verification: &peppol.VerificationResult{
				EnterpriseNumber: "0123456789",
				Available:        true,
			},
		}

		w := s.post("/peppol/registration/verify", `{"enterprise_number": "0123456789"}`)
		s.Equal(http.StatusOK, w.Code)
		s.Equal("0123456789", s.service.gotNumber)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("verification_result", resp["kind"])
		s.Equal(true, resp["can_enable"])
	})

	s.Run("missing enterprise number rejected", func() {
		w := s.post("/peppol/registration/verify", `{}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("wrong-state transition maps to conflict", func() {
		s.service.err = dErrors.New(dErrors.CodeConflict, "verification only available from welcome")

		w := s.post("/peppol/registration/verify", `{"enterprise_number": "0123456789"}`)
		s.Equal(http.StatusConflict, w.Code)

		var resp map[string]string
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("conflict", resp["error"])
	})
}

func (s *RegistrationHandlerSuite) TestHandleEnable() {
	s.service.state = registration.State{
		Kind:         registration.KindWaitingTransfer,
		Registration: &peppol.RegistrationRecord{Status: domain.RegistrationWaitingTransfer},
	}

	w := s.post("/peppol/registration/enable", ``)
	s.Equal(http.StatusOK, w.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("waiting_transfer", resp["kind"])
	s.Equal(true, resp["can_poll_transfer"])
}

func (s *RegistrationHandlerSuite) TestHandlePollTransfer() {
	s.Run("not waiting is a conflict", func() {
		s.service.err = dErrors.New(dErrors.CodeConflict, "no transfer in progress")

		w := s.post("/peppol/registration/poll-transfer", ``)
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("transfer completed", func() {
		s.service.err = nil
		s.service.state = registration.State{
			Kind:         registration.KindActive,
			Registration: &peppol.RegistrationRecord{Status: domain.RegistrationActive},
		}

		w := s.post("/peppol/registration/poll-transfer", ``)
		s.Equal(http.StatusOK, w.Code)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("active", resp["kind"])
	})
}
