package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"fakturo/pkg/domain"
	"fakturo/pkg/platform/sentinel"
)

type PeppolClientsSuite struct {
	suite.Suite
}

func TestPeppolClientsSuite(t *testing.T) {
	suite.Run(t, new(PeppolClientsSuite))
}

func (s *PeppolClientsSuite) newServer(routes map[string]http.HandlerFunc) *httptest.Server {
	mux := http.NewServeMux()
	for pattern, h := range routes {
		// Patterns are "METHOD /path"; Go 1.21's ServeMux has no method
		// matching, so split the pattern and enforce the method here.
		method, path, ok := strings.Cut(pattern, " ")
		if !ok {
			mux.HandleFunc(pattern, h)
			continue
		}
		handler := h
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.NotFound(w, r)
				return
			}
			handler(w, r)
		})
	}
	return httptest.NewServer(mux)
}

func (s *PeppolClientsSuite) TestRegistrationClient() {
	srv := s.newServer(map[string]http.HandlerFunc{
		"GET /v1/peppol/registration": func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"status": "active", "participant_id": "0208:0123456789"})
		},
		"POST /v1/peppol/registration/verify": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(map[string]any{
				"enterprise_number": body["enterprise_number"],
				"available":         false,
				"existing_provider": "other-ap",
			})
		},
		"POST /v1/peppol/registration/enable": func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"status": "waiting_transfer"})
		},
		"GET /v1/peppol/registration/transfer": func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"status": "active"})
		},
	})
	defer srv.Close()

	c, err := NewClient(srv.URL, "token")
	s.Require().NoError(err)
	client := NewRegistrationClient(c)
	ctx := context.Background()

	s.Run("get", func() {
		record, err := client.Get(ctx)
		s.Require().NoError(err)
		s.Equal(domain.RegistrationActive, record.Status)
		s.Equal("0208:0123456789", record.ParticipantID)
	})

	s.Run("verify", func() {
		result, err := client.VerifyPeppolID(ctx, "0123456789")
		s.Require().NoError(err)
		s.Equal("0123456789", result.EnterpriseNumber)
		s.False(result.Available)
		s.Equal("other-ap", result.ExistingProvider)
	})

	s.Run("enable", func() {
		record, err := client.Enable(ctx)
		s.Require().NoError(err)
		s.Equal(domain.RegistrationWaitingTransfer, record.Status)
	})

	s.Run("poll transfer", func() {
		record, err := client.PollTransfer(ctx)
		s.Require().NoError(err)
		s.Equal(domain.RegistrationActive, record.Status)
	})
}

func (s *PeppolClientsSuite) TestTransmissionClientList() {
	var gotQuery map[string]string
	srv := s.newServer(map[string]http.HandlerFunc{
		"GET /v1/peppol/transmissions": func(w http.ResponseWriter, r *http.Request) {
			gotQuery = map[string]string{
				"direction": r.URL.Query().Get("direction"),
				"status":    r.URL.Query().Get("status"),
				"limit":     r.URL.Query().Get("limit"),
				"offset":    r.URL.Query().Get("offset"),
			}
			json.NewEncoder(w).Encode(map[string]any{
				"transmissions": []map[string]any{
					{"id": uuid.NewString(), "direction": "outgoing", "status": "delivered", "counterpart": "0208:0123456789"},
				},
			})
		},
	})
	defer srv.Close()

	c, err := NewClient(srv.URL, "token")
	s.Require().NoError(err)
	client := NewTransmissionClient(c)

	s.Run("unfiltered omits filter params", func() {
		list, err := client.List(context.Background(), "", "", 50, 0)
		s.Require().NoError(err)
		s.Len(list, 1)
		s.Equal("", gotQuery["direction"])
		s.Equal("", gotQuery["status"])
		s.Equal("50", gotQuery["limit"])
		s.Equal("0", gotQuery["offset"])
	})

	s.Run("filters pass through", func() {
		_, err := client.List(context.Background(), domain.DirectionOutgoing, domain.TransmissionDelivered, 50, 100)
		s.Require().NoError(err)
		s.Equal("outgoing", gotQuery["direction"])
		s.Equal("delivered", gotQuery["status"])
		s.Equal("100", gotQuery["offset"])
	})
}

func (s *PeppolClientsSuite) TestTransmissionClientInvoiceOperations() {
	invoiceID := domain.InvoiceID(uuid.New())
	srv := s.newServer(map[string]http.HandlerFunc{
		"POST /v1/invoices/" + invoiceID.String() + "/validate": func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"invoice_id": invoiceID.String(), "valid": false, "problems": []string{"missing buyer reference"}})
		},
		"POST /v1/invoices/" + invoiceID.String() + "/send": func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"transmission_id": uuid.NewString()})
		},
		"GET /v1/invoices/" + invoiceID.String() + "/transmission": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
		"POST /v1/peppol/inbox/poll": func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"new_documents": 2})
		},
	})
	defer srv.Close()

	c, err := NewClient(srv.URL, "token")
	s.Require().NoError(err)
	client := NewTransmissionClient(c)
	ctx := context.Background()

	s.Run("validate reports problems", func() {
		result, err := client.ValidateInvoice(ctx, invoiceID)
		s.Require().NoError(err)
		s.False(result.Valid)
		s.Equal([]string{"missing buyer reference"}, result.Problems)
	})

	s.Run("send returns transmission id", func() {
		resp, err := client.SendInvoice(ctx, invoiceID)
		s.Require().NoError(err)
		s.False(resp.TransmissionID.IsNil())
	})

	s.Run("never-sent invoice maps to not found", func() {
		_, err := client.GetForInvoice(ctx, invoiceID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("poll inbox", func() {
		resp, err := client.PollInbox(ctx)
		s.Require().NoError(err)
		s.Equal(2, resp.NewDocuments)
	})
}
