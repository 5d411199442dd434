package sending

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"fakturo/internal/peppol"
	"fakturo/pkg/domain"
	"fakturo/pkg/platform/sentinel"
)

type listCall struct {
	direction domain.TransmissionDirection
	status    domain.TransmissionStatus
	limit     int
	offset    int
}

type fakeTransmissionClient struct {
	mu sync.Mutex

	transmissions []peppol.Transmission
	listErr       error
	listCalls     []listCall

	verifyErr   error
	validateErr error
	sendErr     error
	sendCalls   int
	pollErr     error
	newDocs     int

	lookupResult *peppol.Transmission
	lookupErr    error

	// blockSend, when set, holds SendInvoice until released. Used to observe
	// slot isolation while an operation is in flight.
	blockSend chan struct{}
}

func (f *fakeTransmissionClient) List(_ context.Context, direction domain.TransmissionDirection, status domain.TransmissionStatus, limit, offset int) ([]peppol.Transmission, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, listCall{direction, status, limit, offset})
	f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	end := offset + limit
	if offset >= len(f.transmissions) {
		return nil, nil
	}
	if end > len(f.transmissions) {
		end = len(f.transmissions)
	}
	return f.transmissions[offset:end], nil
}

func (f *fakeTransmissionClient) VerifyRecipient(_ context.Context, peppolID string) (*peppol.RecipientVerification, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &peppol.RecipientVerification{ParticipantID: peppolID, Registered: true}, nil
}

func (f *fakeTransmissionClient) ValidateInvoice(_ context.Context, invoiceID domain.InvoiceID) (*peppol.ValidationResult, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	return &peppol.ValidationResult{InvoiceID: invoiceID, Valid: true}, nil
}

func (f *fakeTransmissionClient) SendInvoice(_ context.Context, invoiceID domain.InvoiceID) (*peppol.SendResponse, error) {
	if f.blockSend != nil {
		<-f.blockSend
	}
	f.mu.Lock()
	f.sendCalls++
	f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &peppol.SendResponse{
		TransmissionID: domain.TransmissionID(uuid.New()),
		SentAt:         time.Now(),
	}, nil
}

func (f *fakeTransmissionClient) PollInbox(context.Context) (*peppol.PollResponse, error) {
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	return &peppol.PollResponse{NewDocuments: f.newDocs}, nil
}

func (f *fakeTransmissionClient) GetForInvoice(_ context.Context, _ domain.InvoiceID) (*peppol.Transmission, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.lookupResult, nil
}

func (f *fakeTransmissionClient) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

func makeTransmissions(n int) []peppol.Transmission {
	out := make([]peppol.Transmission, n)
	for i := range out {
		out[i] = peppol.Transmission{
			ID:          domain.TransmissionID(uuid.New()),
			Direction:   domain.DirectionOutgoing,
			Status:      domain.TransmissionDelivered,
			Counterpart: fmt.Sprintf("0208:%010d", i),
			CreatedAt:   time.Now(),
		}
	}
	return out
}

type SendWorkflowSuite struct {
	suite.Suite
	client   *fakeTransmissionClient
	workflow *Workflow
}

func TestSendWorkflowSuite(t *testing.T) {
	suite.Run(t, new(SendWorkflowSuite))
}

func (s *SendWorkflowSuite) SetupTest() {
	s.client = &fakeTransmissionClient{transmissions: makeTransmissions(5)}
	var err error
	s.workflow, err = New(s.client)
	s.Require().NoError(err)
}

func (s *SendWorkflowSuite) TestNew() {
	s.Run("nil client returns error", func() {
		_, err := New(nil)
		s.Error(err)
	})

	s.Run("starts idle with all slots idle", func() {
		state := s.workflow.Snapshot()
		s.Equal(KindIdle, state.Kind)
		s.Equal(OpIdle, state.Verification.Kind)
		s.Equal(OpIdle, state.Validation.Kind)
		s.Equal(OpIdle, state.Send.Kind)
		s.Equal(OpIdle, state.InboxPoll.Kind)
		s.Equal(OpIdle, state.TransmissionLookup.Kind)
	})
}

func (s *SendWorkflowSuite) TestLoad() {
	s.Run("loads first history page into content", func() {
		state := s.workflow.Load(context.Background())
		s.Equal(KindContent, state.Kind)
		s.Len(state.History.Pagination.Data, 5)
		s.False(state.History.Pagination.HasMorePages)
	})

	s.Run("first page failure yields error with retry", func() {
		s.client.listErr = errors.New("upstream down")
		state := s.workflow.Load(context.Background())
		s.Equal(KindError, state.Kind)
		s.Error(state.Err)

		s.client.listErr = nil
		state = s.workflow.Load(context.Background())
		s.Equal(KindContent, state.Kind)
	})
}

func (s *SendWorkflowSuite) TestHistoryPaginationUsesPageSize50() {
	s.client.transmissions = makeTransmissions(120)
	ctx := context.Background()

	s.workflow.Load(ctx)
	state := s.workflow.Snapshot()
	s.Len(state.History.Pagination.Data, 50)
	s.True(state.History.Pagination.HasMorePages)

	state = s.workflow.LoadMoreHistory(ctx)
	s.Len(state.History.Pagination.Data, 100)

	state = s.workflow.LoadMoreHistory(ctx)
	s.Len(state.History.Pagination.Data, 120)
	s.False(state.History.Pagination.HasMorePages)

	calls := s.client.listCalls
	s.Require().Len(calls, 3)
	s.Equal(0, calls[0].offset)
	s.Equal(50, calls[1].offset)
	s.Equal(100, calls[2].offset)
	for _, c := range calls {
		s.Equal(50, c.limit)
	}
}

func (s *SendWorkflowSuite) TestFilterChangeResetsPagination() {
	s.client.transmissions = makeTransmissions(80)
	ctx := context.Background()

	s.workflow.Load(ctx)
	s.workflow.LoadMoreHistory(ctx)
	s.Len(s.workflow.Snapshot().History.Pagination.Data, 80)

	state := s.workflow.SetHistoryFilter(ctx, HistoryFilter{
		Direction: domain.DirectionOutgoing,
		Status:    domain.TransmissionDelivered,
	})
	s.Len(state.History.Pagination.Data, 50)
	s.Equal(1, state.History.Pagination.CurrentPage)

	last := s.client.listCalls[len(s.client.listCalls)-1]
	s.Equal(domain.DirectionOutgoing, last.direction)
	s.Equal(domain.TransmissionDelivered, last.status)
	s.Equal(0, last.offset)
}

func (s *SendWorkflowSuite) TestFilterOnFirstVisitLoadsFilteredHistory() {
	s.client.transmissions = makeTransmissions(10)
	ctx := context.Background()

	state := s.workflow.SetHistoryFilter(ctx, HistoryFilter{Direction: domain.DirectionIncoming})
	s.Equal(KindContent, state.Kind)
	s.Len(state.History.Pagination.Data, 10)

	s.Require().Len(s.client.listCalls, 1)
	first := s.client.listCalls[0]
	s.Equal(domain.DirectionIncoming, first.direction)
	s.Equal(0, first.offset)
}

func (s *SendWorkflowSuite) TestVerifyRecipient() {
	pid, err := domain.ParseParticipantID("0208:0123456789")
	s.Require().NoError(err)

	state := s.workflow.VerifyRecipient(context.Background(), pid)
	s.Equal(OpSuccess, state.Verification.Kind)
	s.Require().NotNil(state.Verification.Payload)
	s.True(state.Verification.Payload.Registered)
}

func (s *SendWorkflowSuite) TestSendSuccessRefreshesHistory() {
	ctx := context.Background()
	s.workflow.Load(ctx)
	before := s.client.listCallCount()

	state := s.workflow.SendInvoice(ctx, domain.InvoiceID(uuid.New()))
	s.Equal(OpSuccess, state.Send.Kind)
	s.Require().NotNil(state.Send.Payload)
	s.False(state.Send.Payload.TransmissionID.IsNil())
	s.Equal(before+1, s.client.listCallCount(), "send success must refresh the history")
}

func (s *SendWorkflowSuite) TestSendFailureSetsErrorWithRetry() {
	ctx := context.Background()
	s.workflow.Load(ctx)
	historyCalls := s.client.listCallCount()

	s.client.sendErr = errors.New("access point rejected")
	state := s.workflow.SendInvoice(ctx, domain.InvoiceID(uuid.New()))
	s.Equal(OpError, state.Send.Kind)
	s.Error(state.Send.Err)
	s.Require().NotNil(state.Send.Retry)
	s.Equal(historyCalls, s.client.listCallCount(), "failed send must not refresh the history")
	s.Equal(1, s.client.sendCalls)

	// Retry re-invokes the same send; no automatic retry happened meanwhile.
	s.client.sendErr = nil
	state.Send.Retry(ctx)
	s.Equal(2, s.client.sendCalls)
	s.Equal(OpSuccess, s.workflow.Snapshot().Send.Kind)
}

func (s *SendWorkflowSuite) TestPollInboxRefreshGating() {
	ctx := context.Background()
	s.workflow.Load(ctx)

	s.Run("no new documents means no refresh", func() {
		before := s.client.listCallCount()
		s.client.newDocs = 0
		state := s.workflow.PollInbox(ctx)
		s.Equal(OpSuccess, state.InboxPoll.Kind)
		s.Equal(before, s.client.listCallCount())
	})

	s.Run("new documents trigger a refresh", func() {
		before := s.client.listCallCount()
		s.client.newDocs = 3
		state := s.workflow.PollInbox(ctx)
		s.Equal(OpSuccess, state.InboxPoll.Kind)
		s.Equal(3, state.InboxPoll.Payload.NewDocuments)
		s.Equal(before+1, s.client.listCallCount())
	})
}

func (s *SendWorkflowSuite) TestLookupTransmission() {
	ctx := context.Background()

	s.Run("found", func() {
		tx := makeTransmissions(1)
		s.client.lookupResult = &tx[0]
		state := s.workflow.LookupTransmission(ctx, domain.InvoiceID(uuid.New()))
		s.Equal(OpSuccess, state.TransmissionLookup.Kind)
		s.NotNil(state.TransmissionLookup.Payload)
	})

	s.Run("not found is success with nil payload", func() {
		s.client.lookupResult = nil
		s.client.lookupErr = sentinel.ErrNotFound
		state := s.workflow.LookupTransmission(ctx, domain.InvoiceID(uuid.New()))
		s.Equal(OpSuccess, state.TransmissionLookup.Kind)
		s.Nil(state.TransmissionLookup.Payload)
	})

	s.Run("failure sets error slot", func() {
		s.client.lookupErr = errors.New("timeout")
		state := s.workflow.LookupTransmission(ctx, domain.InvoiceID(uuid.New()))
		s.Equal(OpError, state.TransmissionLookup.Kind)
	})
}

func (s *SendWorkflowSuite) TestSlotIsolation() {
	ctx := context.Background()
	s.workflow.Load(ctx)

	// Hold SendInvoice in flight, then run VerifyRecipient to completion.
	s.client.blockSend = make(chan struct{})
	done := make(chan State, 1)
	go func() {
		done <- s.workflow.SendInvoice(ctx, domain.InvoiceID(uuid.New()))
	}()

	// Wait for the send slot to enter Loading.
	s.Require().Eventually(func() bool {
		return s.workflow.Snapshot().Send.Kind == OpLoading
	}, time.Second, 5*time.Millisecond)

	pid, err := domain.ParseParticipantID("0208:0123456789")
	s.Require().NoError(err)
	state := s.workflow.VerifyRecipient(ctx, pid)

	// Verification completed while send is still loading; neither slot
	// touched the other.
	s.Equal(OpSuccess, state.Verification.Kind)
	s.Equal(OpLoading, state.Send.Kind)

	close(s.client.blockSend)
	final := <-done
	s.Equal(OpSuccess, final.Send.Kind)
	s.Equal(OpSuccess, final.Verification.Kind, "send completion must not reset the verification slot")
}
