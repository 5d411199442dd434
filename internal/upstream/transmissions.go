package upstream

import (
	"context"
	"net/url"
	"strconv"

	"fakturo/internal/peppol"
	"fakturo/pkg/domain"
)

// TransmissionClient drives the document exchange endpoints. It implements
// sending.Client.
type TransmissionClient struct {
	client *Client
}

func NewTransmissionClient(client *Client) *TransmissionClient {
	return &TransmissionClient{client: client}
}

// List returns one page of transmission history, newest first. Empty
// direction or status means no filter on that field.
func (t *TransmissionClient) List(ctx context.Context, direction domain.TransmissionDirection, status domain.TransmissionStatus, limit, offset int) ([]peppol.Transmission, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	if direction != "" {
		q.Set("direction", string(direction))
	}
	if status != "" {
		q.Set("status", string(status))
	}

	var resp struct {
		Transmissions []peppol.Transmission `json:"transmissions"`
	}
	if err := t.client.do(ctx, "GET", "/v1/peppol/transmissions", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transmissions, nil
}

// VerifyRecipient checks that a participant can receive documents.
func (t *TransmissionClient) VerifyRecipient(ctx context.Context, peppolID string) (*peppol.RecipientVerification, error) {
	body := map[string]string{"participant_id": peppolID}
	var result peppol.RecipientVerification
	if err := t.client.do(ctx, "POST", "/v1/peppol/recipients/verify", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateInvoice runs the upstream document validation without sending.
func (t *TransmissionClient) ValidateInvoice(ctx context.Context, invoiceID domain.InvoiceID) (*peppol.ValidationResult, error) {
	var result peppol.ValidationResult
	if err := t.client.do(ctx, "POST", "/v1/invoices/"+invoiceID.String()+"/validate", nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendInvoice transmits the invoice over the network.
func (t *TransmissionClient) SendInvoice(ctx context.Context, invoiceID domain.InvoiceID) (*peppol.SendResponse, error) {
	var resp peppol.SendResponse
	if err := t.client.do(ctx, "POST", "/v1/invoices/"+invoiceID.String()+"/send", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PollInbox asks the access point for newly received documents.
func (t *TransmissionClient) PollInbox(ctx context.Context) (*peppol.PollResponse, error) {
	var resp peppol.PollResponse
	if err := t.client.do(ctx, "POST", "/v1/peppol/inbox/poll", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetForInvoice returns the transmission for an invoice, or
// sentinel.ErrNotFound when the invoice was never sent.
func (t *TransmissionClient) GetForInvoice(ctx context.Context, invoiceID domain.InvoiceID) (*peppol.Transmission, error) {
	var tx peppol.Transmission
	if err := t.client.do(ctx, "GET", "/v1/invoices/"+invoiceID.String()+"/transmission", nil, nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
