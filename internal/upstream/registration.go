package upstream

import (
	"context"

	"fakturo/internal/peppol"
)

// RegistrationClient drives the PEPPOL enrollment endpoints. It implements
// registration.Client.
type RegistrationClient struct {
	client *Client
}

func NewRegistrationClient(client *Client) *RegistrationClient {
	return &RegistrationClient{client: client}
}

// Get fetches the current enrollment record. A business that never started
// enrollment still gets a record, with status not_configured.
func (r *RegistrationClient) Get(ctx context.Context) (*peppol.RegistrationRecord, error) {
	var record peppol.RegistrationRecord
	if err := r.client.do(ctx, "GET", "/v1/peppol/registration", nil, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// VerifyPeppolID asks whether the enterprise number can be registered, or is
// already claimed by another access point provider.
func (r *RegistrationClient) VerifyPeppolID(ctx context.Context, enterpriseNumber string) (*peppol.VerificationResult, error) {
	body := map[string]string{"enterprise_number": enterpriseNumber}
	var result peppol.VerificationResult
	if err := r.client.do(ctx, "POST", "/v1/peppol/registration/verify", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Enable starts receiving on the network. The upstream decides whether the
// result is an immediate activation or a transfer wait.
func (r *RegistrationClient) Enable(ctx context.Context) (*peppol.RegistrationRecord, error) {
	var record peppol.RegistrationRecord
	if err := r.client.do(ctx, "POST", "/v1/peppol/registration/enable", nil, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// PollTransfer re-reads the enrollment during a pending provider transfer.
func (r *RegistrationClient) PollTransfer(ctx context.Context) (*peppol.RegistrationRecord, error) {
	var record peppol.RegistrationRecord
	if err := r.client.do(ctx, "GET", "/v1/peppol/registration/transfer", nil, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
