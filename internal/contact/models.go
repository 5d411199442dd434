package contact

import "fakturo/pkg/domain"

// Contact is owned by the upstream API; this service only ever reads it.
type Contact struct {
	ID        domain.ContactID `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	VATNumber string           `json:"vat_number"`
	Country   string           `json:"country"`
	City      string           `json:"city"`
}

// Form holds the fields of a contact being created or edited, as last typed
// by the user. Only the fields compared during duplicate detection appear.
type Form struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	VATNumber string `json:"vat_number"`
	Country   string `json:"country"`
}

// PotentialDuplicate pairs a matching contact with the reason it matched.
// Instances are transient: replaced on every new check, or dismissed by the
// user.
type PotentialDuplicate struct {
	Contact Contact            `json:"contact"`
	Reason  domain.MatchReason `json:"reason"`
}
