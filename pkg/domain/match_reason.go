package domain

// MatchReason tags why a contact was flagged as a potential duplicate.
// Reasons are ordered by priority: a contact matched by several criteria is
// attributed to the highest-priority one only.
type MatchReason string

const (
	MatchVATNumber      MatchReason = "vat_number"
	MatchEmail          MatchReason = "email"
	MatchNameAndCountry MatchReason = "name_and_country"
)

// String returns the string representation of the reason.
func (r MatchReason) String() string {
	return string(r)
}
