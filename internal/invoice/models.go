package invoice

import (
	"github.com/shopspring/decimal"

	"fakturo/pkg/domain"
)

// LineItem is a single invoice draft line. Quantity and UnitPrice are kept as
// raw decimals; derived amounts are always recomputed from them, never stored.
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     domain.VATRate  `json:"vat_rate"`
}

// Totals is the aggregate of an invoice draft. It is derived state: callers
// recompute it whenever any line changes and never persist it independently.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	VATAmount decimal.Decimal `json:"vat_amount"`
	Total     decimal.Decimal `json:"total"`
}
