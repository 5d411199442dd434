package invoice

import (
	"strings"

	"github.com/shopspring/decimal"

	"fakturo/pkg/domain"
)

// Line and invoice totals are pure functions over raw quantities and prices.
// Amounts are never derived from a previously rounded display string;
// rounding happens once, at display time, via FormatAmount.

// LineTotal computes quantity × unit price for one line.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice)
}

// VATAmount computes the VAT due on a line total at the given rate.
func VATAmount(lineTotal decimal.Decimal, rate domain.VATRate) decimal.Decimal {
	return lineTotal.Mul(rate.Fraction())
}

// ComputeTotals sums per-line derived amounts into invoice totals.
// Total = Subtotal + VATAmount holds exactly: both are sums of the same
// per-line values, with no separate aggregate rounding.
func ComputeTotals(items []LineItem) Totals {
	subtotal := decimal.Zero
	vat := decimal.Zero
	for _, item := range items {
		lineTotal := LineTotal(item.Quantity, item.UnitPrice)
		subtotal = subtotal.Add(lineTotal)
		vat = vat.Add(VATAmount(lineTotal, item.VATRate))
	}
	return Totals{
		Subtotal:  subtotal,
		VATAmount: vat,
		Total:     subtotal.Add(vat),
	}
}

// ParseUnitPrice parses free-text user input into a unit price. Invalid or
// negative input is rejected and the prior valid value retained; no error
// surfaces to the caller. Both "," and "." decimal separators are accepted,
// matching what users type in this locale.
func ParseUnitPrice(text string, prior decimal.Decimal) decimal.Decimal {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", "."))
	if text == "" {
		return prior
	}
	parsed, err := decimal.NewFromString(text)
	if err != nil || parsed.IsNegative() {
		return prior
	}
	return parsed
}

// FormatAmount renders an amount as a fixed 2-decimal string, rounding
// half-up. Purely presentational; computed amounts keep full precision.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
