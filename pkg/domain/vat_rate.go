package domain

import (
	"github.com/shopspring/decimal"

	dErrors "fakturo/pkg/domain-errors"
)

// VATRate is a Belgian VAT band expressed as a whole percentage.
// Invariant: the value must be one of the supported bands.
//
// Usage: construct via ParseVATRate at trust boundaries; internal callers
// that pass a rate outside the bands have a programming error, not a
// runtime-recoverable condition.
type VATRate int

// Supported VAT bands. Hard-coded per jurisdiction; making this configuration
// is deliberately out of scope until a second jurisdiction exists.
const (
	VATRateZero     VATRate = 0
	VATRateReduced  VATRate = 6
	VATRateLowered  VATRate = 12
	VATRateStandard VATRate = 21
)

// validVATRates is the single source of truth for valid bands.
var validVATRates = map[VATRate]bool{
	VATRateZero:     true,
	VATRateReduced:  true,
	VATRateLowered:  true,
	VATRateStandard: true,
}

// ParseVATRate constructs a VATRate from external input.
//
// Errors: returns CodeInvalidInput when the percentage is not a supported
// band; no other errors are expected.
func ParseVATRate(percent int) (VATRate, error) {
	r := VATRate(percent)
	if !r.IsValid() {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "unsupported VAT rate: %d", percent)
	}
	return r, nil
}

// IsValid checks if the rate is one of the supported bands.
func (r VATRate) IsValid() bool {
	return validVATRates[r]
}

// Percent returns the whole-number percentage.
func (r VATRate) Percent() int {
	return int(r)
}

// Fraction returns the rate as a decimal fraction (21 -> 0.21).
func (r VATRate) Fraction() decimal.Decimal {
	return decimal.New(int64(r), -2)
}
