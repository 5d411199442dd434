package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "fakturo/pkg/domain-errors"
)

func TestParseVATRate(t *testing.T) {
	t.Run("accepts the belgian bands", func(t *testing.T) {
		for _, percent := range []int{0, 6, 12, 21} {
			rate, err := ParseVATRate(percent)
			require.NoError(t, err)
			assert.Equal(t, percent, rate.Percent())
		}
	})

	t.Run("rejects anything else", func(t *testing.T) {
		for _, percent := range []int{-1, 1, 5, 19, 20, 25, 100} {
			_, err := ParseVATRate(percent)
			require.Error(t, err, "rate %d", percent)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})
}

func TestVATRate_Fraction(t *testing.T) {
	cases := map[VATRate]string{
		VATRateZero:     "0",
		VATRateReduced:  "0.06",
		VATRateLowered:  "0.12",
		VATRateStandard: "0.21",
	}
	for rate, want := range cases {
		assert.Equal(t, want, rate.Fraction().String())
	}
}
