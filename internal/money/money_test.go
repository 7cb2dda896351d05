package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTotalAndSum_NoDrift(t *testing.T) {
	unit := MustParse("33.33")

	total := Sum(LineTotal(unit, 1), LineTotal(unit, 1), LineTotal(unit, 1))

	assert.True(t, total.Equal(MustParse("99.99")), "got %s", total)
	assert.Equal(t, "99.99", Display(total))
}

func TestSum_FloatWouldDrift(t *testing.T) {
	var f float64
	for i := 0; i < 10; i++ {
		f += 0.1
	}
	require.NotEqual(t, 1.0, f)

	parts := make([]decimal.Decimal, 10)
	for i := range parts {
		parts[i] = MustParse("0.1")
	}
	assert.True(t, Sum(parts...).Equal(decimal.NewFromInt(1)))
}

func TestParse(t *testing.T) {
	d, err := Parse("50")
	require.NoError(t, err)
	assert.Equal(t, "50.00", Display(d))

	_, err = Parse("-1")
	assert.Error(t, err)

	_, err = Parse("abc")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Rs. 100.50", Format(MustParse("100.5")))
	assert.Equal(t, "Rs. 0.13", Format(MustParse("0.125")))
}
