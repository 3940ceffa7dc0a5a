package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCleanSplitIsExact(t *testing.T) {
	for _, amount := range []string{"100", "0.00000001", "1234.56789", "3"} {
		a := dec(amount)
		res := Clean(a)

		assert.True(t, res.Commission.Equal(a.Mul(dec("0.10"))), "commission for %s", amount)
		assert.True(t, res.Result.Equal(a.Sub(res.Commission)), "result for %s", amount)
		// The split loses nothing.
		assert.True(t, res.Result.Add(res.Commission).Equal(a), "sum for %s", amount)
	}
}

func TestConvertFromBaseMultiplies(t *testing.T) {
	res := Convert(dec("0.01"), dec("50000"), false)

	assert.True(t, res.Converted.Equal(dec("500")), "converted = %s", res.Converted)
	assert.True(t, res.Commission.Equal(dec("10")), "commission = %s", res.Commission)
	assert.True(t, res.Result.Equal(dec("490")), "result = %s", res.Result)
}

func TestConvertFromQuoteDivides(t *testing.T) {
	res := Convert(dec("500"), dec("50000"), true)

	assert.True(t, res.Converted.Equal(dec("0.01")), "converted = %s", res.Converted)
	assert.True(t, res.Commission.Equal(dec("0.0002")), "commission = %s", res.Commission)
	assert.True(t, res.Result.Equal(dec("0.0098")), "result = %s", res.Result)
}

func TestConvertRoundTripWithoutCommission(t *testing.T) {
	// Converting and converting back at the same rate returns the
	// original amount once commission is taken out of the picture.
	for _, tc := range []struct{ amount, rate string }{
		{"1", "50000"},
		{"0.25", "4"},
		{"123.45678", "0.5"},
	} {
		a, r := dec(tc.amount), dec(tc.rate)
		forward := Convert(a, r, false)
		back := Convert(forward.Converted, r, true)
		assert.True(t, back.Converted.Equal(a), "round trip %s @ %s gave %s", tc.amount, tc.rate, back.Converted)
	}
}

func TestCommissionRateTable(t *testing.T) {
	// 10% cleaning, 2% crypto.
	clean := Clean(dec("1"))
	assert.Equal(t, "0.10000000", clean.Commission.StringFixed(8))

	conv := Convert(dec("1"), dec("1"), false)
	assert.Equal(t, "0.02000000", conv.Commission.StringFixed(8))
}
