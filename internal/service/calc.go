package service

import (
	"github.com/shopspring/decimal"

	"github.com/mvoloshin/exchange-bot/internal/domain"
)

// commissionRates by operation kind. Adding an operation kind means
// adding a table entry, not a new code branch.
var commissionRates = map[domain.Kind]decimal.Decimal{
	domain.KindClean:   decimal.RequireFromString("0.10"),
	domain.KindConvert: decimal.RequireFromString("0.02"),
}

// CalcResult is the outcome of a single calculation: the value after any
// rate conversion, the commission taken from it, and what is left.
type CalcResult struct {
	Converted  decimal.Decimal
	Commission decimal.Decimal
	Result     decimal.Decimal
}

// Clean computes the cleaning split for amount.
func Clean(amount decimal.Decimal) CalcResult {
	commission := amount.Mul(commissionRates[domain.KindClean])
	return CalcResult{
		Converted:  amount,
		Commission: commission,
		Result:     amount.Sub(commission),
	}
}

// Convert converts amount at rate and applies the crypto commission.
// Converting from the quote currency divides by the rate; converting to
// it multiplies.
func Convert(amount, rate decimal.Decimal, fromQuote bool) CalcResult {
	var converted decimal.Decimal
	if fromQuote {
		converted = amount.Div(rate)
	} else {
		converted = amount.Mul(rate)
	}
	commission := converted.Mul(commissionRates[domain.KindConvert])
	return CalcResult{
		Converted:  converted,
		Commission: commission,
		Result:     converted.Sub(commission),
	}
}
