package domain

import "github.com/shopspring/decimal"

// Fee is a pair of non-negative token0/token1 amounts. The zero value
// represents "no fee".
type Fee struct {
	Token0 decimal.Decimal
	Token1 decimal.Decimal
}

// ZeroFee returns a fee of zero on both tokens.
func ZeroFee() Fee {
	return Fee{Token0: decimal.Zero, Token1: decimal.Zero}
}

// Add returns the component-wise sum of two fees.
func (f Fee) Add(other Fee) Fee {
	return Fee{
		Token0: f.Token0.Add(other.Token0),
		Token1: f.Token1.Add(other.Token1),
	}
}

// IsZero reports whether both components are zero.
func (f Fee) IsZero() bool {
	return f.Token0.IsZero() && f.Token1.IsZero()
}
