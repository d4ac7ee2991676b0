// Package conv converts protocol-native integer and rational
// representations into decimal values for the solver wire format.
package conv

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Base18 is the fixed-point scale used by Balancer-style raw values.
const Base18 = 18

// FromRaw interprets a raw fixed-point integer with the given number
// of fractional digits as a decimal value.
func FromRaw(raw *big.Int, scale int32) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -scale)
}

// FromBase18 interprets a raw integer scaled by 10^18 as a decimal
// value.
func FromBase18(raw *big.Int) decimal.Decimal {
	return FromRaw(raw, Base18)
}

// FromRational converts an exact rational into a decimal value by long
// division with 18 fractional digits. A zero denominator is a
// precondition violation and panics; upstream invariants guarantee it
// cannot occur for valid pool state.
func FromRational(num, den *big.Int) decimal.Decimal {
	if den.Sign() == 0 {
		panic("conv: rational with zero denominator")
	}
	return decimal.NewFromBigRat(new(big.Rat).SetFrac(num, den), Base18)
}

// FromRat is FromRational over an already-reduced big.Rat.
func FromRat(rat *big.Rat) decimal.Decimal {
	return decimal.NewFromBigRat(rat, Base18)
}
