package domain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	// CanonicalDecimals is the precision every balance and aggregate is stored in.
	CanonicalDecimals uint8 = 6

	// PriceFeedDecimals is the precision of every price feed answer.
	PriceFeedDecimals uint8 = 8
)

// MaxAmount is the largest representable amount (2^256 - 1).
var MaxAmount = decimal.NewFromBigInt(
	new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)),
	0,
)

// Normalize converts an integer amount between two decimal precisions.
// Scaling down truncates; the remainder below the target unit is dropped.
func Normalize(amount decimal.Decimal, fromDecimals, toDecimals uint8) (decimal.Decimal, error) {
	if err := checkRange(amount); err != nil {
		return decimal.Zero, err
	}

	switch {
	case fromDecimals == toDecimals:
		return amount, nil
	case fromDecimals > toDecimals:
		return amount.Shift(-int32(fromDecimals - toDecimals)).Truncate(0), nil
	default:
		scaled := amount.Shift(int32(toDecimals - fromDecimals))
		if scaled.GreaterThan(MaxAmount) {
			return decimal.Zero, fmt.Errorf("%w: scaling %s from %d to %d decimals", ErrArithmetic, amount, fromDecimals, toDecimals)
		}
		return scaled, nil
	}
}

// CheckedAdd returns a+b or ErrArithmetic if the sum exceeds MaxAmount.
func CheckedAdd(a, b decimal.Decimal) (decimal.Decimal, error) {
	sum := a.Add(b)
	if sum.GreaterThan(MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: %s + %s", ErrArithmetic, a, b)
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrArithmetic if the result would be negative.
func CheckedSub(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.GreaterThan(a) {
		return decimal.Zero, fmt.Errorf("%w: %s - %s", ErrArithmetic, a, b)
	}
	return a.Sub(b), nil
}

// USDValue prices a canonical amount with a feed answer, yielding canonical USD.
func USDValue(canonicalAmount, price decimal.Decimal) (decimal.Decimal, error) {
	product := canonicalAmount.Mul(price)
	if product.GreaterThan(MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: %s * %s", ErrArithmetic, canonicalAmount, price)
	}
	return product.Shift(-int32(PriceFeedDecimals)).Truncate(0), nil
}

func checkRange(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: negative amount %s", ErrArithmetic, amount)
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: amount %s out of range", ErrArithmetic, amount)
	}
	return nil
}
