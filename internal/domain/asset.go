package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset represents a supported asset held in custody.
type Asset struct {
	ID             string
	NativeDecimals uint8
	PriceFeed      string
	Native         bool
	Active         bool
	// TotalDeposited is the sum of all user balances, in canonical precision.
	TotalDeposited decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ApplyDeposit returns the new total after crediting a canonical amount.
func (a *Asset) ApplyDeposit(canonicalAmount decimal.Decimal) (decimal.Decimal, error) {
	return CheckedAdd(a.TotalDeposited, canonicalAmount)
}

// ApplyWithdrawal returns the new total after debiting a canonical amount.
func (a *Asset) ApplyWithdrawal(canonicalAmount decimal.Decimal) (decimal.Decimal, error) {
	return CheckedSub(a.TotalDeposited, canonicalAmount)
}

// ToCanonical converts an amount in the asset's native precision.
func (a *Asset) ToCanonical(nativeAmount decimal.Decimal) (decimal.Decimal, error) {
	return Normalize(nativeAmount, a.NativeDecimals, CanonicalDecimals)
}

// ToNative converts a canonical amount back to the asset's native precision.
func (a *Asset) ToNative(canonicalAmount decimal.Decimal) (decimal.Decimal, error) {
	return Normalize(canonicalAmount, CanonicalDecimals, a.NativeDecimals)
}

// VaultState holds the ledger-wide aggregates.
type VaultState struct {
	// TotalValueUSD is maintained incrementally at the price of each operation.
	TotalValueUSD decimal.Decimal
	Paused        bool
	UpdatedAt     time.Time
}
