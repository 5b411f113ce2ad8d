package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is a user's holding of one asset in canonical precision.
type Balance struct {
	User    string
	AssetID string
	Amount  decimal.Decimal
}

// ValidateDebit checks the balance covers a canonical amount.
func (b *Balance) ValidateDebit(amount decimal.Decimal) error {
	if amount.GreaterThan(b.Amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// UserBalances lists a user's balances as parallel slices in registration order.
type UserBalances struct {
	AssetIDs []string
	Amounts  []decimal.Decimal
}

// Transaction is an immutable deposit or withdrawal record in a user's history.
type Transaction struct {
	ID        string
	User      string
	AssetID   string
	Amount    decimal.Decimal // canonical precision
	IsDeposit bool
	Timestamp time.Time
}
