package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RoundData is the latest answer reported by a price feed.
type RoundData struct {
	RoundID         uint64
	Answer          decimal.Decimal
	StartedAt       time.Time
	UpdatedAt       time.Time
	AnsweredInRound uint64
}

// Validate applies the oracle checks in order: positive answer,
// freshness within window, and round completeness.
func (r RoundData) Validate(now time.Time, window time.Duration) error {
	if !r.Answer.IsPositive() {
		return fmt.Errorf("%w: answer %s", ErrInvalidPrice, r.Answer)
	}
	if now.Sub(r.UpdatedAt) > window {
		return fmt.Errorf("%w: updated at %s", ErrStalePrice, r.UpdatedAt.UTC().Format(time.RFC3339))
	}
	if r.AnsweredInRound < r.RoundID {
		return fmt.Errorf("%w: answered in round %d < round %d", ErrInvalidRoundData, r.AnsweredInRound, r.RoundID)
	}
	return nil
}

// PriceQuote is a validated USD price with PriceFeedDecimals precision.
type PriceQuote struct {
	AssetID   string
	Price     decimal.Decimal
	Decimals  uint8
	RoundID   uint64
	UpdatedAt time.Time
}
