package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
)

// PriceOracle fetches and validates asset prices. It keeps no state between
// calls; every lookup goes to the feed.
type PriceOracle struct {
	feed    PriceFeed
	window  time.Duration
	now     func() time.Time
	metrics MetricsRecorder
}

// NewPriceOracle creates a new PriceOracle.
func NewPriceOracle(feed PriceFeed, window time.Duration) *PriceOracle {
	if window <= 0 {
		window = DefaultStalenessWindow
	}
	return &PriceOracle{
		feed:    feed,
		window:  window,
		now:     time.Now,
		metrics: nopMetrics{},
	}
}

// WithClock overrides the time source used for staleness checks.
func (o *PriceOracle) WithClock(now func() time.Time) *PriceOracle {
	o.now = now
	return o
}

// WithMetrics sets the metrics recorder.
func (o *PriceOracle) WithMetrics(m MetricsRecorder) *PriceOracle {
	if m != nil {
		o.metrics = m
	}
	return o
}

// StalenessWindow returns the configured maximum price age.
func (o *PriceOracle) StalenessWindow() time.Duration {
	return o.window
}

// GetValidatedPrice returns the asset's current USD price.
func (o *PriceOracle) GetValidatedPrice(ctx context.Context, asset *domain.Asset) (*domain.PriceQuote, error) {
	round, err := o.feed.LatestRoundData(ctx, asset.PriceFeed)
	if err != nil {
		if !isOracleError(err) {
			err = fmt.Errorf("%w: %s: %w", domain.ErrPriceFeedUnavailable, asset.PriceFeed, err)
		}
		o.metrics.ObservePriceFailure(asset.ID, err)
		return nil, err
	}

	if err := round.Validate(o.now(), o.window); err != nil {
		o.metrics.ObservePriceFailure(asset.ID, err)
		return nil, err
	}

	return &domain.PriceQuote{
		AssetID:   asset.ID,
		Price:     round.Answer,
		Decimals:  domain.PriceFeedDecimals,
		RoundID:   round.RoundID,
		UpdatedAt: round.UpdatedAt,
	}, nil
}

// ConvertToUSD values a native amount of the asset in canonical USD.
func (o *PriceOracle) ConvertToUSD(ctx context.Context, asset *domain.Asset, nativeAmount decimal.Decimal) (decimal.Decimal, error) {
	quote, err := o.GetValidatedPrice(ctx, asset)
	if err != nil {
		return decimal.Zero, err
	}

	canonical, err := asset.ToCanonical(nativeAmount)
	if err != nil {
		return decimal.Zero, err
	}

	return domain.USDValue(canonical, quote.Price)
}

func isOracleError(err error) bool {
	return errors.Is(err, domain.ErrInvalidPrice) ||
		errors.Is(err, domain.ErrStalePrice) ||
		errors.Is(err, domain.ErrInvalidRoundData) ||
		errors.Is(err, domain.ErrPriceFeedUnavailable)
}
