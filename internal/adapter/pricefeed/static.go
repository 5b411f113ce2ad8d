// Package pricefeed provides PriceFeed implementations.
package pricefeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
)

// StaticFeed serves configured answers. Every Set opens a new round
// stamped with the feed's clock.
type StaticFeed struct {
	mu     sync.RWMutex
	rounds map[string]domain.RoundData
	now    func() time.Time
}

// NewStaticFeed creates a feed seeded with answers keyed by feed reference.
func NewStaticFeed(answers map[string]decimal.Decimal) *StaticFeed {
	f := &StaticFeed{
		rounds: make(map[string]domain.RoundData),
		now:    time.Now,
	}
	for ref, answer := range answers {
		f.Set(ref, answer)
	}
	return f
}

// WithClock overrides the clock used to stamp rounds.
func (f *StaticFeed) WithClock(now func() time.Time) *StaticFeed {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
	return f
}

// Set publishes a new answer for feedRef.
func (f *StaticFeed) Set(feedRef string, answer decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.rounds[feedRef].RoundID + 1
	ts := f.now()
	f.rounds[feedRef] = domain.RoundData{
		RoundID:         next,
		Answer:          answer,
		StartedAt:       ts,
		UpdatedAt:       ts,
		AnsweredInRound: next,
	}
}

// SetRound replaces the round reported for feedRef verbatim.
func (f *StaticFeed) SetRound(feedRef string, round domain.RoundData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rounds[feedRef] = round
}

// LatestRoundData returns the most recent round for feedRef.
func (f *StaticFeed) LatestRoundData(ctx context.Context, feedRef string) (*domain.RoundData, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	round, ok := f.rounds[feedRef]
	if !ok {
		return nil, fmt.Errorf("%w: unknown feed %q", domain.ErrPriceFeedUnavailable, feedRef)
	}
	return &round, nil
}
