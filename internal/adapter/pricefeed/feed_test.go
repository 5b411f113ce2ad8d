package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/assetvault/internal/domain"
)

func TestStaticFeed_SetOpensNewRound(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	feed := NewStaticFeed(nil).WithClock(func() time.Time { return now })

	feed.Set("eth-usd", decimal.NewFromInt(200000000000))
	feed.Set("eth-usd", decimal.NewFromInt(210000000000))

	round, err := feed.LatestRoundData(context.Background(), "eth-usd")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), round.RoundID)
	assert.Equal(t, round.RoundID, round.AnsweredInRound)
	assert.True(t, round.Answer.Equal(decimal.NewFromInt(210000000000)))
	assert.Equal(t, now, round.UpdatedAt)
}

func TestStaticFeed_UnknownFeed(t *testing.T) {
	feed := NewStaticFeed(map[string]decimal.Decimal{"eth-usd": decimal.NewFromInt(1)})

	_, err := feed.LatestRoundData(context.Background(), "btc-usd")
	assert.ErrorIs(t, err, domain.ErrPriceFeedUnavailable)
}

func TestStaticFeed_SetRound(t *testing.T) {
	feed := NewStaticFeed(nil)
	feed.SetRound("eth-usd", domain.RoundData{RoundID: 9, AnsweredInRound: 8, Answer: decimal.NewFromInt(5)})

	round, err := feed.LatestRoundData(context.Background(), "eth-usd")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), round.AnsweredInRound)
}

func TestHTTPFeed_DecodesRound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feeds/eth-usd/latest", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"round_id":7,"answer":"200000000000","started_at":1767000000,"updated_at":1767000060,"answered_in_round":7}`))
	}))
	defer srv.Close()

	feed := NewHTTPFeed(srv.URL+"/", time.Second, zerolog.Nop())
	round, err := feed.LatestRoundData(context.Background(), "eth-usd")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), round.RoundID)
	assert.True(t, round.Answer.Equal(decimal.NewFromInt(200000000000)))
	assert.Equal(t, time.Unix(1767000060, 0).UTC(), round.UpdatedAt)
}

func TestHTTPFeed_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"round_id":1,"answer":100000000,"started_at":1,"updated_at":2,"answered_in_round":1}`))
	}))
	defer srv.Close()

	feed := NewHTTPFeed(srv.URL, time.Second, zerolog.Nop())
	feed.initialInterval = time.Millisecond

	round, err := feed.LatestRoundData(context.Background(), "usdc-usd")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.True(t, round.Answer.Equal(decimal.NewFromInt(100000000)))
}

func TestHTTPFeed_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	feed := NewHTTPFeed(srv.URL, time.Second, zerolog.Nop())
	feed.initialInterval = time.Millisecond

	_, err := feed.LatestRoundData(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrPriceFeedUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}
