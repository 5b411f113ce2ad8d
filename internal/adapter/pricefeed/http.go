package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
)

// roundResponse is the wire format of GET /feeds/{feedRef}/latest.
// Timestamps are unix seconds; answer carries 8 decimals.
type roundResponse struct {
	RoundID         uint64          `json:"round_id"`
	Answer          decimal.Decimal `json:"answer"`
	StartedAt       int64           `json:"started_at"`
	UpdatedAt       int64           `json:"updated_at"`
	AnsweredInRound uint64          `json:"answered_in_round"`
}

// HTTPFeed reads rounds from a remote oracle gateway.
type HTTPFeed struct {
	baseURL         string
	client          *http.Client
	maxRetries      uint64
	initialInterval time.Duration
	logger          zerolog.Logger
}

// NewHTTPFeed creates a feed client for baseURL.
func NewHTTPFeed(baseURL string, timeout time.Duration, logger zerolog.Logger) *HTTPFeed {
	return &HTTPFeed{
		baseURL:         strings.TrimRight(baseURL, "/"),
		client:          &http.Client{Timeout: timeout},
		maxRetries:      3,
		initialInterval: 100 * time.Millisecond,
		logger:          logger,
	}
}

// LatestRoundData fetches the latest round, retrying transient failures.
func (f *HTTPFeed) LatestRoundData(ctx context.Context, feedRef string) (*domain.RoundData, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.initialInterval
	b.MaxElapsedTime = 5 * time.Second

	attempt := 0
	var round *domain.RoundData
	err := backoff.Retry(func() error {
		attempt++
		var err error
		round, err = f.fetch(ctx, feedRef)
		if err != nil && !isPermanent(err) {
			f.logger.Warn().Err(err).Str("feed", feedRef).Int("attempt", attempt).Msg("price feed request failed, retrying")
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, f.maxRetries), ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrPriceFeedUnavailable, feedRef, err)
	}
	return round, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func isPermanent(err error) bool {
	var perm *backoff.PermanentError
	return errors.As(err, &perm)
}

func (f *HTTPFeed) fetch(ctx context.Context, feedRef string) (*domain.RoundData, error) {
	endpoint := fmt.Sprintf("%s/feeds/%s/latest", f.baseURL, url.PathEscape(feedRef))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		serr := &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, serr
		}
		return nil, backoff.Permanent(serr)
	}

	var payload roundResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode round: %w", err))
	}

	return &domain.RoundData{
		RoundID:         payload.RoundID,
		Answer:          payload.Answer,
		StartedAt:       time.Unix(payload.StartedAt, 0).UTC(),
		UpdatedAt:       time.Unix(payload.UpdatedAt, 0).UTC(),
		AnsweredInRound: payload.AnsweredInRound,
	}, nil
}
