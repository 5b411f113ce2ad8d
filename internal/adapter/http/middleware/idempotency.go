package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/iho/assetvault/internal/infrastructure/logger"
	"github.com/iho/assetvault/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	defaultIdempotencyTTL = 24 * time.Hour
)

// IdempotencyMiddleware replays the stored response of a POST that carries
// an Idempotency-Key already seen for the same caller and route.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		principal, _ := PrincipalFromContext(r.Context())
		scopedKey := principal + ":" + r.Method + ":" + r.URL.Path + ":" + key

		exists, cached, err := m.store.CheckAndSet(r.Context(), scopedKey, nil, m.ttl)
		if err != nil {
			logger.FromContext(r.Context()).Error().Err(err).Msg("idempotency check failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "idempotency check failed")
			return
		}

		if exists {
			if cached == nil || string(cached) == usecase.IdempotencyPending {
				writeError(w, http.StatusConflict, "REQUEST_IN_PROGRESS", "a request with this idempotency key is in progress")
				return
			}

			var stored storedResponse
			if err := json.Unmarshal(cached, &stored); err != nil {
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "corrupt idempotency record")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Idempotency-Replay", "true")
			w.WriteHeader(stored.Status)
			if len(stored.Body) > 0 {
				w.Write(stored.Body)
			}
			return
		}

		// Capture response
		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		ctx := r.Context()
		if recorder.statusCode >= 200 && recorder.statusCode < 300 {
			stored := storedResponse{Status: recorder.statusCode}
			if recorder.body.Len() > 0 {
				stored.Body = recorder.body.Bytes()
			}
			data, err := json.Marshal(stored)
			if err == nil {
				if err = m.store.Update(ctx, scopedKey, data, m.ttl); err == nil {
					return
				}
			}
			logger.FromContext(ctx).Error().Err(err).Msg("failed to store idempotent response")
		}

		// Failed operations change nothing, so the key may be reused.
		if err := m.store.Release(ctx, scopedKey); err != nil {
			logger.FromContext(ctx).Error().Err(err).Msg("failed to release idempotency key")
		}
	})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
