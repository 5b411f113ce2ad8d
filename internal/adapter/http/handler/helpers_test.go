package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/iho/assetvault/internal/adapter/http/dto"
	"github.com/iho/assetvault/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/users/alice/transactions?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/users/alice/transactions?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"zero amount", domain.ErrAmountMustBeGreaterThanZero, http.StatusBadRequest},
		{"bad decimals", domain.ErrInvalidDecimals, http.StatusBadRequest},
		{"expired token", domain.ErrExpiredToken, http.StatusUnauthorized},
		{"unauthorized", fmt.Errorf("%w: alice lacks role admin", domain.ErrUnauthorized), http.StatusForbidden},
		{"asset not found", domain.ErrAssetNotFound, http.StatusNotFound},
		{"duplicate asset", domain.ErrAssetAlreadyExists, http.StatusConflict},
		{"reentrant", domain.ErrReentrantCall, http.StatusConflict},
		{"over cap", domain.ErrBankCapacityExceeded, http.StatusUnprocessableEntity},
		{"over limit", domain.ErrWithdrawalExceedsLimit, http.StatusUnprocessableEntity},
		{"arithmetic", domain.ErrArithmetic, http.StatusUnprocessableEntity},
		{"paused", domain.ErrContractPaused, http.StatusLocked},
		{"stale price", domain.ErrStalePrice, http.StatusBadGateway},
		{"transfer failed", fmt.Errorf("%w: %w", domain.ErrTransferFailed, errors.New("wallet empty")), http.StatusBadGateway},
		{"feed down", domain.ErrPriceFeedUnavailable, http.StatusServiceUnavailable},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteDomainErrorHidesInternalDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	writeDomainError(rr, req, "failed to get balance", errors.New("connection refused to 10.0.0.5"))

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if rr.Code != http.StatusInternalServerError || resp.Code != "INTERNAL_ERROR" || resp.Message != "" {
		t.Fatalf("unexpected internal error response %d %+v", rr.Code, resp)
	}
}

func TestWriteDomainErrorIncludesCode(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	writeDomainError(rr, req, "withdrawal failed", fmt.Errorf("%w: 10 > 5", domain.ErrWithdrawalExceedsLimit))

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Code != "WITHDRAWAL_EXCEEDS_LIMIT" || resp.Error != "withdrawal failed" || resp.Message == "" {
		t.Fatalf("unexpected error response %+v", resp)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusCreated, map[string]string{"status": "ok"})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}
