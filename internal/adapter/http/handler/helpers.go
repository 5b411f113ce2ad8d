package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/iho/assetvault/internal/adapter/http/dto"
	"github.com/iho/assetvault/internal/adapter/http/middleware"
	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/infrastructure/logger"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Code:    code,
		Message: details,
	})
}

// writeDomainError maps err to a status and stable code.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := mapDomainError(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error().Err(err).Msg(message)
		writeError(w, status, domain.ErrorCode(err), message, "")
		return
	}
	writeError(w, status, domain.ErrorCode(err), message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAmountMustBeGreaterThanZero),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAssetID),
		errors.Is(err, domain.ErrInvalidPriceFeed),
		errors.Is(err, domain.ErrInvalidPrincipal),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidDecimals):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAssetAlreadyExists),
		errors.Is(err, domain.ErrAlreadyPaused),
		errors.Is(err, domain.ErrNotPaused),
		errors.Is(err, domain.ErrReentrantCall):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAssetNotActive),
		errors.Is(err, domain.ErrBankCapacityExceeded),
		errors.Is(err, domain.ErrWithdrawalExceedsLimit),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrArithmetic):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrContractPaused):
		return http.StatusLocked
	case errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrStalePrice),
		errors.Is(err, domain.ErrInvalidRoundData),
		errors.Is(err, domain.ErrTransferFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrPriceFeedUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads and validates a request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return false
	}
	if err := dto.Validate(dst); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", err.Error())
		return false
	}
	return true
}

// caller returns the authenticated principal. The router only mounts
// mutating handlers behind RequirePrincipal.
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, domain.ErrorCode(domain.ErrUnauthorized), "authentication required", "")
	}
	return principal, ok
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

func missingParam(w http.ResponseWriter, name string) {
	writeError(w, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("missing %s", name), "")
}
