package domain

import "errors"

var (
	// Input errors
	ErrAmountMustBeGreaterThanZero = errors.New("amount must be greater than zero")
	ErrInvalidAmount               = errors.New("amount must be a whole number of base units")
	ErrAssetNotFound               = errors.New("asset not found")
	ErrAssetNotActive              = errors.New("asset not active")
	ErrAssetAlreadyExists          = errors.New("asset already exists")
	ErrInvalidAssetID              = errors.New("invalid asset id")
	ErrInvalidPriceFeed            = errors.New("invalid price feed")
	ErrInvalidPrincipal            = errors.New("invalid principal")
	ErrInvalidRole                 = errors.New("invalid role")
	ErrInvalidDecimals             = errors.New("unsupported decimals")

	// Invariant violations
	ErrBankCapacityExceeded   = errors.New("bank capacity exceeded")
	ErrWithdrawalExceedsLimit = errors.New("withdrawal exceeds limit")
	ErrInsufficientBalance    = errors.New("insufficient balance")

	// Oracle errors
	ErrInvalidPrice         = errors.New("invalid price")
	ErrStalePrice           = errors.New("stale price")
	ErrInvalidRoundData     = errors.New("invalid round data")
	ErrPriceFeedUnavailable = errors.New("price feed unavailable")

	// Operational errors
	ErrContractPaused = errors.New("contract paused")
	ErrAlreadyPaused  = errors.New("contract already paused")
	ErrNotPaused      = errors.New("contract not paused")
	ErrReentrantCall  = errors.New("reentrant call")

	// Transfer and arithmetic errors
	ErrTransferFailed = errors.New("transfer failed")
	ErrArithmetic     = errors.New("arithmetic overflow or underflow")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrAmountMustBeGreaterThanZero, "AMOUNT_MUST_BE_GREATER_THAN_ZERO"},
	{ErrInvalidAmount, "INVALID_AMOUNT"},
	{ErrAssetNotFound, "ASSET_NOT_FOUND"},
	{ErrAssetNotActive, "ASSET_NOT_ACTIVE"},
	{ErrAssetAlreadyExists, "ASSET_ALREADY_EXISTS"},
	{ErrInvalidAssetID, "INVALID_ASSET_ID"},
	{ErrInvalidPriceFeed, "INVALID_PRICE_FEED"},
	{ErrInvalidPrincipal, "INVALID_PRINCIPAL"},
	{ErrInvalidRole, "INVALID_ROLE"},
	{ErrInvalidDecimals, "INVALID_DECIMALS"},
	{ErrBankCapacityExceeded, "BANK_CAPACITY_EXCEEDED"},
	{ErrWithdrawalExceedsLimit, "WITHDRAWAL_EXCEEDS_LIMIT"},
	{ErrInsufficientBalance, "INSUFFICIENT_BALANCE"},
	{ErrInvalidPrice, "INVALID_PRICE"},
	{ErrStalePrice, "STALE_PRICE"},
	{ErrInvalidRoundData, "INVALID_ROUND_DATA"},
	{ErrPriceFeedUnavailable, "PRICE_FEED_UNAVAILABLE"},
	{ErrContractPaused, "CONTRACT_PAUSED"},
	{ErrAlreadyPaused, "ALREADY_PAUSED"},
	{ErrNotPaused, "NOT_PAUSED"},
	{ErrReentrantCall, "REENTRANT_CALL"},
	{ErrTransferFailed, "TRANSFER_FAILED"},
	{ErrArithmetic, "ARITHMETIC_ERROR"},
	{ErrUnauthorized, "UNAUTHORIZED"},
	{ErrInvalidToken, "INVALID_TOKEN"},
	{ErrExpiredToken, "EXPIRED_TOKEN"},
}

// ErrorCode returns a stable machine-readable code for a domain error,
// or "INTERNAL_ERROR" when err wraps none of them.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "INTERNAL_ERROR"
}
