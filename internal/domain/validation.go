package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxPrincipalLength = 128
	MaxPriceFeedLength = 256
	// MaxNativeDecimals is the largest n with 10^n <= MaxAmount, so one
	// whole unit of any registrable asset is representable.
	MaxNativeDecimals  = 77
	DefaultPageSize    = 20
	MaxPageSize        = 100
)

// NativeAssetID is the reserved identifier of the chain's native currency.
const NativeAssetID = "0x0000000000000000000000000000000000000000"

var (
	assetIDRegex   = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	principalRegex = regexp.MustCompile(`^[A-Za-z0-9._:@\-]+$`)
)

// NormalizeAssetID lowercases a hex asset identifier.
func NormalizeAssetID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// ValidateAssetID checks an asset identifier is a 20-byte hex address.
func ValidateAssetID(id string) error {
	if !assetIDRegex.MatchString(strings.TrimSpace(id)) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetID, id)
	}
	return nil
}

// ValidatePriceFeed checks a feed reference is present.
func ValidatePriceFeed(feed string) error {
	feed = strings.TrimSpace(feed)
	if feed == "" {
		return fmt.Errorf("%w: feed reference is empty", ErrInvalidPriceFeed)
	}
	if len(feed) > MaxPriceFeedLength {
		return fmt.Errorf("%w: feed reference exceeds %d characters", ErrInvalidPriceFeed, MaxPriceFeedLength)
	}
	return nil
}

// ValidatePrincipal validates a caller identity
func ValidatePrincipal(principal string) error {
	if principal == "" || len(principal) > MaxPrincipalLength || !principalRegex.MatchString(principal) {
		return fmt.Errorf("%w: %q", ErrInvalidPrincipal, principal)
	}
	return nil
}

// ValidateAmount checks an amount is a positive whole number of base units.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountMustBeGreaterThanZero
	}
	if !amount.Equal(amount.Truncate(0)) {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: %s exceeds maximum", ErrArithmetic, amount)
	}
	return nil
}

// ValidateDecimals checks a native precision is supported.
func ValidateDecimals(decimals uint8) error {
	if decimals > MaxNativeDecimals {
		return fmt.Errorf("%w: %d exceeds %d", ErrInvalidDecimals, decimals, MaxNativeDecimals)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
