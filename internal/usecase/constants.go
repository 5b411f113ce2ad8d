package usecase

import "time"

const (
	// DefaultStalenessWindow is the maximum accepted age of a price answer.
	DefaultStalenessWindow = time.Hour

	// DefaultBankCapUSD is $1,000,000 in canonical precision.
	DefaultBankCapUSD = "1000000000000"

	// DefaultWithdrawalLimit is 10,000 canonical units.
	DefaultWithdrawalLimit = "10000000000"

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Operation names used in logs and metrics.
const (
	OpDeposit        = "deposit"
	OpWithdraw       = "withdraw"
	OpAddAsset       = "add_asset"
	OpSetAssetStatus = "set_asset_status"
	OpPause          = "pause"
	OpUnpause        = "unpause"
	OpGrantRole      = "grant_role"
	OpRevokeRole     = "revoke_role"
	OpRenounceRole   = "renounce_role"
)
