package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
)

// AssetRepository defines data access for registered assets.
type AssetRepository interface {
	Create(ctx context.Context, tx Transaction, asset *domain.Asset) error
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Asset, error)
	// List returns assets in registration order.
	List(ctx context.Context) ([]*domain.Asset, error)
	ListForUpdate(ctx context.Context, tx Transaction) ([]*domain.Asset, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, active bool, updatedAt time.Time) error
	UpdateTotalDeposited(ctx context.Context, tx Transaction, id string, total decimal.Decimal, updatedAt time.Time) error
}

// BalanceRepository defines data access for per-user balances.
// Missing balances read as zero.
type BalanceRepository interface {
	Get(ctx context.Context, user, assetID string) (decimal.Decimal, error)
	GetForUpdate(ctx context.Context, tx Transaction, user, assetID string) (decimal.Decimal, error)
	Set(ctx context.Context, tx Transaction, user, assetID string, amount decimal.Decimal, updatedAt time.Time) error
	// ListByUser returns one balance per registered asset, in registration order.
	ListByUser(ctx context.Context, user string) ([]*domain.Balance, error)
	SumByAsset(ctx context.Context, tx Transaction) (map[string]decimal.Decimal, error)
}

// HistoryRepository defines data access for the append-only transaction log.
type HistoryRepository interface {
	Append(ctx context.Context, tx Transaction, record *domain.Transaction) error
	// ListByUser returns records oldest first. A non-positive limit returns everything.
	ListByUser(ctx context.Context, user string, limit, offset int) ([]*domain.Transaction, error)
	CountByUser(ctx context.Context, user string) (int, error)
}

// VaultRepository defines data access for ledger-wide aggregates.
type VaultRepository interface {
	// LockForUpdate locks the vault aggregate for the rest of tx.
	LockForUpdate(ctx context.Context, tx Transaction) (*domain.VaultState, error)
	Get(ctx context.Context) (*domain.VaultState, error)
	UpdateTotalValue(ctx context.Context, tx Transaction, totalValueUSD decimal.Decimal, updatedAt time.Time) error
	SetPaused(ctx context.Context, tx Transaction, paused bool, updatedAt time.Time) error
}

// RoleRepository defines data access for role assignments.
type RoleRepository interface {
	// Grant returns false if the principal already held the role.
	Grant(ctx context.Context, tx Transaction, assignment *domain.RoleAssignment) (bool, error)
	// Revoke returns false if the principal did not hold the role.
	Revoke(ctx context.Context, tx Transaction, principal string, role domain.Role) (bool, error)
	HasRole(ctx context.Context, principal string, role domain.Role) (bool, error)
	ListByPrincipal(ctx context.Context, principal string) ([]*domain.RoleAssignment, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// PriceFeed is the external oracle. Answers carry domain.PriceFeedDecimals.
type PriceFeed interface {
	LatestRoundData(ctx context.Context, feedRef string) (*domain.RoundData, error)
}

// TransferGateway moves value between the custodian and users.
// Any returned error aborts the enclosing operation.
type TransferGateway interface {
	ReceiveNative(ctx context.Context, from string, amount decimal.Decimal) error
	PullToken(ctx context.Context, token, from string, amount decimal.Decimal) error
	PushNative(ctx context.Context, to string, amount decimal.Decimal) error
	PushToken(ctx context.Context, token, to string, amount decimal.Decimal) error
}

// AccessControl answers role membership questions.
type AccessControl interface {
	HasRole(ctx context.Context, principal string, role domain.Role) (bool, error)
}

// PauseSwitch reports whether balance mutations are halted.
type PauseSwitch interface {
	IsPaused(ctx context.Context) (bool, error)
}

// MetricsRecorder receives ledger observations.
type MetricsRecorder interface {
	ObserveDeposit(assetID string, canonicalAmount, valueUSD decimal.Decimal)
	ObserveWithdrawal(assetID string, canonicalAmount, valueUSD decimal.Decimal)
	ObserveRejection(operation string, err error)
	ObservePriceFailure(assetID string, err error)
	SetTotalValueLocked(valueUSD decimal.Decimal)
	SetAssetTotal(assetID string, total decimal.Decimal)
	SetReconciliationDiscrepancies(count int)
}

// IdempotencyPending is stored under a claimed key until the response is known.
const IdempotencyPending = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claim so the request can be retried.
	Release(ctx context.Context, key string) error
}
