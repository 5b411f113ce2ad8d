package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// VaultRepository implements usecase.VaultRepository over the singleton
// vault_state row. Locking that row serializes every mutation.
type VaultRepository struct {
	db querier
}

// NewVaultRepository creates a new VaultRepository.
func NewVaultRepository(pool *pgxpool.Pool) *VaultRepository {
	return newVaultRepository(pool)
}

func newVaultRepository(db querier) *VaultRepository {
	return &VaultRepository{db: db}
}

// LockForUpdate locks the vault row for the rest of tx.
func (r *VaultRepository) LockForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.VaultState, error) {
	q, err := txQuerier(tx)
	if err != nil {
		return nil, err
	}
	return scanVault(q.QueryRow(ctx, `SELECT total_value_usd::text, paused, updated_at FROM vault_state WHERE id = 1 FOR UPDATE`))
}

// Get returns the committed vault state.
func (r *VaultRepository) Get(ctx context.Context) (*domain.VaultState, error) {
	return scanVault(r.db.QueryRow(ctx, `SELECT total_value_usd::text, paused, updated_at FROM vault_state WHERE id = 1`))
}

// UpdateTotalValue sets the USD aggregate.
func (r *VaultRepository) UpdateTotalValue(ctx context.Context, tx usecase.Transaction, totalValueUSD decimal.Decimal, updatedAt time.Time) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `UPDATE vault_state SET total_value_usd = $1, updated_at = $2 WHERE id = 1`,
		decimalToNumeric(totalValueUSD), timeToPgTimestamptz(updatedAt))
	return err
}

// SetPaused sets the pause flag.
func (r *VaultRepository) SetPaused(ctx context.Context, tx usecase.Transaction, paused bool, updatedAt time.Time) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `UPDATE vault_state SET paused = $1, updated_at = $2 WHERE id = 1`,
		paused, timeToPgTimestamptz(updatedAt))
	return err
}

func scanVault(row pgx.Row) (*domain.VaultState, error) {
	var (
		state domain.VaultState
		total string
	)
	if err := row.Scan(&total, &state.Paused, &state.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if state.TotalValueUSD, err = parseNumeric(total); err != nil {
		return nil, err
	}
	return &state, nil
}
