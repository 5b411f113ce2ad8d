package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	db querier
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return newBalanceRepository(pool)
}

func newBalanceRepository(db querier) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// Get returns a committed balance, zero when none was ever recorded.
func (r *BalanceRepository) Get(ctx context.Context, user, assetID string) (decimal.Decimal, error) {
	return scanBalance(r.db.QueryRow(ctx,
		`SELECT amount::text FROM balances WHERE user_id = $1 AND asset_id = $2`, user, assetID))
}

// GetForUpdate returns a balance and locks its row if it exists.
func (r *BalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, user, assetID string) (decimal.Decimal, error) {
	q, err := txQuerier(tx)
	if err != nil {
		return decimal.Zero, err
	}
	return scanBalance(q.QueryRow(ctx,
		`SELECT amount::text FROM balances WHERE user_id = $1 AND asset_id = $2 FOR UPDATE`, user, assetID))
}

// Set upserts a balance within a transaction.
func (r *BalanceRepository) Set(ctx context.Context, tx usecase.Transaction, user, assetID string, amount decimal.Decimal, updatedAt time.Time) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `
		INSERT INTO balances (user_id, asset_id, amount, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, asset_id)
		DO UPDATE SET amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at`,
		user, assetID, decimalToNumeric(amount), timeToPgTimestamptz(updatedAt))

	return err
}

// ListByUser returns the user's balance of every registered asset in registration order.
func (r *BalanceRepository) ListByUser(ctx context.Context, user string) ([]*domain.Balance, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, COALESCE(b.amount, 0)::text
		FROM assets a
		LEFT JOIN balances b ON b.asset_id = a.id AND b.user_id = $1
		ORDER BY a.position`, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make([]*domain.Balance, 0)
	for rows.Next() {
		var assetID, amount string
		if err := rows.Scan(&assetID, &amount); err != nil {
			return nil, err
		}
		d, err := parseNumeric(amount)
		if err != nil {
			return nil, err
		}
		balances = append(balances, &domain.Balance{User: user, AssetID: assetID, Amount: d})
	}

	return balances, rows.Err()
}

// SumByAsset totals balances per asset inside tx.
func (r *BalanceRepository) SumByAsset(ctx context.Context, tx usecase.Transaction) (map[string]decimal.Decimal, error) {
	q, err := txQuerier(tx)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `SELECT asset_id, SUM(amount)::text FROM balances GROUP BY asset_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[string]decimal.Decimal)
	for rows.Next() {
		var assetID, sum string
		if err := rows.Scan(&assetID, &sum); err != nil {
			return nil, err
		}
		d, err := parseNumeric(sum)
		if err != nil {
			return nil, err
		}
		sums[assetID] = d
	}

	return sums, rows.Err()
}

func scanBalance(row pgx.Row) (decimal.Decimal, error) {
	var amount string
	if err := row.Scan(&amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return parseNumeric(amount)
}
