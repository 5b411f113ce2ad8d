package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// HistoryRepository implements usecase.HistoryRepository.
type HistoryRepository struct {
	db querier
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return newHistoryRepository(pool)
}

func newHistoryRepository(db querier) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append adds a record within a transaction.
func (r *HistoryRepository) Append(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `
		INSERT INTO transactions (id, user_id, asset_id, amount, is_deposit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		record.ID,
		record.User,
		record.AssetID,
		decimalToNumeric(record.Amount),
		record.IsDeposit,
		timeToPgTimestamptz(record.Timestamp),
	)

	return err
}

// ListByUser returns records oldest first. A non-positive limit returns everything.
func (r *HistoryRepository) ListByUser(ctx context.Context, user string, limit, offset int) ([]*domain.Transaction, error) {
	const base = `SELECT id, user_id, asset_id, amount::text, is_deposit, created_at
		FROM transactions WHERE user_id = $1 ORDER BY seq`

	sql, args := base+` OFFSET $2`, []any{user, offset}
	if limit > 0 {
		sql, args = base+` LIMIT $2 OFFSET $3`, []any{user, limit, offset}
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.Transaction, 0)
	for rows.Next() {
		var (
			rec    domain.Transaction
			amount string
		)
		if err := rows.Scan(&rec.ID, &rec.User, &rec.AssetID, &amount, &rec.IsDeposit, &rec.Timestamp); err != nil {
			return nil, err
		}
		if rec.Amount, err = parseNumeric(amount); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// CountByUser returns the number of records for the user.
func (r *HistoryRepository) CountByUser(ctx context.Context, user string) (int, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, user).Scan(&count)
	return int(count), err
}
