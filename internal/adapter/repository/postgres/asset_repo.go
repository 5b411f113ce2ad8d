package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

const pgErrUniqueViolation = "23505"

const assetColumns = `id, native_decimals, price_feed, is_native, active, total_deposited::text, created_at, updated_at`

// AssetRepository implements usecase.AssetRepository.
type AssetRepository struct {
	db querier
}

// NewAssetRepository creates a new AssetRepository.
func NewAssetRepository(pool *pgxpool.Pool) *AssetRepository {
	return newAssetRepository(pool)
}

func newAssetRepository(db querier) *AssetRepository {
	return &AssetRepository{db: db}
}

// Create registers an asset within a transaction.
func (r *AssetRepository) Create(ctx context.Context, tx usecase.Transaction, asset *domain.Asset) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `
		INSERT INTO assets (id, native_decimals, price_feed, is_native, active, total_deposited, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		asset.ID,
		int16(asset.NativeDecimals),
		asset.PriceFeed,
		asset.Native,
		asset.Active,
		decimalToNumeric(asset.TotalDeposited),
		timeToPgTimestamptz(asset.CreatedAt),
		timeToPgTimestamptz(asset.UpdatedAt),
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return domain.ErrAssetAlreadyExists
	}

	return err
}

// GetByID retrieves an asset by ID.
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	return scanAsset(r.db.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id))
}

// GetByIDForUpdate retrieves an asset and locks its row.
func (r *AssetRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Asset, error) {
	q, err := txQuerier(tx)
	if err != nil {
		return nil, err
	}
	return scanAsset(q.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1 FOR UPDATE`, id))
}

// List returns all assets in registration order.
func (r *AssetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	return listAssets(ctx, r.db, `SELECT `+assetColumns+` FROM assets ORDER BY position`)
}

// ListForUpdate returns all assets in registration order and locks them.
func (r *AssetRepository) ListForUpdate(ctx context.Context, tx usecase.Transaction) ([]*domain.Asset, error) {
	q, err := txQuerier(tx)
	if err != nil {
		return nil, err
	}
	return listAssets(ctx, q, `SELECT `+assetColumns+` FROM assets ORDER BY position FOR UPDATE`)
}

// UpdateStatus sets the active flag.
func (r *AssetRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, active bool, updatedAt time.Time) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `UPDATE assets SET active = $2, updated_at = $3 WHERE id = $1`,
		id, active, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAssetNotFound
	}
	return nil
}

// UpdateTotalDeposited sets the asset's canonical deposit total.
func (r *AssetRepository) UpdateTotalDeposited(ctx context.Context, tx usecase.Transaction, id string, total decimal.Decimal, updatedAt time.Time) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `UPDATE assets SET total_deposited = $2, updated_at = $3 WHERE id = $1`,
		id, decimalToNumeric(total), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAssetNotFound
	}
	return nil
}

func listAssets(ctx context.Context, q querier, sql string) ([]*domain.Asset, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := make([]*domain.Asset, 0)
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}

	return assets, rows.Err()
}

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var (
		asset    domain.Asset
		decimals int16
		total    string
	)

	err := row.Scan(
		&asset.ID,
		&decimals,
		&asset.PriceFeed,
		&asset.Native,
		&asset.Active,
		&total,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAssetNotFound
		}

		return nil, err
	}

	asset.NativeDecimals = uint8(decimals)
	if asset.TotalDeposited, err = parseNumeric(total); err != nil {
		return nil, err
	}

	return &asset, nil
}
