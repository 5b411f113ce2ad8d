package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// AssetRepository implements usecase.AssetRepository.
type AssetRepository struct {
	store *Store
}

// NewAssetRepository creates a new AssetRepository.
func NewAssetRepository(store *Store) *AssetRepository {
	return &AssetRepository{store: store}
}

// Create registers a new asset within a transaction.
func (r *AssetRepository) Create(ctx context.Context, tx usecase.Transaction, asset *domain.Asset) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if _, err := r.lookup(mtx, asset.ID); err == nil {
		return domain.ErrAssetAlreadyExists
	}
	mtx.assets[asset.ID] = copyAsset(asset)
	mtx.newAssets = append(mtx.newAssets, asset.ID)
	return nil
}

// GetByID retrieves a committed asset.
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.assets[id]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	return copyAsset(a), nil
}

// GetByIDForUpdate retrieves an asset as seen by the transaction.
func (r *AssetRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Asset, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	a, err := r.lookup(mtx, id)
	if err != nil {
		return nil, err
	}
	return copyAsset(a), nil
}

// List returns committed assets in registration order.
func (r *AssetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	assets := make([]*domain.Asset, 0, len(r.store.assetOrder))
	for _, id := range r.store.assetOrder {
		assets = append(assets, copyAsset(r.store.assets[id]))
	}
	return assets, nil
}

// ListForUpdate returns assets as seen by the transaction, in registration order.
func (r *AssetRepository) ListForUpdate(ctx context.Context, tx usecase.Transaction) ([]*domain.Asset, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	order := append(append([]string{}, r.store.assetOrder...), mtx.newAssets...)
	r.store.mu.RUnlock()

	assets := make([]*domain.Asset, 0, len(order))
	for _, id := range order {
		a, err := r.lookup(mtx, id)
		if err != nil {
			return nil, err
		}
		assets = append(assets, copyAsset(a))
	}
	return assets, nil
}

// UpdateStatus sets an asset's active flag within a transaction.
func (r *AssetRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, active bool, updatedAt time.Time) error {
	return r.update(tx, id, func(a *domain.Asset) {
		a.Active = active
		a.UpdatedAt = updatedAt
	})
}

// UpdateTotalDeposited sets an asset's canonical deposit total within a transaction.
func (r *AssetRepository) UpdateTotalDeposited(ctx context.Context, tx usecase.Transaction, id string, total decimal.Decimal, updatedAt time.Time) error {
	return r.update(tx, id, func(a *domain.Asset) {
		a.TotalDeposited = total
		a.UpdatedAt = updatedAt
	})
}

func (r *AssetRepository) update(tx usecase.Transaction, id string, apply func(*domain.Asset)) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	a, err := r.lookup(mtx, id)
	if err != nil {
		return err
	}
	updated := copyAsset(a)
	apply(updated)
	mtx.assets[id] = updated
	return nil
}

func (r *AssetRepository) lookup(mtx *Tx, id string) (*domain.Asset, error) {
	if a, ok := mtx.assets[id]; ok {
		return a, nil
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if a, ok := r.store.assets[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAssetNotFound
}
