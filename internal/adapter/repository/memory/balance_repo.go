package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	store *Store
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(store *Store) *BalanceRepository {
	return &BalanceRepository{store: store}
}

// Get returns a committed balance, zero if the user never held the asset.
func (r *BalanceRepository) Get(ctx context.Context, user, assetID string) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if amount, ok := r.store.balances[balanceKey{user, assetID}]; ok {
		return amount, nil
	}
	return decimal.Zero, nil
}

// GetForUpdate returns the balance as seen by the transaction.
func (r *BalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, user, assetID string) (decimal.Decimal, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return decimal.Zero, err
	}
	if amount, ok := mtx.balances[balanceKey{user, assetID}]; ok {
		return amount, nil
	}
	return r.Get(ctx, user, assetID)
}

// Set writes a balance within a transaction.
func (r *BalanceRepository) Set(ctx context.Context, tx usecase.Transaction, user, assetID string, amount decimal.Decimal, updatedAt time.Time) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	mtx.balances[balanceKey{user, assetID}] = amount
	return nil
}

// ListByUser returns the user's balance of every registered asset in registration order.
func (r *BalanceRepository) ListByUser(ctx context.Context, user string) ([]*domain.Balance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	balances := make([]*domain.Balance, 0, len(r.store.assetOrder))
	for _, id := range r.store.assetOrder {
		amount, ok := r.store.balances[balanceKey{user, id}]
		if !ok {
			amount = decimal.Zero
		}
		balances = append(balances, &domain.Balance{User: user, AssetID: id, Amount: amount})
	}
	return balances, nil
}

// SumByAsset totals balances per asset as seen by the transaction.
func (r *BalanceRepository) SumByAsset(ctx context.Context, tx usecase.Transaction) (map[string]decimal.Decimal, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	merged := make(map[balanceKey]decimal.Decimal, len(r.store.balances)+len(mtx.balances))
	for k, v := range r.store.balances {
		merged[k] = v
	}
	r.store.mu.RUnlock()
	for k, v := range mtx.balances {
		merged[k] = v
	}

	sums := make(map[string]decimal.Decimal)
	for k, v := range merged {
		sums[k.assetID] = sums[k.assetID].Add(v)
	}
	return sums, nil
}
