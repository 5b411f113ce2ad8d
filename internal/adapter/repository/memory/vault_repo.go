package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// VaultRepository implements usecase.VaultRepository.
type VaultRepository struct {
	store *Store
}

// NewVaultRepository creates a new VaultRepository.
func NewVaultRepository(store *Store) *VaultRepository {
	return &VaultRepository{store: store}
}

// LockForUpdate returns the vault state as seen by the transaction.
// Transactions are already exclusive, so no further locking is needed.
func (r *VaultRepository) LockForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.VaultState, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	state := r.current(mtx)
	return &state, nil
}

// Get returns the committed vault state.
func (r *VaultRepository) Get(ctx context.Context) (*domain.VaultState, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	state := r.store.vault
	return &state, nil
}

// UpdateTotalValue sets the USD aggregate within a transaction.
func (r *VaultRepository) UpdateTotalValue(ctx context.Context, tx usecase.Transaction, totalValueUSD decimal.Decimal, updatedAt time.Time) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	state := r.current(mtx)
	state.TotalValueUSD = totalValueUSD
	state.UpdatedAt = updatedAt
	mtx.vault = &state
	return nil
}

// SetPaused sets the pause flag within a transaction.
func (r *VaultRepository) SetPaused(ctx context.Context, tx usecase.Transaction, paused bool, updatedAt time.Time) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	state := r.current(mtx)
	state.Paused = paused
	state.UpdatedAt = updatedAt
	mtx.vault = &state
	return nil
}

func (r *VaultRepository) current(mtx *Tx) domain.VaultState {
	if mtx.vault != nil {
		return *mtx.vault
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.vault
}
