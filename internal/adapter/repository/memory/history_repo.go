package memory

import (
	"context"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// HistoryRepository implements usecase.HistoryRepository.
type HistoryRepository struct {
	store *Store
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(store *Store) *HistoryRepository {
	return &HistoryRepository{store: store}
}

// Append adds a record to the user's history within a transaction.
func (r *HistoryRepository) Append(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	rec := *record
	mtx.history = append(mtx.history, &rec)
	return nil
}

// ListByUser returns committed records oldest first.
func (r *HistoryRepository) ListByUser(ctx context.Context, user string, limit, offset int) ([]*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	records := r.store.history[user]
	if offset >= len(records) {
		return []*domain.Transaction{}, nil
	}
	end := len(records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]*domain.Transaction, 0, end-offset)
	for _, rec := range records[offset:end] {
		c := *rec
		out = append(out, &c)
	}
	return out, nil
}

// CountByUser returns the number of committed records for the user.
func (r *HistoryRepository) CountByUser(ctx context.Context, user string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.history[user]), nil
}
