package usecase

import (
	"context"

	"github.com/iho/assetvault/internal/domain"
)

// HistoryUseCase maintains the append-only per-user transaction log.
type HistoryUseCase struct {
	historyRepo HistoryRepository
}

// NewHistoryUseCase creates a new HistoryUseCase.
func NewHistoryUseCase(historyRepo HistoryRepository) *HistoryUseCase {
	return &HistoryUseCase{historyRepo: historyRepo}
}

// Append records a committed balance change inside tx.
func (uc *HistoryUseCase) Append(ctx context.Context, tx Transaction, record *domain.Transaction) error {
	return uc.historyRepo.Append(ctx, tx, record)
}

// GetTransactionHistory returns the user's full history, oldest first.
func (uc *HistoryUseCase) GetTransactionHistory(ctx context.Context, user string) ([]*domain.Transaction, error) {
	records, err := uc.historyRepo.ListByUser(ctx, user, 0, 0)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*domain.Transaction{}
	}
	return records, nil
}

// HistoryPage is one page of a user's history.
type HistoryPage struct {
	Items  []*domain.Transaction
	Total  int
	Limit  int
	Offset int
}

// GetTransactionHistoryPage returns a window of the user's history, oldest first.
func (uc *HistoryUseCase) GetTransactionHistoryPage(ctx context.Context, user string, limit, offset int) (*HistoryPage, error) {
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := uc.historyRepo.CountByUser(ctx, user)
	if err != nil {
		return nil, err
	}

	items, err := uc.historyRepo.ListByUser(ctx, user, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Transaction{}
	}

	return &HistoryPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}
