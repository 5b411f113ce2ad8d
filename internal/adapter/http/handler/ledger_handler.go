package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/adapter/http/dto"
	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	Deposit(ctx context.Context, input usecase.DepositInput) (*usecase.BalanceChange, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*usecase.BalanceChange, error)
	GetVaultBalance(ctx context.Context, user, assetID string) (decimal.Decimal, error)
	GetAllBalances(ctx context.Context, user string) (*domain.UserBalances, error)
	TotalValueLockedUSD(ctx context.Context) (decimal.Decimal, error)
	GetAvailableCapacity(ctx context.Context) (decimal.Decimal, error)
	BankCapUSD() decimal.Decimal
	WithdrawalLimit() decimal.Decimal
}

// HistoryService defines the behavior needed to page through history.
type HistoryService interface {
	GetTransactionHistoryPage(ctx context.Context, user string, limit, offset int) (*usecase.HistoryPage, error)
}

// LedgerHandler handles deposits, withdrawals and balance reads.
type LedgerHandler struct {
	ledger  LedgerService
	history HistoryService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger LedgerService, history HistoryService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, history: history}
}

// Deposit credits the caller.
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	principal, ok := caller(w, r)
	if !ok {
		return
	}

	var req dto.DepositRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	change, err := h.ledger.Deposit(r.Context(), req.ToUseCaseInput(principal))
	if err != nil {
		writeDomainError(w, r, "deposit failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.BalanceChangeFromUseCase(change))
}

// Withdraw debits the caller.
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	principal, ok := caller(w, r)
	if !ok {
		return
	}

	var req dto.WithdrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	change, err := h.ledger.Withdraw(r.Context(), req.ToUseCaseInput(principal))
	if err != nil {
		writeDomainError(w, r, "withdrawal failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.BalanceChangeFromUseCase(change))
}

// MyBalance returns the caller's balance of one asset.
func (h *LedgerHandler) MyBalance(w http.ResponseWriter, r *http.Request) {
	principal, ok := caller(w, r)
	if !ok {
		return
	}
	h.writeBalance(w, r, principal, chi.URLParam(r, "assetID"))
}

// UserBalance returns a user's balance of one asset.
func (h *LedgerHandler) UserBalance(w http.ResponseWriter, r *http.Request) {
	h.writeBalance(w, r, chi.URLParam(r, "user"), chi.URLParam(r, "assetID"))
}

func (h *LedgerHandler) writeBalance(w http.ResponseWriter, r *http.Request, user, assetID string) {
	amount, err := h.ledger.GetVaultBalance(r.Context(), user, assetID)
	if err != nil {
		writeDomainError(w, r, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		User:    user,
		AssetID: domain.NormalizeAssetID(assetID),
		Amount:  amount,
	})
}

// UserBalances returns every balance of a user in registration order.
func (h *LedgerHandler) UserBalances(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	balances, err := h.ledger.GetAllBalances(r.Context(), user)
	if err != nil {
		writeDomainError(w, r, "failed to get balances", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesResponse{
		User:     user,
		AssetIDs: balances.AssetIDs,
		Amounts:  balances.Amounts,
	})
}

// History returns a page of a user's transactions, oldest first.
func (h *LedgerHandler) History(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	page, err := h.history.GetTransactionHistoryPage(r.Context(), user, limit, offset)
	if err != nil {
		writeDomainError(w, r, "failed to get history", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryFromUseCase(user, page))
}

// TVL returns the aggregate USD value held.
func (h *LedgerHandler) TVL(w http.ResponseWriter, r *http.Request) {
	tvl, err := h.ledger.TotalValueLockedUSD(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to get total value locked", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TVLResponse{TotalValueUSD: tvl, BankCapUSD: h.ledger.BankCapUSD()})
}

// Capacity returns the USD value that can still be deposited.
func (h *LedgerHandler) Capacity(w http.ResponseWriter, r *http.Request) {
	available, err := h.ledger.GetAvailableCapacity(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to get capacity", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CapacityResponse{
		AvailableUSD:    available,
		BankCapUSD:      h.ledger.BankCapUSD(),
		WithdrawalLimit: h.ledger.WithdrawalLimit(),
	})
}
