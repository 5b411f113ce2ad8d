package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// AssetResponse represents an asset in API responses.
type AssetResponse struct {
	ID             string          `json:"id"`
	NativeDecimals uint8           `json:"native_decimals"`
	PriceFeed      string          `json:"price_feed"`
	Native         bool            `json:"native"`
	Active         bool            `json:"active"`
	TotalDeposited decimal.Decimal `json:"total_deposited"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AssetFromDomain converts a domain asset to a response.
func AssetFromDomain(a *domain.Asset) *AssetResponse {
	return &AssetResponse{
		ID:             a.ID,
		NativeDecimals: a.NativeDecimals,
		PriceFeed:      a.PriceFeed,
		Native:         a.Native,
		Active:         a.Active,
		TotalDeposited: a.TotalDeposited,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AssetsFromDomain converts domain assets to responses.
func AssetsFromDomain(assets []*domain.Asset) []*AssetResponse {
	result := make([]*AssetResponse, len(assets))
	for i, a := range assets {
		result[i] = AssetFromDomain(a)
	}
	return result
}

// ListAssetsResponse represents the asset list.
type ListAssetsResponse struct {
	Assets []*AssetResponse `json:"assets"`
}

// PriceResponse represents a validated price.
type PriceResponse struct {
	AssetID   string          `json:"asset_id"`
	Price     decimal.Decimal `json:"price"`
	Decimals  uint8           `json:"decimals"`
	RoundID   uint64          `json:"round_id"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PriceFromDomain converts a price quote to a response.
func PriceFromDomain(q *domain.PriceQuote) *PriceResponse {
	return &PriceResponse{
		AssetID:   q.AssetID,
		Price:     q.Price,
		Decimals:  q.Decimals,
		RoundID:   q.RoundID,
		UpdatedAt: q.UpdatedAt,
	}
}

// USDValueResponse is a native amount priced in canonical USD.
type USDValueResponse struct {
	AssetID  string          `json:"asset_id"`
	Amount   decimal.Decimal `json:"amount"`
	ValueUSD decimal.Decimal `json:"value_usd"`
}

// TransactionResponse represents a history record.
type TransactionResponse struct {
	ID        string          `json:"id"`
	User      string          `json:"user"`
	AssetID   string          `json:"asset_id"`
	Amount    decimal.Decimal `json:"amount"`
	IsDeposit bool            `json:"is_deposit"`
	Timestamp time.Time       `json:"timestamp"`
}

// TransactionFromDomain converts a history record to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:        t.ID,
		User:      t.User,
		AssetID:   t.AssetID,
		Amount:    t.Amount,
		IsDeposit: t.IsDeposit,
		Timestamp: t.Timestamp,
	}
}

// BalanceChangeResponse describes a committed deposit or withdrawal.
type BalanceChangeResponse struct {
	Transaction     *TransactionResponse `json:"transaction"`
	NativeAmount    decimal.Decimal      `json:"native_amount"`
	CanonicalAmount decimal.Decimal      `json:"canonical_amount"`
	ValueUSD        decimal.Decimal      `json:"value_usd"`
	Balance         decimal.Decimal      `json:"balance"`
	TotalValueUSD   decimal.Decimal      `json:"total_value_usd"`
}

// BalanceChangeFromUseCase converts a committed change to a response.
func BalanceChangeFromUseCase(c *usecase.BalanceChange) *BalanceChangeResponse {
	return &BalanceChangeResponse{
		Transaction:     TransactionFromDomain(c.Transaction),
		NativeAmount:    c.NativeAmount,
		CanonicalAmount: c.CanonicalAmount,
		ValueUSD:        c.ValueUSD,
		Balance:         c.Balance,
		TotalValueUSD:   c.TotalValueUSD,
	}
}

// BalanceResponse is one user's balance of one asset.
type BalanceResponse struct {
	User    string          `json:"user"`
	AssetID string          `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// BalancesResponse lists a user's balances as parallel arrays in registration order.
type BalancesResponse struct {
	User     string            `json:"user"`
	AssetIDs []string          `json:"asset_ids"`
	Amounts  []decimal.Decimal `json:"amounts"`
}

// HistoryResponse is one page of a user's history.
type HistoryResponse struct {
	User         string                 `json:"user"`
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int                    `json:"total"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

// HistoryFromUseCase converts a history page to a response.
func HistoryFromUseCase(user string, page *usecase.HistoryPage) *HistoryResponse {
	items := make([]*TransactionResponse, len(page.Items))
	for i, t := range page.Items {
		items[i] = TransactionFromDomain(t)
	}
	return &HistoryResponse{
		User:         user,
		Transactions: items,
		Total:        page.Total,
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
}

// TVLResponse reports the aggregate USD value held.
type TVLResponse struct {
	TotalValueUSD decimal.Decimal `json:"total_value_usd"`
	BankCapUSD    decimal.Decimal `json:"bank_cap_usd"`
}

// CapacityResponse reports the USD value that can still be deposited.
type CapacityResponse struct {
	AvailableUSD    decimal.Decimal `json:"available_usd"`
	BankCapUSD      decimal.Decimal `json:"bank_cap_usd"`
	WithdrawalLimit decimal.Decimal `json:"withdrawal_limit"`
}

// AssetReconciliationResponse compares an asset total with its balances.
type AssetReconciliationResponse struct {
	AssetID        string          `json:"asset_id"`
	TotalDeposited decimal.Decimal `json:"total_deposited"`
	SumOfBalances  decimal.Decimal `json:"sum_of_balances"`
	Difference     decimal.Decimal `json:"difference"`
	Reconciled     bool            `json:"reconciled"`
}

// ReconciliationResponse is the result of an invariant check.
type ReconciliationResponse struct {
	Consistent    bool                           `json:"consistent"`
	TotalValueUSD decimal.Decimal                `json:"total_value_usd"`
	Assets        []*AssetReconciliationResponse `json:"assets"`
	CheckedAt     time.Time                      `json:"checked_at"`
}

// ReconciliationFromUseCase converts a report to a response.
func ReconciliationFromUseCase(r *usecase.ReconciliationReport) *ReconciliationResponse {
	assets := make([]*AssetReconciliationResponse, len(r.Assets))
	for i, a := range r.Assets {
		assets[i] = &AssetReconciliationResponse{
			AssetID:        a.AssetID,
			TotalDeposited: a.TotalDeposited,
			SumOfBalances:  a.SumOfBalances,
			Difference:     a.Difference,
			Reconciled:     a.Reconciled,
		}
	}
	return &ReconciliationResponse{
		Consistent:    r.Consistent,
		TotalValueUSD: r.TotalValueUSD,
		Assets:        assets,
		CheckedAt:     r.CheckedAt,
	}
}

// RoleResponse represents a role membership.
type RoleResponse struct {
	Principal string    `json:"principal"`
	Role      string    `json:"role"`
	GrantedBy string    `json:"granted_by,omitempty"`
	GrantedAt time.Time `json:"granted_at"`
}

// RolesFromDomain converts role assignments to responses.
func RolesFromDomain(assignments []*domain.RoleAssignment) []*RoleResponse {
	result := make([]*RoleResponse, len(assignments))
	for i, a := range assignments {
		result[i] = &RoleResponse{
			Principal: a.Principal,
			Role:      string(a.Role),
			GrantedBy: a.GrantedBy,
			GrantedAt: a.GrantedAt,
		}
	}
	return result
}

// PauseResponse reports the pause flag.
type PauseResponse struct {
	Paused bool `json:"paused"`
}

// WalletResponse reports an external wallet held by the local custodian.
type WalletResponse struct {
	Owner     string          `json:"owner"`
	AssetID   string          `json:"asset_id"`
	Balance   decimal.Decimal `json:"balance"`
	Allowance decimal.Decimal `json:"allowance"`
}
