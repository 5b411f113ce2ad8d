package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// AddAssetRequest represents a request to register an asset.
type AddAssetRequest struct {
	AssetID        string `json:"asset_id" validate:"required"`
	NativeDecimals *uint8 `json:"native_decimals" validate:"required"`
	PriceFeed      string `json:"price_feed" validate:"required"`
}

// ToUseCaseInput converts to use case input.
func (r *AddAssetRequest) ToUseCaseInput(caller string) usecase.AddAssetInput {
	var decimals uint8
	if r.NativeDecimals != nil {
		decimals = *r.NativeDecimals
	}
	return usecase.AddAssetInput{
		Caller:         caller,
		AssetID:        r.AssetID,
		NativeDecimals: decimals,
		PriceFeed:      r.PriceFeed,
	}
}

// SetAssetStatusRequest represents a request to activate or deactivate an asset.
type SetAssetStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ToUseCaseInput converts to use case input.
func (r *SetAssetStatusRequest) ToUseCaseInput(caller, assetID string) usecase.SetAssetStatusInput {
	return usecase.SetAssetStatusInput{
		Caller:  caller,
		AssetID: assetID,
		Active:  r.Active != nil && *r.Active,
	}
}

// DepositRequest represents a deposit. Amount is in the asset's native precision.
type DepositRequest struct {
	AssetID string          `json:"asset_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput(caller string) usecase.DepositInput {
	return usecase.DepositInput{Caller: caller, AssetID: r.AssetID, Amount: r.Amount}
}

// WithdrawRequest represents a withdrawal. Amount is in canonical precision.
type WithdrawRequest struct {
	AssetID string          `json:"asset_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawRequest) ToUseCaseInput(caller string) usecase.WithdrawInput {
	return usecase.WithdrawInput{Caller: caller, AssetID: r.AssetID, Amount: r.Amount}
}

// RoleRequest grants or revokes a role.
type RoleRequest struct {
	Principal string `json:"principal" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=owner admin emergency"`
}

// ToUseCaseInput converts to use case input.
func (r *RoleRequest) ToUseCaseInput(caller string) usecase.RoleInput {
	return usecase.RoleInput{Caller: caller, Principal: r.Principal, Role: domain.Role(r.Role)}
}

// RenounceRoleRequest gives up one of the caller's roles.
type RenounceRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=owner admin emergency"`
}

// FundWalletRequest credits an external wallet held by the local custodian.
type FundWalletRequest struct {
	Owner   string          `json:"owner" validate:"required"`
	AssetID string          `json:"asset_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

// ApproveRequest sets the vault's allowance over the caller's tokens.
type ApproveRequest struct {
	AssetID string          `json:"asset_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
}
