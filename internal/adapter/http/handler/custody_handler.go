package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/adapter/http/dto"
	"github.com/iho/assetvault/internal/domain"
)

// CustodyService is the local custodian's wallet surface.
type CustodyService interface {
	Fund(owner, assetID string, amount decimal.Decimal) error
	Approve(owner, assetID string, amount decimal.Decimal) error
	WalletBalance(owner, assetID string) decimal.Decimal
	Allowance(owner, assetID string) decimal.Decimal
}

// RoleChecker answers role membership questions.
type RoleChecker interface {
	HasRole(ctx context.Context, principal string, role domain.Role) (bool, error)
}

// CustodyHandler exposes the local custodian for development setups.
type CustodyHandler struct {
	custody CustodyService
	roles   RoleChecker
}

// NewCustodyHandler creates a new CustodyHandler.
func NewCustodyHandler(custody CustodyService, roles RoleChecker) *CustodyHandler {
	return &CustodyHandler{custody: custody, roles: roles}
}

// Fund credits an external wallet. Requires ADMIN.
func (h *CustodyHandler) Fund(w http.ResponseWriter, r *http.Request) {
	principal, ok := caller(w, r)
	if !ok {
		return
	}

	isAdmin, err := h.roles.HasRole(r.Context(), principal, domain.RoleAdmin)
	if err != nil {
		writeDomainError(w, r, "failed to check role", err)
		return
	}
	if !isAdmin {
		writeDomainError(w, r, "failed to fund wallet", fmt.Errorf("%w: %s lacks role %s", domain.ErrUnauthorized, principal, domain.RoleAdmin))
		return
	}

	var req dto.FundWalletRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.custody.Fund(req.Owner, req.AssetID, req.Amount); err != nil {
		writeDomainError(w, r, "failed to fund wallet", err)
		return
	}

	h.writeWallet(w, req.Owner, req.AssetID)
}

// Approve sets the vault's allowance over the caller's tokens.
func (h *CustodyHandler) Approve(w http.ResponseWriter, r *http.Request) {
	principal, ok := caller(w, r)
	if !ok {
		return
	}

	var req dto.ApproveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.custody.Approve(principal, req.AssetID, req.Amount); err != nil {
		writeDomainError(w, r, "failed to approve", err)
		return
	}

	h.writeWallet(w, principal, req.AssetID)
}

// Wallet reports an external wallet balance and allowance.
func (h *CustodyHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	h.writeWallet(w, chi.URLParam(r, "user"), chi.URLParam(r, "assetID"))
}

func (h *CustodyHandler) writeWallet(w http.ResponseWriter, owner, assetID string) {
	writeJSON(w, http.StatusOK, dto.WalletResponse{
		Owner:     owner,
		AssetID:   domain.NormalizeAssetID(assetID),
		Balance:   h.custody.WalletBalance(owner, assetID),
		Allowance: h.custody.Allowance(owner, assetID),
	})
}
