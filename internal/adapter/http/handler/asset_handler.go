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

// AssetService defines the behavior needed by AssetHandler.
type AssetService interface {
	AddAsset(ctx context.Context, input usecase.AddAssetInput) (*domain.Asset, error)
	SetAssetStatus(ctx context.Context, input usecase.SetAssetStatusInput) (*domain.Asset, error)
	GetAsset(ctx context.Context, id string) (*domain.Asset, error)
	ListAssets(ctx context.Context) ([]*domain.Asset, error)
	GetTokenPriceUSD(ctx context.Context, id string) (*domain.PriceQuote, error)
	ConvertToUSD(ctx context.Context, id string, nativeAmount decimal.Decimal) (decimal.Decimal, error)
}

// AssetHandler handles asset registry requests.
type AssetHandler struct {
	registry AssetService
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(registry AssetService) *AssetHandler {
	return &AssetHandler{registry: registry}
}

// Create registers a new asset.
func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := caller(w, r)
	if !ok {
		return
	}

	var req dto.AddAssetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	asset, err := h.registry.AddAsset(r.Context(), req.ToUseCaseInput(principal))
	if err != nil {
		writeDomainError(w, r, "failed to add asset", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AssetFromDomain(asset))
}

// List lists assets in registration order.
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	assets, err := h.registry.ListAssets(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to list assets", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAssetsResponse{Assets: dto.AssetsFromDomain(assets)})
}

// Get retrieves an asset by ID.
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	asset, err := h.registry.GetAsset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get asset", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AssetFromDomain(asset))
}

// SetStatus activates or deactivates an asset.
func (h *AssetHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := caller(w, r)
	if !ok {
		return
	}

	var req dto.SetAssetStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	asset, err := h.registry.SetAssetStatus(r.Context(), req.ToUseCaseInput(principal, chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, "failed to update asset status", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AssetFromDomain(asset))
}

// Price returns the asset's validated USD price.
func (h *AssetHandler) Price(w http.ResponseWriter, r *http.Request) {
	quote, err := h.registry.GetTokenPriceUSD(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get price", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PriceFromDomain(quote))
}

// USDValue prices a native amount of the asset.
func (h *AssetHandler) USDValue(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("amount")
	if raw == "" {
		missingParam(w, "amount")
		return
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, domain.ErrorCode(domain.ErrInvalidAmount), "invalid amount", err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	value, err := h.registry.ConvertToUSD(r.Context(), id, amount)
	if err != nil {
		writeDomainError(w, r, "failed to convert to usd", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.USDValueResponse{
		AssetID:  domain.NormalizeAssetID(id),
		Amount:   amount,
		ValueUSD: value,
	})
}
