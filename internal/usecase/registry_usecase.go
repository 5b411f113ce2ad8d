package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
)

// AssetRegistry owns per-asset metadata and status.
type AssetRegistry struct {
	txManager     TransactionManager
	assetRepo     AssetRepository
	vaultRepo     VaultRepository
	outboxRepo    OutboxRepository
	access        AccessControl
	oracle        *PriceOracle
	idGen         IDGenerator
	nativeAssetID string
	retrier       Retrier
	logger        zerolog.Logger
	now           func() time.Time
}

// NewAssetRegistry creates a new AssetRegistry.
func NewAssetRegistry(
	txManager TransactionManager,
	assetRepo AssetRepository,
	vaultRepo VaultRepository,
	outboxRepo OutboxRepository,
	access AccessControl,
	oracle *PriceOracle,
	idGen IDGenerator,
	nativeAssetID string,
	logger zerolog.Logger,
) *AssetRegistry {
	if nativeAssetID == "" {
		nativeAssetID = domain.NativeAssetID
	}
	return &AssetRegistry{
		txManager:     txManager,
		assetRepo:     assetRepo,
		vaultRepo:     vaultRepo,
		outboxRepo:    outboxRepo,
		access:        access,
		oracle:        oracle,
		idGen:         idGen,
		nativeAssetID: domain.NormalizeAssetID(nativeAssetID),
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithRetrier sets the retrier used around registry transactions.
func (r *AssetRegistry) WithRetrier(retrier Retrier) *AssetRegistry {
	r.retrier = retrier
	return r
}

// NativeAssetID returns the sentinel identifying the native asset.
func (r *AssetRegistry) NativeAssetID() string {
	return r.nativeAssetID
}

// AddAssetInput represents input for registering an asset.
type AddAssetInput struct {
	Caller         string
	AssetID        string
	NativeDecimals uint8
	PriceFeed      string
}

// AddAsset registers a new active asset with zero deposits.
func (r *AssetRegistry) AddAsset(ctx context.Context, input AddAssetInput) (*domain.Asset, error) {
	if err := guardReentry(ctx, OpAddAsset); err != nil {
		return nil, err
	}
	if err := requireRole(ctx, r.access, input.Caller, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := domain.ValidateAssetID(input.AssetID); err != nil {
		return nil, err
	}
	if err := domain.ValidatePriceFeed(input.PriceFeed); err != nil {
		return nil, err
	}
	if err := domain.ValidateDecimals(input.NativeDecimals); err != nil {
		return nil, err
	}

	id := domain.NormalizeAssetID(input.AssetID)

	var asset *domain.Asset
	err := retry(ctx, r.retrier, func() error {
		var err error
		asset, err = r.addAsset(ctx, id, input)
		return err
	})
	if err != nil {
		r.logger.Debug().Err(err).Str("asset_id", id).Msg("add asset rejected")
		return nil, err
	}

	r.logger.Info().
		Str("asset_id", asset.ID).
		Str("price_feed", asset.PriceFeed).
		Uint8("decimals", asset.NativeDecimals).
		Str("caller", input.Caller).
		Msg("asset added")

	return asset, nil
}

func (r *AssetRegistry) addAsset(ctx context.Context, id string, input AddAssetInput) (*domain.Asset, error) {
	tx, err := r.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := r.vaultRepo.LockForUpdate(ctx, tx); err != nil {
		return nil, err
	}

	_, err = r.assetRepo.GetByIDForUpdate(ctx, tx, id)
	switch {
	case err == nil:
		return nil, domain.ErrAssetAlreadyExists
	case !errors.Is(err, domain.ErrAssetNotFound):
		return nil, err
	}

	now := r.now()
	asset := &domain.Asset{
		ID:             id,
		NativeDecimals: input.NativeDecimals,
		PriceFeed:      input.PriceFeed,
		Native:         id == r.nativeAssetID,
		Active:         true,
		TotalDeposited: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := r.assetRepo.Create(ctx, tx, asset); err != nil {
		return nil, err
	}

	event := domain.AssetAddedEvent{AssetID: id, PriceFeed: asset.PriceFeed, Decimals: asset.NativeDecimals}
	if err := r.outboxRepo.Create(ctx, tx, newOutboxEvent(r.idGen.Generate(), domain.AggregateTypeAsset, id, domain.EventTypeAssetAdded, event.ToPayload(), now)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return asset, nil
}

// SetAssetStatusInput represents input for activating or deactivating an asset.
type SetAssetStatusInput struct {
	Caller  string
	AssetID string
	Active  bool
}

// SetAssetStatus flips an asset's active flag.
func (r *AssetRegistry) SetAssetStatus(ctx context.Context, input SetAssetStatusInput) (*domain.Asset, error) {
	if err := guardReentry(ctx, OpSetAssetStatus); err != nil {
		return nil, err
	}
	if err := requireRole(ctx, r.access, input.Caller, domain.RoleAdmin); err != nil {
		return nil, err
	}

	id := domain.NormalizeAssetID(input.AssetID)

	var asset *domain.Asset
	err := retry(ctx, r.retrier, func() error {
		var err error
		asset, err = r.setAssetStatus(ctx, id, input.Active)
		return err
	})
	if err != nil {
		r.logger.Debug().Err(err).Str("asset_id", id).Msg("set asset status rejected")
		return nil, err
	}

	r.logger.Info().
		Str("asset_id", id).
		Bool("active", input.Active).
		Str("caller", input.Caller).
		Msg("asset status updated")

	return asset, nil
}

func (r *AssetRegistry) setAssetStatus(ctx context.Context, id string, active bool) (*domain.Asset, error) {
	tx, err := r.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := r.vaultRepo.LockForUpdate(ctx, tx); err != nil {
		return nil, err
	}

	asset, err := r.assetRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	now := r.now()
	if err := r.assetRepo.UpdateStatus(ctx, tx, id, active, now); err != nil {
		return nil, err
	}
	asset.Active = active
	asset.UpdatedAt = now

	event := domain.AssetStatusUpdatedEvent{AssetID: id, Active: active}
	if err := r.outboxRepo.Create(ctx, tx, newOutboxEvent(r.idGen.Generate(), domain.AggregateTypeAsset, id, domain.EventTypeAssetStatusUpdated, event.ToPayload(), now)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return asset, nil
}

// RequireActive loads an asset inside tx and rejects unknown or inactive ones.
func (r *AssetRegistry) RequireActive(ctx context.Context, tx Transaction, id string) (*domain.Asset, error) {
	asset, err := r.assetRepo.GetByIDForUpdate(ctx, tx, domain.NormalizeAssetID(id))
	if errors.Is(err, domain.ErrAssetNotFound) {
		return nil, domain.ErrAssetNotActive
	}
	if err != nil {
		return nil, err
	}
	if !asset.Active {
		return nil, domain.ErrAssetNotActive
	}
	return asset, nil
}

// GetForUpdate loads a registered asset inside tx regardless of its status.
func (r *AssetRegistry) GetForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Asset, error) {
	return r.assetRepo.GetByIDForUpdate(ctx, tx, domain.NormalizeAssetID(id))
}

// UpdateTotalDeposited records an asset's new deposit total inside tx.
func (r *AssetRegistry) UpdateTotalDeposited(ctx context.Context, tx Transaction, id string, total decimal.Decimal, updatedAt time.Time) error {
	return r.assetRepo.UpdateTotalDeposited(ctx, tx, id, total, updatedAt)
}

// GetAsset returns a registered asset.
func (r *AssetRegistry) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	return r.assetRepo.GetByID(ctx, domain.NormalizeAssetID(id))
}

// ListAssets returns all assets in registration order.
func (r *AssetRegistry) ListAssets(ctx context.Context) ([]*domain.Asset, error) {
	return r.assetRepo.List(ctx)
}

// GetTokenPriceUSD returns the validated price of a registered asset.
func (r *AssetRegistry) GetTokenPriceUSD(ctx context.Context, id string) (*domain.PriceQuote, error) {
	asset, err := r.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.oracle.GetValidatedPrice(ctx, asset)
}

// ConvertToUSD values a native amount of a registered asset in canonical USD.
func (r *AssetRegistry) ConvertToUSD(ctx context.Context, id string, nativeAmount decimal.Decimal) (decimal.Decimal, error) {
	if nativeAmount.IsNegative() || !nativeAmount.Equal(nativeAmount.Truncate(0)) {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	asset, err := r.GetAsset(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return r.oracle.ConvertToUSD(ctx, asset, nativeAmount)
}
