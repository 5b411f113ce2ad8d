package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ReconciliationUseCase verifies the ledger's aggregate invariants.
type ReconciliationUseCase struct {
	txManager   TransactionManager
	assetRepo   AssetRepository
	balanceRepo BalanceRepository
	vaultRepo   VaultRepository
	metrics     MetricsRecorder
	logger      zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	txManager TransactionManager,
	assetRepo AssetRepository,
	balanceRepo BalanceRepository,
	vaultRepo VaultRepository,
	logger zerolog.Logger,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:   txManager,
		assetRepo:   assetRepo,
		balanceRepo: balanceRepo,
		vaultRepo:   vaultRepo,
		metrics:     nopMetrics{},
		logger:      logger,
	}
}

// WithMetrics sets the metrics recorder.
func (uc *ReconciliationUseCase) WithMetrics(m MetricsRecorder) *ReconciliationUseCase {
	if m != nil {
		uc.metrics = m
	}
	return uc
}

// AssetReconciliation compares an asset's recorded total with its balances.
type AssetReconciliation struct {
	AssetID        string
	TotalDeposited decimal.Decimal
	SumOfBalances  decimal.Decimal
	Difference     decimal.Decimal
	Reconciled     bool
}

// ReconciliationReport is the result of a full invariant check.
type ReconciliationReport struct {
	Assets        []AssetReconciliation
	TotalValueUSD decimal.Decimal
	Consistent    bool
	CheckedAt     time.Time
}

// Check compares every asset's totalDeposited with the sum of its balances
// and verifies the USD aggregate is non-negative. The snapshot is taken
// inside a transaction that is always rolled back.
func (uc *ReconciliationUseCase) Check(ctx context.Context) (*ReconciliationReport, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	vault, err := uc.vaultRepo.LockForUpdate(ctx, tx)
	if err != nil {
		return nil, err
	}

	assets, err := uc.assetRepo.ListForUpdate(ctx, tx)
	if err != nil {
		return nil, err
	}

	sums, err := uc.balanceRepo.SumByAsset(ctx, tx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		Assets:        make([]AssetReconciliation, 0, len(assets)),
		TotalValueUSD: vault.TotalValueUSD,
		Consistent:    !vault.TotalValueUSD.IsNegative(),
		CheckedAt:     time.Now().UTC(),
	}

	discrepancies := 0
	for _, asset := range assets {
		sum, ok := sums[asset.ID]
		if !ok {
			sum = decimal.Zero
		}
		diff := asset.TotalDeposited.Sub(sum)
		entry := AssetReconciliation{
			AssetID:        asset.ID,
			TotalDeposited: asset.TotalDeposited,
			SumOfBalances:  sum,
			Difference:     diff,
			Reconciled:     diff.IsZero(),
		}
		if !entry.Reconciled {
			discrepancies++
			report.Consistent = false
			uc.logger.Error().
				Str("asset_id", asset.ID).
				Str("total_deposited", asset.TotalDeposited.String()).
				Str("sum_of_balances", sum.String()).
				Msg("asset total does not match balances")
		}
		report.Assets = append(report.Assets, entry)
	}

	if vault.TotalValueUSD.IsNegative() {
		discrepancies++
		uc.logger.Error().Str("total_value_usd", vault.TotalValueUSD.String()).Msg("negative total value locked")
	}

	uc.metrics.SetReconciliationDiscrepancies(discrepancies)
	return report, nil
}
