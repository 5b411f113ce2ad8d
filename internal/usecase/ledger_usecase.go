package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
)

// LedgerConfig holds the immutable ledger limits, in canonical precision.
type LedgerConfig struct {
	BankCapUSD      decimal.Decimal
	WithdrawalLimit decimal.Decimal
}

// LedgerUseCase owns user balances and the deposit/withdraw protocol.
type LedgerUseCase struct {
	txManager   TransactionManager
	registry    *AssetRegistry
	oracle      *PriceOracle
	history     *HistoryUseCase
	balanceRepo BalanceRepository
	vaultRepo   VaultRepository
	outboxRepo  OutboxRepository
	pause       PauseSwitch
	gateway     TransferGateway
	idGen       IDGenerator
	cfg         LedgerConfig
	metrics     MetricsRecorder
	logger      zerolog.Logger
	now         func() time.Time
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	registry *AssetRegistry,
	oracle *PriceOracle,
	history *HistoryUseCase,
	balanceRepo BalanceRepository,
	vaultRepo VaultRepository,
	outboxRepo OutboxRepository,
	pause PauseSwitch,
	gateway TransferGateway,
	idGen IDGenerator,
	cfg LedgerConfig,
	logger zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		registry:    registry,
		oracle:      oracle,
		history:     history,
		balanceRepo: balanceRepo,
		vaultRepo:   vaultRepo,
		outboxRepo:  outboxRepo,
		pause:       pause,
		gateway:     gateway,
		idGen:       idGen,
		cfg:         cfg,
		metrics:     nopMetrics{},
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithMetrics sets the metrics recorder.
func (uc *LedgerUseCase) WithMetrics(m MetricsRecorder) *LedgerUseCase {
	if m != nil {
		uc.metrics = m
	}
	return uc
}

// WithClock overrides the time source used for history timestamps.
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// DepositInput represents input for a deposit. Amount is in the asset's native precision.
type DepositInput struct {
	Caller  string
	AssetID string
	Amount  decimal.Decimal
}

// WithdrawInput represents input for a withdrawal. Amount is in canonical precision.
type WithdrawInput struct {
	Caller  string
	AssetID string
	Amount  decimal.Decimal
}

// BalanceChange describes a committed deposit or withdrawal.
type BalanceChange struct {
	Transaction     *domain.Transaction
	NativeAmount    decimal.Decimal
	CanonicalAmount decimal.Decimal
	ValueUSD        decimal.Decimal
	Balance         decimal.Decimal
	TotalValueUSD   decimal.Decimal
}

// Deposit credits the caller with a native amount of an active asset.
// For tokens the amount is pulled from the caller after all effects are recorded.
func (uc *LedgerUseCase) Deposit(ctx context.Context, input DepositInput) (*BalanceChange, error) {
	change, err := uc.deposit(ctx, input)
	if err != nil {
		uc.metrics.ObserveRejection(OpDeposit, err)
		uc.logger.Debug().Err(err).
			Str("caller", input.Caller).
			Str("asset_id", input.AssetID).
			Str("amount", input.Amount.String()).
			Msg("deposit rejected")
		return nil, err
	}

	uc.metrics.ObserveDeposit(change.Transaction.AssetID, change.CanonicalAmount, change.ValueUSD)
	uc.metrics.SetTotalValueLocked(change.TotalValueUSD)
	uc.logger.Info().
		Str("caller", input.Caller).
		Str("asset_id", change.Transaction.AssetID).
		Str("native_amount", change.NativeAmount.String()).
		Str("canonical_amount", change.CanonicalAmount.String()).
		Str("value_usd", change.ValueUSD.String()).
		Msg("deposit committed")

	return change, nil
}

func (uc *LedgerUseCase) deposit(ctx context.Context, input DepositInput) (*BalanceChange, error) {
	if err := guardReentry(ctx, OpDeposit); err != nil {
		return nil, err
	}
	if err := domain.ValidatePrincipal(input.Caller); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	opCtx := withOperation(ctx, OpDeposit)

	vault, err := uc.vaultRepo.LockForUpdate(ctx, tx)
	if err != nil {
		return nil, err
	}

	// Checks
	if err := uc.requireNotPaused(opCtx); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	asset, err := uc.registry.RequireActive(ctx, tx, input.AssetID)
	if err != nil {
		return nil, err
	}

	valueUSD, err := uc.oracle.ConvertToUSD(opCtx, asset, input.Amount)
	if err != nil {
		return nil, err
	}

	newTotalValue, err := domain.CheckedAdd(vault.TotalValueUSD, valueUSD)
	if err != nil {
		return nil, err
	}
	if newTotalValue.GreaterThan(uc.cfg.BankCapUSD) {
		return nil, fmt.Errorf("%w: %s + %s > %s", domain.ErrBankCapacityExceeded, vault.TotalValueUSD, valueUSD, uc.cfg.BankCapUSD)
	}

	canonical, err := asset.ToCanonical(input.Amount)
	if err != nil {
		return nil, err
	}

	balance, err := uc.balanceRepo.GetForUpdate(ctx, tx, input.Caller, asset.ID)
	if err != nil {
		return nil, err
	}
	newBalance, err := domain.CheckedAdd(balance, canonical)
	if err != nil {
		return nil, err
	}
	newAssetTotal, err := asset.ApplyDeposit(canonical)
	if err != nil {
		return nil, err
	}

	// Effects
	now := uc.now()
	if err := uc.balanceRepo.Set(ctx, tx, input.Caller, asset.ID, newBalance, now); err != nil {
		return nil, err
	}
	if err := uc.registry.UpdateTotalDeposited(ctx, tx, asset.ID, newAssetTotal, now); err != nil {
		return nil, err
	}
	if err := uc.vaultRepo.UpdateTotalValue(ctx, tx, newTotalValue, now); err != nil {
		return nil, err
	}

	record := &domain.Transaction{
		ID:        uc.idGen.Generate(),
		User:      input.Caller,
		AssetID:   asset.ID,
		Amount:    canonical,
		IsDeposit: true,
		Timestamp: now,
	}
	if err := uc.history.Append(ctx, tx, record); err != nil {
		return nil, err
	}

	event := domain.BalanceChangeEvent{
		User:            input.Caller,
		AssetID:         asset.ID,
		NativeAmount:    input.Amount.String(),
		ValueUSD:        valueUSD.String(),
		CanonicalAmount: canonical.String(),
	}
	if err := uc.outboxRepo.Create(ctx, tx, newOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeVault, asset.ID, domain.EventTypeDeposit, event.ToPayload(), now)); err != nil {
		return nil, err
	}

	// Interactions
	if asset.Native {
		err = uc.gateway.ReceiveNative(opCtx, input.Caller, input.Amount)
	} else {
		err = uc.gateway.PullToken(opCtx, asset.ID, input.Caller, input.Amount)
	}
	if err != nil {
		return nil, transferFailed(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.SetAssetTotal(asset.ID, newAssetTotal)

	return &BalanceChange{
		Transaction:     record,
		NativeAmount:    input.Amount,
		CanonicalAmount: canonical,
		ValueUSD:        valueUSD,
		Balance:         newBalance,
		TotalValueUSD:   newTotalValue,
	}, nil
}

// Withdraw debits a canonical amount from the caller and sends the
// equivalent native amount once all effects are recorded.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*BalanceChange, error) {
	change, err := uc.withdraw(ctx, input)
	if err != nil {
		uc.metrics.ObserveRejection(OpWithdraw, err)
		uc.logger.Debug().Err(err).
			Str("caller", input.Caller).
			Str("asset_id", input.AssetID).
			Str("amount", input.Amount.String()).
			Msg("withdrawal rejected")
		return nil, err
	}

	uc.metrics.ObserveWithdrawal(change.Transaction.AssetID, change.CanonicalAmount, change.ValueUSD)
	uc.metrics.SetTotalValueLocked(change.TotalValueUSD)
	uc.logger.Info().
		Str("caller", input.Caller).
		Str("asset_id", change.Transaction.AssetID).
		Str("native_amount", change.NativeAmount.String()).
		Str("canonical_amount", change.CanonicalAmount.String()).
		Str("value_usd", change.ValueUSD.String()).
		Msg("withdrawal committed")

	return change, nil
}

func (uc *LedgerUseCase) withdraw(ctx context.Context, input WithdrawInput) (*BalanceChange, error) {
	if err := guardReentry(ctx, OpWithdraw); err != nil {
		return nil, err
	}
	if err := domain.ValidatePrincipal(input.Caller); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	opCtx := withOperation(ctx, OpWithdraw)

	vault, err := uc.vaultRepo.LockForUpdate(ctx, tx)
	if err != nil {
		return nil, err
	}

	// Checks
	if err := uc.requireNotPaused(opCtx); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	// Inactive assets stay withdrawable so users can exit them.
	asset, err := uc.registry.GetForUpdate(ctx, tx, input.AssetID)
	if err != nil {
		return nil, err
	}

	if input.Amount.GreaterThan(uc.cfg.WithdrawalLimit) {
		return nil, fmt.Errorf("%w: %s > %s", domain.ErrWithdrawalExceedsLimit, input.Amount, uc.cfg.WithdrawalLimit)
	}

	balance, err := uc.balanceRepo.GetForUpdate(ctx, tx, input.Caller, asset.ID)
	if err != nil {
		return nil, err
	}
	current := &domain.Balance{User: input.Caller, AssetID: asset.ID, Amount: balance}
	if err := current.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	nativeAmount, err := asset.ToNative(input.Amount)
	if err != nil {
		return nil, err
	}

	valueUSD, err := uc.oracle.ConvertToUSD(opCtx, asset, nativeAmount)
	if err != nil {
		return nil, err
	}

	newBalance, err := domain.CheckedSub(balance, input.Amount)
	if err != nil {
		return nil, err
	}
	newAssetTotal, err := asset.ApplyWithdrawal(input.Amount)
	if err != nil {
		return nil, err
	}
	newTotalValue, err := domain.CheckedSub(vault.TotalValueUSD, valueUSD)
	if err != nil {
		return nil, err
	}

	// Effects
	now := uc.now()
	if err := uc.balanceRepo.Set(ctx, tx, input.Caller, asset.ID, newBalance, now); err != nil {
		return nil, err
	}
	if err := uc.registry.UpdateTotalDeposited(ctx, tx, asset.ID, newAssetTotal, now); err != nil {
		return nil, err
	}
	if err := uc.vaultRepo.UpdateTotalValue(ctx, tx, newTotalValue, now); err != nil {
		return nil, err
	}

	record := &domain.Transaction{
		ID:        uc.idGen.Generate(),
		User:      input.Caller,
		AssetID:   asset.ID,
		Amount:    input.Amount,
		IsDeposit: false,
		Timestamp: now,
	}
	if err := uc.history.Append(ctx, tx, record); err != nil {
		return nil, err
	}

	event := domain.BalanceChangeEvent{
		User:            input.Caller,
		AssetID:         asset.ID,
		NativeAmount:    nativeAmount.String(),
		ValueUSD:        valueUSD.String(),
		CanonicalAmount: input.Amount.String(),
	}
	if err := uc.outboxRepo.Create(ctx, tx, newOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeVault, asset.ID, domain.EventTypeWithdrawal, event.ToPayload(), now)); err != nil {
		return nil, err
	}

	// Interactions
	if asset.Native {
		err = uc.gateway.PushNative(opCtx, input.Caller, nativeAmount)
	} else {
		err = uc.gateway.PushToken(opCtx, asset.ID, input.Caller, nativeAmount)
	}
	if err != nil {
		return nil, transferFailed(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.SetAssetTotal(asset.ID, newAssetTotal)

	return &BalanceChange{
		Transaction:     record,
		NativeAmount:    nativeAmount,
		CanonicalAmount: input.Amount,
		ValueUSD:        valueUSD,
		Balance:         newBalance,
		TotalValueUSD:   newTotalValue,
	}, nil
}

func (uc *LedgerUseCase) requireNotPaused(ctx context.Context) error {
	paused, err := uc.pause.IsPaused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return domain.ErrContractPaused
	}
	return nil
}

func transferFailed(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrTransferFailed, err)
}

// GetVaultBalance returns a user's canonical balance of an asset.
func (uc *LedgerUseCase) GetVaultBalance(ctx context.Context, user, assetID string) (decimal.Decimal, error) {
	return uc.balanceRepo.Get(ctx, user, domain.NormalizeAssetID(assetID))
}

// GetAllBalances returns a user's balances for every registered asset as
// parallel slices in registration order.
func (uc *LedgerUseCase) GetAllBalances(ctx context.Context, user string) (*domain.UserBalances, error) {
	balances, err := uc.balanceRepo.ListByUser(ctx, user)
	if err != nil {
		return nil, err
	}

	result := &domain.UserBalances{
		AssetIDs: make([]string, 0, len(balances)),
		Amounts:  make([]decimal.Decimal, 0, len(balances)),
	}
	for _, b := range balances {
		result.AssetIDs = append(result.AssetIDs, b.AssetID)
		result.Amounts = append(result.Amounts, b.Amount)
	}
	return result, nil
}

// TotalValueLockedUSD returns the incrementally maintained USD aggregate.
func (uc *LedgerUseCase) TotalValueLockedUSD(ctx context.Context) (decimal.Decimal, error) {
	vault, err := uc.vaultRepo.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return vault.TotalValueUSD, nil
}

// GetAvailableCapacity returns the remaining room under the bank cap, never below zero.
func (uc *LedgerUseCase) GetAvailableCapacity(ctx context.Context) (decimal.Decimal, error) {
	tvl, err := uc.TotalValueLockedUSD(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if tvl.GreaterThanOrEqual(uc.cfg.BankCapUSD) {
		return decimal.Zero, nil
	}
	return uc.cfg.BankCapUSD.Sub(tvl), nil
}

// BankCapUSD returns the configured bank cap.
func (uc *LedgerUseCase) BankCapUSD() decimal.Decimal {
	return uc.cfg.BankCapUSD
}

// WithdrawalLimit returns the configured per-call withdrawal limit.
func (uc *LedgerUseCase) WithdrawalLimit() decimal.Decimal {
	return uc.cfg.WithdrawalLimit
}
