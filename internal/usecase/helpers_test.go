package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/assetvault/internal/adapter/custody"
	"github.com/iho/assetvault/internal/adapter/pricefeed"
	"github.com/iho/assetvault/internal/adapter/repository/memory"
	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
	"github.com/iho/assetvault/internal/usecase/mocks"
)

const (
	owner    = "owner"
	alice    = "alice"
	bob      = "bob"
	ethFeed  = "eth-usd"
	usdcFeed = "usdc-usd"
	usdcID   = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	centID   = "0x3333333333333333333333333333333333333333"
	centFeed = "cent-usd"
)

var (
	ethPrice  = decimal.NewFromInt(200000000000) // $2000
	usdcPrice = decimal.NewFromInt(100000000)    // $1
	oneEther  = decimal.RequireFromString("1000000000000000000")
)

type harness struct {
	t          *testing.T
	ctx        context.Context
	now        time.Time
	store      *memory.Store
	txManager  *memory.TxManager
	assetRepo  *memory.AssetRepository
	outbox     *memory.OutboxRepository
	feed       *pricefeed.StaticFeed
	gateway    usecase.TransferGateway
	custody    *custody.Gateway
	metrics    *mocks.MockMetricsRecorder
	governance *usecase.GovernanceUseCase
	oracle     *usecase.PriceOracle
	registry   *usecase.AssetRegistry
	history    *usecase.HistoryUseCase
	ledger     *usecase.LedgerUseCase
	recon      *usecase.ReconciliationUseCase
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	ledger  usecase.LedgerConfig
	gateway usecase.TransferGateway
}

func withLimits(bankCap, withdrawalLimit int64) harnessOption {
	return func(c *harnessConfig) {
		c.ledger = usecase.LedgerConfig{
			BankCapUSD:      decimal.NewFromInt(bankCap),
			WithdrawalLimit: decimal.NewFromInt(withdrawalLimit),
		}
	}
}

func withGateway(g usecase.TransferGateway) harnessOption {
	return func(c *harnessConfig) {
		c.gateway = g
	}
}

// newHarness wires every component on the memory store, bootstraps the owner,
// registers ETH (18 decimals) and USDC (6 decimals) and funds alice and bob.
func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	cfg := harnessConfig{
		ledger: usecase.LedgerConfig{
			BankCapUSD:      decimal.RequireFromString(usecase.DefaultBankCapUSD),
			WithdrawalLimit: decimal.RequireFromString(usecase.DefaultWithdrawalLimit),
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &harness{
		t:   t,
		ctx: context.Background(),
		now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }

	h.store = memory.NewStore()
	h.txManager = memory.NewTxManager(h.store)
	h.assetRepo = memory.NewAssetRepository(h.store)
	h.outbox = memory.NewOutboxRepository(h.store)
	balanceRepo := memory.NewBalanceRepository(h.store)
	vaultRepo := memory.NewVaultRepository(h.store)
	idGen := mocks.NewMockIDGenerator()
	logger := zerolog.Nop()

	h.feed = pricefeed.NewStaticFeed(nil).WithClock(clock)
	h.feed.Set(ethFeed, ethPrice)
	h.feed.Set(usdcFeed, usdcPrice)
	h.feed.Set(centFeed, usdcPrice)

	h.custody = custody.NewGateway(domain.NativeAssetID)
	h.gateway = h.custody
	if cfg.gateway != nil {
		h.gateway = cfg.gateway
	}

	h.metrics = mocks.NewMockMetricsRecorder()
	h.governance = usecase.NewGovernanceUseCase(h.txManager, memory.NewRoleRepository(h.store), vaultRepo, h.outbox, idGen, logger)
	h.oracle = usecase.NewPriceOracle(h.feed, time.Hour).WithClock(clock).WithMetrics(h.metrics)
	h.registry = usecase.NewAssetRegistry(h.txManager, h.assetRepo, vaultRepo, h.outbox, h.governance, h.oracle, idGen, domain.NativeAssetID, logger)
	h.history = usecase.NewHistoryUseCase(memory.NewHistoryRepository(h.store))
	h.ledger = usecase.NewLedgerUseCase(
		h.txManager, h.registry, h.oracle, h.history,
		balanceRepo, vaultRepo, h.outbox,
		h.governance, h.gateway, idGen, cfg.ledger, logger,
	).WithMetrics(h.metrics).WithClock(clock)
	h.recon = usecase.NewReconciliationUseCase(h.txManager, h.assetRepo, balanceRepo, vaultRepo, logger).WithMetrics(h.metrics)

	h.must(h.governance.Bootstrap(h.ctx, owner))
	h.addAsset(domain.NativeAssetID, 18, ethFeed)
	h.addAsset(usdcID, 6, usdcFeed)

	h.must(h.custody.Fund(alice, domain.NativeAssetID, oneEther.Mul(decimal.NewFromInt(1000))))
	h.must(h.custody.Fund(bob, domain.NativeAssetID, oneEther.Mul(decimal.NewFromInt(1000))))
	h.must(h.custody.Fund(alice, usdcID, decimal.NewFromInt(1_000_000_000000)))
	h.must(h.custody.Approve(alice, usdcID, decimal.NewFromInt(1_000_000_000000)))

	return h
}

func (h *harness) must(err error) {
	h.t.Helper()
	if err != nil {
		h.t.Fatalf("setup failed: %v", err)
	}
}

func (h *harness) addAsset(id string, decimals uint8, feed string) *domain.Asset {
	h.t.Helper()
	asset, err := h.registry.AddAsset(h.ctx, usecase.AddAssetInput{
		Caller:         owner,
		AssetID:        id,
		NativeDecimals: decimals,
		PriceFeed:      feed,
	})
	h.must(err)
	return asset
}

func (h *harness) deposit(user, assetID string, amount decimal.Decimal) (*usecase.BalanceChange, error) {
	return h.ledger.Deposit(h.ctx, usecase.DepositInput{Caller: user, AssetID: assetID, Amount: amount})
}

func (h *harness) withdraw(user, assetID string, amount decimal.Decimal) (*usecase.BalanceChange, error) {
	return h.ledger.Withdraw(h.ctx, usecase.WithdrawInput{Caller: user, AssetID: assetID, Amount: amount})
}

func (h *harness) balance(user, assetID string) decimal.Decimal {
	h.t.Helper()
	b, err := h.ledger.GetVaultBalance(h.ctx, user, assetID)
	h.must(err)
	return b
}

func (h *harness) tvl() decimal.Decimal {
	h.t.Helper()
	v, err := h.ledger.TotalValueLockedUSD(h.ctx)
	h.must(err)
	return v
}

func (h *harness) assetTotal(assetID string) decimal.Decimal {
	h.t.Helper()
	a, err := h.registry.GetAsset(h.ctx, assetID)
	h.must(err)
	return a.TotalDeposited
}

func (h *harness) historyLen(user string) int {
	h.t.Helper()
	records, err := h.history.GetTransactionHistory(h.ctx, user)
	h.must(err)
	return len(records)
}

func (h *harness) unpublished() []*domain.OutboxEvent {
	h.t.Helper()
	events, err := h.outbox.GetUnpublished(h.ctx, 1000)
	h.must(err)
	return events
}

// snapshot captures every externally observable quantity touched by a ledger operation.
type snapshot struct {
	balance    decimal.Decimal
	assetTotal decimal.Decimal
	tvl        decimal.Decimal
	history    int
	events     int
	wallet     decimal.Decimal
}

func (h *harness) snapshot(user, assetID string) snapshot {
	h.t.Helper()
	return snapshot{
		balance:    h.balance(user, assetID),
		assetTotal: h.assetTotal(assetID),
		tvl:        h.tvl(),
		history:    h.historyLen(user),
		events:     len(h.unpublished()),
		wallet:     h.custody.WalletBalance(user, assetID),
	}
}

func (h *harness) assertUnchanged(before snapshot, user, assetID string) {
	h.t.Helper()
	after := h.snapshot(user, assetID)
	if !after.balance.Equal(before.balance) ||
		!after.assetTotal.Equal(before.assetTotal) ||
		!after.tvl.Equal(before.tvl) ||
		after.history != before.history ||
		after.events != before.events ||
		!after.wallet.Equal(before.wallet) {
		h.t.Fatalf("state changed: before=%+v after=%+v", before, after)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type decimalMatcher struct {
	want decimal.Decimal
}

func (m decimalMatcher) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string {
	return "is numerically equal to " + m.want.String()
}

func decEq(want decimal.Decimal) gomock.Matcher {
	return decimalMatcher{want: want}
}
