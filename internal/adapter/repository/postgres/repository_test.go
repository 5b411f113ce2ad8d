package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase/mocks"
)

const usdc = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"

var ts = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func beginTx(t *testing.T, pool pgxmock.PgxPoolIface) *Tx {
	t.Helper()
	pool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	require.NoError(t, err)
	return tx.(*Tx)
}

func TestTxQuerierRejectsForeignTransactions(t *testing.T) {
	pool := newMockPool(t)
	repo := newVaultRepository(pool)

	_, err := repo.LockForUpdate(context.Background(), &mocks.MockTransaction{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transaction type")
}

func TestAssetRepository_GetByID(t *testing.T) {
	pool := newMockPool(t)
	repo := newAssetRepository(pool)

	pool.ExpectQuery(`SELECT .* FROM assets WHERE id = \$1`).
		WithArgs(usdc).
		WillReturnRows(pgxmock.NewRows([]string{"id", "native_decimals", "price_feed", "is_native", "active", "total_deposited", "created_at", "updated_at"}).
			AddRow(usdc, int16(6), "usdc-usd", false, true, "115792089237316195423570985008687907853269984665640564039457584007913129639935", ts, ts))

	asset, err := repo.GetByID(context.Background(), usdc)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), asset.NativeDecimals)
	assert.True(t, asset.Active)
	assert.True(t, asset.TotalDeposited.Equal(domain.MaxAmount))
	assertExpectations(t, pool)
}

func TestAssetRepository_GetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := newAssetRepository(pool)

	pool.ExpectQuery(`SELECT .* FROM assets WHERE id = \$1`).
		WithArgs(usdc).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), usdc)
	require.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestAssetRepository_CreateDuplicate(t *testing.T) {
	pool := newMockPool(t)
	repo := newAssetRepository(pool)
	tx := beginTx(t, pool)

	pool.ExpectExec(`INSERT INTO assets`).
		WithArgs(usdc, int16(6), "usdc-usd", false, true, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := repo.Create(context.Background(), tx, &domain.Asset{
		ID: usdc, NativeDecimals: 6, PriceFeed: "usdc-usd", Active: true, CreatedAt: ts, UpdatedAt: ts,
	})
	require.ErrorIs(t, err, domain.ErrAssetAlreadyExists)
}

func TestAssetRepository_UpdateStatusUnknown(t *testing.T) {
	pool := newMockPool(t)
	repo := newAssetRepository(pool)
	tx := beginTx(t, pool)

	pool.ExpectExec(`UPDATE assets SET active`).
		WithArgs(usdc, false, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), tx, usdc, false, ts)
	require.ErrorIs(t, err, domain.ErrAssetNotFound)
	assertExpectations(t, pool)
}

func TestBalanceRepository_MissingReadsAsZero(t *testing.T) {
	pool := newMockPool(t)
	repo := newBalanceRepository(pool)

	pool.ExpectQuery(`SELECT amount::text FROM balances`).
		WithArgs("alice", usdc).
		WillReturnError(pgx.ErrNoRows)

	amount, err := repo.Get(context.Background(), "alice", usdc)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
}

func TestBalanceRepository_ListByUser(t *testing.T) {
	pool := newMockPool(t)
	repo := newBalanceRepository(pool)

	pool.ExpectQuery(`LEFT JOIN balances`).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "amount"}).
			AddRow(domain.NativeAssetID, "0").
			AddRow(usdc, "2500000"))

	balances, err := repo.ListByUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, domain.NativeAssetID, balances[0].AssetID)
	assert.True(t, balances[0].Amount.IsZero())
	assert.True(t, balances[1].Amount.Equal(decimal.NewFromInt(2_500_000)))
	assert.Equal(t, "alice", balances[1].User)
}

func TestBalanceRepository_SetUpserts(t *testing.T) {
	pool := newMockPool(t)
	repo := newBalanceRepository(pool)
	tx := beginTx(t, pool)

	pool.ExpectExec(`INSERT INTO balances .* ON CONFLICT`).
		WithArgs("alice", usdc, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Set(context.Background(), tx, "alice", usdc, decimal.NewFromInt(7), ts))
	assertExpectations(t, pool)
}

func TestVaultRepository_LockForUpdate(t *testing.T) {
	pool := newMockPool(t)
	repo := newVaultRepository(pool)
	tx := beginTx(t, pool)

	pool.ExpectQuery(`FROM vault_state WHERE id = 1 FOR UPDATE`).
		WillReturnRows(pgxmock.NewRows([]string{"total_value_usd", "paused", "updated_at"}).
			AddRow("2000000000", true, ts))

	state, err := repo.LockForUpdate(context.Background(), tx)
	require.NoError(t, err)
	assert.True(t, state.TotalValueUSD.Equal(decimal.NewFromInt(2_000_000_000)))
	assert.True(t, state.Paused)
	assertExpectations(t, pool)
}

func TestRoleRepository_GrantReportsChange(t *testing.T) {
	pool := newMockPool(t)
	repo := newRoleRepository(pool)
	tx := beginTx(t, pool)

	assignment := &domain.RoleAssignment{Principal: "alice", Role: domain.RoleAdmin, GrantedBy: "owner", GrantedAt: ts}

	pool.ExpectExec(`INSERT INTO role_assignments`).
		WithArgs("alice", "admin", "owner", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec(`INSERT INTO role_assignments`).
		WithArgs("alice", "admin", "owner", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	granted, err := repo.Grant(context.Background(), tx, assignment)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = repo.Grant(context.Background(), tx, assignment)
	require.NoError(t, err)
	assert.False(t, granted)
	assertExpectations(t, pool)
}

func TestRoleRepository_HasRole(t *testing.T) {
	pool := newMockPool(t)
	repo := newRoleRepository(pool)

	pool.ExpectQuery(`SELECT EXISTS`).
		WithArgs("alice", "emergency").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasRole(context.Background(), "alice", domain.RoleEmergency)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHistoryRepository_AppendZeroAmount(t *testing.T) {
	pool := newMockPool(t)
	repo := newHistoryRepository(pool)
	tx := beginTx(t, pool)

	// A deposit below one canonical unit is recorded with amount 0.
	pool.ExpectExec(`INSERT INTO transactions`).
		WithArgs("01J2", "alice", domain.NativeAssetID, decimalToNumeric(decimal.Zero), true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Append(context.Background(), tx, &domain.Transaction{
		ID:        "01J2",
		User:      "alice",
		AssetID:   domain.NativeAssetID,
		Amount:    decimal.Zero,
		IsDeposit: true,
		Timestamp: ts,
	})
	require.NoError(t, err)
	assertExpectations(t, pool)
}

func TestHistoryRepository_ListByUserPaged(t *testing.T) {
	pool := newMockPool(t)
	repo := newHistoryRepository(pool)

	pool.ExpectQuery(`FROM transactions WHERE user_id = \$1 ORDER BY seq LIMIT \$2 OFFSET \$3`).
		WithArgs("alice", 2, 1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "asset_id", "amount", "is_deposit", "created_at"}).
			AddRow("01J0", "alice", usdc, "1000000", true, ts).
			AddRow("01J1", "alice", usdc, "400000", false, ts))

	records, err := repo.ListByUser(context.Background(), "alice", 2, 1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].IsDeposit)
	assert.True(t, records[1].Amount.Equal(decimal.NewFromInt(400_000)))
	assert.Equal(t, ts, records[1].Timestamp)
}

func TestHistoryRepository_ListAll(t *testing.T) {
	pool := newMockPool(t)
	repo := newHistoryRepository(pool)

	pool.ExpectQuery(`ORDER BY seq OFFSET \$2`).
		WithArgs("bob", 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "asset_id", "amount", "is_deposit", "created_at"}))

	records, err := repo.ListByUser(context.Background(), "bob", 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestOutboxRepository_GetUnpublished(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepository(pool)

	pool.ExpectQuery(`FROM outbox_events\s+WHERE NOT published`).
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at"}).
			AddRow("evt-1", usdc, domain.AggregateTypeVault, domain.EventTypeDeposit, []byte(`{"user":"alice","value_usd":"2500000"}`), ts))

	events, err := repo.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeDeposit, events[0].EventType)
	assert.Equal(t, "2500000", events[0].Payload["value_usd"])
	assert.False(t, events[0].Published)
}

func TestOutboxRepository_CreatePropagatesErrors(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepository(pool)
	tx := beginTx(t, pool)
	dbErr := errors.New("connection reset")

	pool.ExpectExec(`INSERT INTO outbox_events`).
		WithArgs("evt-1", "vault", domain.AggregateTypeVault, domain.EventTypeEmergencyPause, pgxmock.AnyArg(), pgxmock.AnyArg(), false).
		WillReturnError(dbErr)

	err := repo.Create(context.Background(), tx, &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "vault",
		AggregateType: domain.AggregateTypeVault,
		EventType:     domain.EventTypeEmergencyPause,
		Payload:       map[string]any{"caller": "owner"},
		CreatedAt:     ts,
	})
	require.ErrorIs(t, err, dbErr)
}
