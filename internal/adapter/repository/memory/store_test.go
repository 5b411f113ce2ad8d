package memory

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/assetvault/internal/domain"
)

const (
	tokenA = "0x1111111111111111111111111111111111111111"
	tokenB = "0x2222222222222222222222222222222222222222"
)

type repos struct {
	tx      *TxManager
	assets  *AssetRepository
	balance *BalanceRepository
	history *HistoryRepository
	vault   *VaultRepository
	roles   *RoleRepository
	outbox  *OutboxRepository
}

func newRepos() repos {
	s := NewStore()
	return repos{
		tx:      NewTxManager(s),
		assets:  NewAssetRepository(s),
		balance: NewBalanceRepository(s),
		history: NewHistoryRepository(s),
		vault:   NewVaultRepository(s),
		roles:   NewRoleRepository(s),
		outbox:  NewOutboxRepository(s),
	}
}

func seedAssets(t *testing.T, r repos, ids ...string) {
	t.Helper()
	ctx := context.Background()
	tx, err := r.tx.Begin(ctx)
	require.NoError(t, err)
	for _, id := range ids {
		require.NoError(t, r.assets.Create(ctx, tx, &domain.Asset{ID: id, NativeDecimals: 18, PriceFeed: "feed", Active: true}))
	}
	require.NoError(t, tx.Commit(ctx))
}

func TestTx_CommitPublishesWrites(t *testing.T) {
	r := newRepos()
	ctx := context.Background()
	seedAssets(t, r, tokenA)

	tx, err := r.tx.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, r.balance.Set(ctx, tx, "alice", tokenA, decimal.NewFromInt(50), time.Now()))
	require.NoError(t, r.vault.UpdateTotalValue(ctx, tx, decimal.NewFromInt(7), time.Now()))

	// not visible before commit
	got, err := r.balance.Get(ctx, "alice", tokenA)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	inTx, err := r.balance.GetForUpdate(ctx, tx, "alice", tokenA)
	require.NoError(t, err)
	assert.True(t, inTx.Equal(decimal.NewFromInt(50)))

	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Rollback(ctx))

	got, err = r.balance.Get(ctx, "alice", tokenA)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(50)))

	vault, err := r.vault.Get(ctx)
	require.NoError(t, err)
	assert.True(t, vault.TotalValueUSD.Equal(decimal.NewFromInt(7)))
}

func TestTx_RollbackDiscardsWrites(t *testing.T) {
	r := newRepos()
	ctx := context.Background()
	seedAssets(t, r, tokenA)

	tx, err := r.tx.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, r.balance.Set(ctx, tx, "alice", tokenA, decimal.NewFromInt(50), time.Now()))
	require.NoError(t, r.assets.UpdateTotalDeposited(ctx, tx, tokenA, decimal.NewFromInt(50), time.Now()))
	require.NoError(t, r.history.Append(ctx, tx, &domain.Transaction{ID: "t1", User: "alice", AssetID: tokenA, Amount: decimal.NewFromInt(50), IsDeposit: true}))
	require.NoError(t, r.outbox.Create(ctx, tx, &domain.OutboxEvent{ID: "e1"}))
	require.NoError(t, r.vault.SetPaused(ctx, tx, true, time.Now()))
	require.NoError(t, tx.Rollback(ctx))

	got, _ := r.balance.Get(ctx, "alice", tokenA)
	assert.True(t, got.IsZero())
	asset, _ := r.assets.GetByID(ctx, tokenA)
	assert.True(t, asset.TotalDeposited.IsZero())
	count, _ := r.history.CountByUser(ctx, "alice")
	assert.Zero(t, count)
	events, _ := r.outbox.GetUnpublished(ctx, 10)
	assert.Empty(t, events)
	vault, _ := r.vault.Get(ctx)
	assert.False(t, vault.Paused)

	assert.ErrorIs(t, tx.Commit(ctx), ErrTxDone)
}

func TestTx_Serializes(t *testing.T) {
	r := newRepos()
	ctx := context.Background()

	first, err := r.tx.Begin(ctx)
	require.NoError(t, err)

	var started atomic.Bool
	done := make(chan struct{})
	go func() {
		second, err := r.tx.Begin(ctx)
		started.Store(true)
		if err == nil {
			_ = second.Rollback(ctx)
		}
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, started.Load(), "second transaction began while first was open")

	require.NoError(t, first.Commit(ctx))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second transaction never started")
	}
}

func TestTx_BeginHonorsContextWhileWaiting(t *testing.T) {
	r := newRepos()
	ctx := context.Background()

	held, err := r.tx.Begin(ctx)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = r.tx.Begin(waitCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, held.Rollback(ctx))

	next, err := r.tx.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, next.Commit(ctx))
}

func TestAssetRepository_RegistrationOrder(t *testing.T) {
	r := newRepos()
	ctx := context.Background()
	seedAssets(t, r, tokenB, tokenA)

	assets, err := r.assets.List(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, tokenB, assets[0].ID)
	assert.Equal(t, tokenA, assets[1].ID)

	tx, _ := r.tx.Begin(ctx)
	defer tx.Rollback(ctx)
	err = r.assets.Create(ctx, tx, &domain.Asset{ID: tokenA})
	assert.ErrorIs(t, err, domain.ErrAssetAlreadyExists)

	_, err = r.assets.GetByIDForUpdate(ctx, tx, "0x9999999999999999999999999999999999999999")
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestAssetRepository_ReadsReturnCopies(t *testing.T) {
	r := newRepos()
	ctx := context.Background()
	seedAssets(t, r, tokenA)

	a, err := r.assets.GetByID(ctx, tokenA)
	require.NoError(t, err)
	a.Active = false

	again, err := r.assets.GetByID(ctx, tokenA)
	require.NoError(t, err)
	assert.True(t, again.Active)
}

func TestBalanceRepository_ListAndSum(t *testing.T) {
	r := newRepos()
	ctx := context.Background()
	seedAssets(t, r, tokenA, tokenB)

	tx, _ := r.tx.Begin(ctx)
	require.NoError(t, r.balance.Set(ctx, tx, "alice", tokenB, decimal.NewFromInt(3), time.Now()))
	require.NoError(t, r.balance.Set(ctx, tx, "bob", tokenB, decimal.NewFromInt(4), time.Now()))
	require.NoError(t, tx.Commit(ctx))

	balances, err := r.balance.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, tokenA, balances[0].AssetID)
	assert.True(t, balances[0].Amount.IsZero())
	assert.True(t, balances[1].Amount.Equal(decimal.NewFromInt(3)))

	tx, _ = r.tx.Begin(ctx)
	defer tx.Rollback(ctx)
	require.NoError(t, r.balance.Set(ctx, tx, "alice", tokenB, decimal.NewFromInt(10), time.Now()))
	sums, err := r.balance.SumByAsset(ctx, tx)
	require.NoError(t, err)
	assert.True(t, sums[tokenB].Equal(decimal.NewFromInt(14)))
}

func TestHistoryRepository_Pagination(t *testing.T) {
	r := newRepos()
	ctx := context.Background()

	tx, _ := r.tx.Begin(ctx)
	for i := 1; i <= 5; i++ {
		require.NoError(t, r.history.Append(ctx, tx, &domain.Transaction{
			User:      "alice",
			AssetID:   tokenA,
			Amount:    decimal.NewFromInt(int64(i)),
			IsDeposit: true,
		}))
	}
	require.NoError(t, tx.Commit(ctx))

	all, err := r.history.ListByUser(ctx, "alice", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.True(t, all[0].Amount.Equal(decimal.NewFromInt(1)))

	page, err := r.history.ListByUser(ctx, "alice", 2, 3)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].Amount.Equal(decimal.NewFromInt(4)))

	empty, err := r.history.ListByUser(ctx, "alice", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRoleRepository_GrantRevoke(t *testing.T) {
	r := newRepos()
	ctx := context.Background()

	tx, _ := r.tx.Begin(ctx)
	granted, err := r.roles.Grant(ctx, tx, &domain.RoleAssignment{Principal: "ops", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, granted)
	granted, err = r.roles.Grant(ctx, tx, &domain.RoleAssignment{Principal: "ops", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.False(t, granted)
	require.NoError(t, tx.Commit(ctx))

	ok, _ := r.roles.HasRole(ctx, "ops", domain.RoleAdmin)
	assert.True(t, ok)

	tx, _ = r.tx.Begin(ctx)
	revoked, err := r.roles.Revoke(ctx, tx, "ops", domain.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = r.roles.Revoke(ctx, tx, "ops", domain.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, revoked)
	require.NoError(t, tx.Commit(ctx))

	ok, _ = r.roles.HasRole(ctx, "ops", domain.RoleAdmin)
	assert.False(t, ok)
}

func TestOutboxRepository_PublishLifecycle(t *testing.T) {
	r := newRepos()
	ctx := context.Background()

	tx, _ := r.tx.Begin(ctx)
	require.NoError(t, r.outbox.Create(ctx, tx, &domain.OutboxEvent{ID: "e1", EventType: domain.EventTypeDeposit}))
	require.NoError(t, r.outbox.Create(ctx, tx, &domain.OutboxEvent{ID: "e2", EventType: domain.EventTypeWithdrawal}))
	require.NoError(t, tx.Commit(ctx))

	events, err := r.outbox.GetUnpublished(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].ID)

	publishedAt := time.Now().Add(-time.Hour)
	require.NoError(t, r.outbox.MarkPublished(ctx, "e1", publishedAt))
	events, _ = r.outbox.GetUnpublished(ctx, 10)
	require.Len(t, events, 1)
	assert.Equal(t, "e2", events[0].ID)

	require.NoError(t, r.outbox.DeletePublished(ctx, time.Now()))
	assert.Len(t, r.outbox.store.outbox, 1)
}
