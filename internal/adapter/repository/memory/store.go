// Package memory implements the usecase repositories on an in-process store.
// Transactions are serialized and buffer their writes; nothing reaches the
// committed state until Commit.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// ErrTxDone is returned when committing a finished transaction.
var ErrTxDone = errors.New("memory: transaction already committed or rolled back")

type balanceKey struct {
	user    string
	assetID string
}

type roleKey struct {
	principal string
	role      domain.Role
}

// Store holds the committed ledger state.
type Store struct {
	// sem is a one-slot semaphore held for the whole life of a transaction.
	sem chan struct{}
	// mu guards the committed state below.
	mu sync.RWMutex

	assets     map[string]*domain.Asset
	assetOrder []string
	balances   map[balanceKey]decimal.Decimal
	history    map[string][]*domain.Transaction
	vault      domain.VaultState
	roles      map[roleKey]*domain.RoleAssignment
	outbox     []*domain.OutboxEvent
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sem:      make(chan struct{}, 1),
		assets:   make(map[string]*domain.Asset),
		balances: make(map[balanceKey]decimal.Decimal),
		history:  make(map[string][]*domain.Transaction),
		vault:    domain.VaultState{TotalValueUSD: decimal.Zero},
		roles:    make(map[roleKey]*domain.RoleAssignment),
	}
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction, waiting for any running one to finish
// or for ctx to be done, whichever comes first.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case m.store.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Tx{
		store:    m.store,
		assets:   make(map[string]*domain.Asset),
		balances: make(map[balanceKey]decimal.Decimal),
		roles:    make(map[roleKey]*domain.RoleAssignment),
	}, nil
}

// Tx buffers the writes of one transaction.
type Tx struct {
	store *Store
	done  bool

	assets    map[string]*domain.Asset
	newAssets []string
	balances  map[balanceKey]decimal.Decimal
	history   []*domain.Transaction
	vault     *domain.VaultState
	roles     map[roleKey]*domain.RoleAssignment // nil marks a revocation
	outbox    []*domain.OutboxEvent
}

// Commit applies the buffered writes atomically.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	defer t.store.release()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range t.assets {
		s.assets[id] = a
	}
	s.assetOrder = append(s.assetOrder, t.newAssets...)
	for k, v := range t.balances {
		s.balances[k] = v
	}
	for _, rec := range t.history {
		s.history[rec.User] = append(s.history[rec.User], rec)
	}
	if t.vault != nil {
		s.vault = *t.vault
	}
	for k, a := range t.roles {
		if a == nil {
			delete(s.roles, k)
			continue
		}
		s.roles[k] = a
	}
	s.outbox = append(s.outbox, t.outbox...)

	return nil
}

// Rollback discards the buffered writes. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.release()
	return nil
}

func (s *Store) release() {
	<-s.sem
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok || mtx == nil {
		return nil, errors.New("memory: foreign transaction")
	}
	if mtx.done {
		return nil, ErrTxDone
	}
	return mtx, nil
}

func copyAsset(a *domain.Asset) *domain.Asset {
	c := *a
	return &c
}
