// Package custody provides an in-process value-transfer gateway. It keeps
// external wallet balances, token allowances granted to the vault, and the
// vault's own holdings.
package custody

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
)

type walletKey struct {
	owner   string
	assetID string
}

// Gateway implements usecase.TransferGateway.
type Gateway struct {
	mu            sync.Mutex
	nativeAssetID string
	wallets       map[walletKey]decimal.Decimal
	allowances    map[walletKey]decimal.Decimal
	holdings      map[string]decimal.Decimal
}

// NewGateway creates an empty gateway.
func NewGateway(nativeAssetID string) *Gateway {
	if nativeAssetID == "" {
		nativeAssetID = domain.NativeAssetID
	}
	return &Gateway{
		nativeAssetID: domain.NormalizeAssetID(nativeAssetID),
		wallets:       make(map[walletKey]decimal.Decimal),
		allowances:    make(map[walletKey]decimal.Decimal),
		holdings:      make(map[string]decimal.Decimal),
	}
}

// Fund credits an external wallet.
func (g *Gateway) Fund(owner, assetID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrAmountMustBeGreaterThanZero
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	k := walletKey{owner, domain.NormalizeAssetID(assetID)}
	g.wallets[k] = g.wallets[k].Add(amount)
	return nil
}

// Approve sets the amount of a token the vault may pull from owner.
func (g *Gateway) Approve(owner, assetID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return domain.ErrInvalidAmount
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.allowances[walletKey{owner, domain.NormalizeAssetID(assetID)}] = amount
	return nil
}

// WalletBalance returns an external wallet balance.
func (g *Gateway) WalletBalance(owner, assetID string) decimal.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.wallets[walletKey{owner, domain.NormalizeAssetID(assetID)}]
}

// Allowance returns the remaining allowance owner granted the vault.
func (g *Gateway) Allowance(owner, assetID string) decimal.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.allowances[walletKey{owner, domain.NormalizeAssetID(assetID)}]
}

// Holdings returns what the vault holds of an asset, in native units.
func (g *Gateway) Holdings(assetID string) decimal.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holdings[domain.NormalizeAssetID(assetID)]
}

// ReceiveNative moves native value from the caller's wallet into custody.
func (g *Gateway) ReceiveNative(ctx context.Context, from string, amount decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.moveIn(walletKey{from, g.nativeAssetID}, amount)
}

// PullToken moves tokens from the caller into custody against its allowance.
func (g *Gateway) PullToken(ctx context.Context, token, from string, amount decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := walletKey{from, domain.NormalizeAssetID(token)}
	if g.allowances[k].LessThan(amount) {
		return fmt.Errorf("%w: allowance %s < %s", domain.ErrTransferFailed, g.allowances[k], amount)
	}
	if err := g.moveIn(k, amount); err != nil {
		return err
	}
	g.allowances[k] = g.allowances[k].Sub(amount)
	return nil
}

// PushNative pays native value out of custody.
func (g *Gateway) PushNative(ctx context.Context, to string, amount decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.moveOut(walletKey{to, g.nativeAssetID}, amount)
}

// PushToken pays tokens out of custody.
func (g *Gateway) PushToken(ctx context.Context, token, to string, amount decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.moveOut(walletKey{to, domain.NormalizeAssetID(token)}, amount)
}

func (g *Gateway) moveIn(k walletKey, amount decimal.Decimal) error {
	if g.wallets[k].LessThan(amount) {
		return fmt.Errorf("%w: wallet %s holds %s of %s, need %s", domain.ErrTransferFailed, k.owner, g.wallets[k], k.assetID, amount)
	}
	g.wallets[k] = g.wallets[k].Sub(amount)
	g.holdings[k.assetID] = g.holdings[k.assetID].Add(amount)
	return nil
}

func (g *Gateway) moveOut(k walletKey, amount decimal.Decimal) error {
	if g.holdings[k.assetID].LessThan(amount) {
		return fmt.Errorf("%w: custody holds %s of %s, need %s", domain.ErrTransferFailed, g.holdings[k.assetID], k.assetID, amount)
	}
	g.holdings[k.assetID] = g.holdings[k.assetID].Sub(amount)
	g.wallets[k] = g.wallets[k].Add(amount)
	return nil
}
