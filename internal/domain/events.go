package domain

import "time"

// Event types
const (
	EventTypeAssetAdded         = "asset.added"
	EventTypeAssetStatusUpdated = "asset.status_updated"
	EventTypeDeposit            = "vault.deposit"
	EventTypeWithdrawal         = "vault.withdrawal"
	EventTypeEmergencyPause     = "vault.emergency_pause"
	EventTypeUnpaused           = "vault.unpaused"
	EventTypeRoleGranted        = "role.granted"
	EventTypeRoleRevoked        = "role.revoked"
)

// Aggregate types
const (
	AggregateTypeAsset = "asset"
	AggregateTypeVault = "vault"
	AggregateTypeRole  = "role"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// AssetAddedEvent payload
type AssetAddedEvent struct {
	AssetID   string `json:"asset_id"`
	PriceFeed string `json:"price_feed"`
	Decimals  uint8  `json:"decimals"`
}

// AssetStatusUpdatedEvent payload
type AssetStatusUpdatedEvent struct {
	AssetID string `json:"asset_id"`
	Active  bool   `json:"active"`
}

// BalanceChangeEvent is the payload of Deposit and Withdrawal events.
type BalanceChangeEvent struct {
	User            string `json:"user"`
	AssetID         string `json:"asset_id"`
	NativeAmount    string `json:"native_amount"`
	ValueUSD        string `json:"value_usd"`
	CanonicalAmount string `json:"canonical_amount"`
}

// PauseEvent payload, shared by EmergencyPause and Unpaused.
type PauseEvent struct {
	Caller string `json:"caller"`
}

// RoleEvent payload, shared by RoleGranted and RoleRevoked.
type RoleEvent struct {
	Principal string `json:"principal"`
	Role      Role   `json:"role"`
	Sender    string `json:"sender"`
}

// ToPayload converts an event struct into an outbox payload.
func (e AssetAddedEvent) ToPayload() map[string]any {
	return map[string]any{"asset_id": e.AssetID, "price_feed": e.PriceFeed, "decimals": e.Decimals}
}

// ToPayload converts an event struct into an outbox payload.
func (e AssetStatusUpdatedEvent) ToPayload() map[string]any {
	return map[string]any{"asset_id": e.AssetID, "active": e.Active}
}

// ToPayload converts an event struct into an outbox payload.
func (e BalanceChangeEvent) ToPayload() map[string]any {
	return map[string]any{
		"user":             e.User,
		"asset_id":         e.AssetID,
		"native_amount":    e.NativeAmount,
		"value_usd":        e.ValueUSD,
		"canonical_amount": e.CanonicalAmount,
	}
}

// ToPayload converts an event struct into an outbox payload.
func (e PauseEvent) ToPayload() map[string]any {
	return map[string]any{"caller": e.Caller}
}

// ToPayload converts an event struct into an outbox payload.
func (e RoleEvent) ToPayload() map[string]any {
	return map[string]any{"principal": e.Principal, "role": string(e.Role), "sender": e.Sender}
}
