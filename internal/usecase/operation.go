package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/assetvault/internal/domain"
)

type operationKey struct{}

// withOperation marks ctx as belonging to an in-flight mutation. Collaborators
// only ever see the marked context.
func withOperation(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operationKey{}, name)
}

// OperationFromContext returns the name of the mutation ctx belongs to.
func OperationFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(operationKey{}).(string)
	return name, ok
}

func guardReentry(ctx context.Context, op string) error {
	if running, ok := OperationFromContext(ctx); ok {
		return fmt.Errorf("%w: %s invoked during %s", domain.ErrReentrantCall, op, running)
	}
	return nil
}

func requireRole(ctx context.Context, access AccessControl, principal string, role domain.Role) error {
	ok, err := access.HasRole(ctx, principal, role)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s lacks role %s", domain.ErrUnauthorized, principal, role)
	}
	return nil
}

func retry(ctx context.Context, r Retrier, operation func() error) error {
	if r == nil {
		return operation()
	}
	return r.Retry(ctx, operation)
}

func newOutboxEvent(id, aggregateType, aggregateID, eventType string, payload map[string]any, now time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            id,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}

type nopMetrics struct{}

func (nopMetrics) ObserveDeposit(string, decimal.Decimal, decimal.Decimal) {}
func (nopMetrics) ObserveWithdrawal(string, decimal.Decimal, decimal.Decimal) {}
func (nopMetrics) ObserveRejection(string, error) {}
func (nopMetrics) ObservePriceFailure(string, error) {}
func (nopMetrics) SetTotalValueLocked(decimal.Decimal) {}
func (nopMetrics) SetAssetTotal(string, decimal.Decimal) {}
func (nopMetrics) SetReconciliationDiscrepancies(int) {}
