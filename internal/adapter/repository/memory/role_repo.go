package memory

import (
	"context"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// RoleRepository implements usecase.RoleRepository.
type RoleRepository struct {
	store *Store
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(store *Store) *RoleRepository {
	return &RoleRepository{store: store}
}

// Grant records a role assignment within a transaction.
func (r *RoleRepository) Grant(ctx context.Context, tx usecase.Transaction, assignment *domain.RoleAssignment) (bool, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return false, err
	}
	key := roleKey{assignment.Principal, assignment.Role}
	if r.held(mtx, key) {
		return false, nil
	}
	a := *assignment
	mtx.roles[key] = &a
	return true, nil
}

// Revoke removes a role assignment within a transaction.
func (r *RoleRepository) Revoke(ctx context.Context, tx usecase.Transaction, principal string, role domain.Role) (bool, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return false, err
	}
	key := roleKey{principal, role}
	if !r.held(mtx, key) {
		return false, nil
	}
	mtx.roles[key] = nil
	return true, nil
}

// HasRole checks committed role assignments.
func (r *RoleRepository) HasRole(ctx context.Context, principal string, role domain.Role) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.roles[roleKey{principal, role}]
	return ok, nil
}

// ListByPrincipal returns committed assignments of a principal.
func (r *RoleRepository) ListByPrincipal(ctx context.Context, principal string) ([]*domain.RoleAssignment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.RoleAssignment
	for _, role := range domain.AllRoles() {
		if a, ok := r.store.roles[roleKey{principal, role}]; ok {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *RoleRepository) held(mtx *Tx, key roleKey) bool {
	if a, ok := mtx.roles[key]; ok {
		return a != nil
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.roles[key]
	return ok
}
