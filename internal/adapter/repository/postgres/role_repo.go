package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// RoleRepository implements usecase.RoleRepository.
type RoleRepository struct {
	db querier
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return newRoleRepository(pool)
}

func newRoleRepository(db querier) *RoleRepository {
	return &RoleRepository{db: db}
}

// Grant records an assignment. It reports false if the principal already held the role.
func (r *RoleRepository) Grant(ctx context.Context, tx usecase.Transaction, assignment *domain.RoleAssignment) (bool, error) {
	q, err := txQuerier(tx)
	if err != nil {
		return false, err
	}

	tag, err := q.Exec(ctx, `
		INSERT INTO role_assignments (principal, role, granted_by, granted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (principal, role) DO NOTHING`,
		assignment.Principal,
		string(assignment.Role),
		assignment.GrantedBy,
		timeToPgTimestamptz(assignment.GrantedAt),
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// Revoke removes an assignment. It reports false if there was nothing to remove.
func (r *RoleRepository) Revoke(ctx context.Context, tx usecase.Transaction, principal string, role domain.Role) (bool, error) {
	q, err := txQuerier(tx)
	if err != nil {
		return false, err
	}

	tag, err := q.Exec(ctx, `DELETE FROM role_assignments WHERE principal = $1 AND role = $2`, principal, string(role))
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// HasRole reports whether principal holds role.
func (r *RoleRepository) HasRole(ctx context.Context, principal string, role domain.Role) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM role_assignments WHERE principal = $1 AND role = $2)`,
		principal, string(role)).Scan(&ok)
	return ok, err
}

// ListByPrincipal returns the principal's assignments, oldest first.
func (r *RoleRepository) ListByPrincipal(ctx context.Context, principal string) ([]*domain.RoleAssignment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT principal, role, granted_by, granted_at
		FROM role_assignments WHERE principal = $1
		ORDER BY granted_at, role`, principal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*domain.RoleAssignment, 0)
	for rows.Next() {
		var (
			a    domain.RoleAssignment
			role string
		)
		if err := rows.Scan(&a.Principal, &role, &a.GrantedBy, &a.GrantedAt); err != nil {
			return nil, err
		}
		a.Role = domain.Role(role)
		assignments = append(assignments, &a)
	}

	return assignments, rows.Err()
}
