package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/assetvault/internal/adapter/http/dto"
	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/usecase"
)

// GovernanceService defines the behavior needed by AdminHandler.
type GovernanceService interface {
	Pause(ctx context.Context, caller string) error
	Unpause(ctx context.Context, caller string) error
	IsPaused(ctx context.Context) (bool, error)
	GrantRole(ctx context.Context, input usecase.RoleInput) error
	RevokeRole(ctx context.Context, input usecase.RoleInput) error
	RenounceRole(ctx context.Context, caller string, role domain.Role) error
	RolesOf(ctx context.Context, principal string) ([]*domain.RoleAssignment, error)
}

// ReconciliationService runs the ledger invariant check.
type ReconciliationService interface {
	Check(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// AdminHandler handles pause, role and reconciliation requests.
type AdminHandler struct {
	governance     GovernanceService
	reconciliation ReconciliationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(governance GovernanceService, reconciliation ReconciliationService) *AdminHandler {
	return &AdminHandler{governance: governance, reconciliation: reconciliation}
}

// Pause halts deposits and withdrawals.
func (h *AdminHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, true)
}

// Unpause resumes deposits and withdrawals.
func (h *AdminHandler) Unpause(w http.ResponseWriter, r *http.Request) {
	h.setPaused(w, r, false)
}

func (h *AdminHandler) setPaused(w http.ResponseWriter, r *http.Request, paused bool) {
	principal, ok := caller(w, r)
	if !ok {
		return
	}

	var err error
	if paused {
		err = h.governance.Pause(r.Context(), principal)
	} else {
		err = h.governance.Unpause(r.Context(), principal)
	}
	if err != nil {
		writeDomainError(w, r, "failed to change pause state", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PauseResponse{Paused: paused})
}

// Status reports whether the ledger is paused.
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	paused, err := h.governance.IsPaused(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to get pause state", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PauseResponse{Paused: paused})
}

// GrantRole gives a role to a principal.
func (h *AdminHandler) GrantRole(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.governance.GrantRole)
}

// RevokeRole takes a role from a principal.
func (h *AdminHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.governance.RevokeRole)
}

func (h *AdminHandler) changeRole(w http.ResponseWriter, r *http.Request, apply func(context.Context, usecase.RoleInput) error) {
	principal, ok := caller(w, r)
	if !ok {
		return
	}

	var req dto.RoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := apply(r.Context(), req.ToUseCaseInput(principal)); err != nil {
		writeDomainError(w, r, "failed to change role", err)
		return
	}

	h.writeRoles(w, r, req.Principal)
}

// RenounceRole gives up one of the caller's own roles.
func (h *AdminHandler) RenounceRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := caller(w, r)
	if !ok {
		return
	}

	var req dto.RenounceRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.governance.RenounceRole(r.Context(), principal, domain.Role(req.Role)); err != nil {
		writeDomainError(w, r, "failed to renounce role", err)
		return
	}

	h.writeRoles(w, r, principal)
}

// Roles lists a principal's roles.
func (h *AdminHandler) Roles(w http.ResponseWriter, r *http.Request) {
	h.writeRoles(w, r, chi.URLParam(r, "principal"))
}

func (h *AdminHandler) writeRoles(w http.ResponseWriter, r *http.Request, principal string) {
	roles, err := h.governance.RolesOf(r.Context(), principal)
	if err != nil {
		writeDomainError(w, r, "failed to list roles", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RolesFromDomain(roles))
}

// Reconciliation runs the invariant check on demand.
func (h *AdminHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliation.Check(r.Context())
	if err != nil {
		writeDomainError(w, r, "reconciliation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(report))
}
