package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/assetvault/internal/domain"
)

// GovernanceUseCase manages role assignments and the pause flag.
// It serves as both AccessControl and PauseSwitch for the ledger.
type GovernanceUseCase struct {
	txManager  TransactionManager
	roleRepo   RoleRepository
	vaultRepo  VaultRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	retrier    Retrier
	logger     zerolog.Logger
	now        func() time.Time
}

// NewGovernanceUseCase creates a new GovernanceUseCase.
func NewGovernanceUseCase(
	txManager TransactionManager,
	roleRepo RoleRepository,
	vaultRepo VaultRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
) *GovernanceUseCase {
	return &GovernanceUseCase{
		txManager:  txManager,
		roleRepo:   roleRepo,
		vaultRepo:  vaultRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithRetrier sets the retrier used around governance transactions.
func (uc *GovernanceUseCase) WithRetrier(retrier Retrier) *GovernanceUseCase {
	uc.retrier = retrier
	return uc
}

// HasRole reports whether principal holds role.
func (uc *GovernanceUseCase) HasRole(ctx context.Context, principal string, role domain.Role) (bool, error) {
	return uc.roleRepo.HasRole(ctx, principal, role)
}

// RolesOf lists the roles a principal holds.
func (uc *GovernanceUseCase) RolesOf(ctx context.Context, principal string) ([]*domain.RoleAssignment, error) {
	return uc.roleRepo.ListByPrincipal(ctx, principal)
}

// IsPaused reports whether deposits and withdrawals are halted.
func (uc *GovernanceUseCase) IsPaused(ctx context.Context) (bool, error) {
	vault, err := uc.vaultRepo.Get(ctx)
	if err != nil {
		return false, err
	}
	return vault.Paused, nil
}

// Bootstrap grants every role to the initial owner. Roles already held are kept.
func (uc *GovernanceUseCase) Bootstrap(ctx context.Context, owner string) error {
	if err := domain.ValidatePrincipal(owner); err != nil {
		return err
	}

	return retry(ctx, uc.retrier, func() error {
		return uc.inTx(ctx, func(tx Transaction, now time.Time) error {
			for _, role := range domain.AllRoles() {
				if err := uc.grant(ctx, tx, owner, role, owner, now); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// RoleInput represents input for granting or revoking a role.
type RoleInput struct {
	Caller    string
	Principal string
	Role      domain.Role
}

// GrantRole gives a role to a principal. Requires OWNER.
func (uc *GovernanceUseCase) GrantRole(ctx context.Context, input RoleInput) error {
	if err := uc.checkRoleInput(ctx, OpGrantRole, input); err != nil {
		return err
	}

	err := retry(ctx, uc.retrier, func() error {
		return uc.inTx(ctx, func(tx Transaction, now time.Time) error {
			return uc.grant(ctx, tx, input.Principal, input.Role, input.Caller, now)
		})
	})
	uc.logResult(err, OpGrantRole, input)
	return err
}

// RevokeRole removes a role from a principal. Requires OWNER.
func (uc *GovernanceUseCase) RevokeRole(ctx context.Context, input RoleInput) error {
	if err := uc.checkRoleInput(ctx, OpRevokeRole, input); err != nil {
		return err
	}

	err := retry(ctx, uc.retrier, func() error {
		return uc.inTx(ctx, func(tx Transaction, now time.Time) error {
			return uc.revoke(ctx, tx, input.Principal, input.Role, input.Caller, now)
		})
	})
	uc.logResult(err, OpRevokeRole, input)
	return err
}

// RenounceRole lets the caller give up a role it holds.
func (uc *GovernanceUseCase) RenounceRole(ctx context.Context, caller string, role domain.Role) error {
	if err := guardReentry(ctx, OpRenounceRole); err != nil {
		return err
	}
	if err := domain.ValidatePrincipal(caller); err != nil {
		return err
	}
	if !role.IsValid() {
		return domain.ErrInvalidRole
	}

	input := RoleInput{Caller: caller, Principal: caller, Role: role}
	err := retry(ctx, uc.retrier, func() error {
		return uc.inTx(ctx, func(tx Transaction, now time.Time) error {
			return uc.revoke(ctx, tx, caller, role, caller, now)
		})
	})
	uc.logResult(err, OpRenounceRole, input)
	return err
}

// Pause halts deposits and withdrawals. Requires EMERGENCY.
func (uc *GovernanceUseCase) Pause(ctx context.Context, caller string) error {
	return uc.setPaused(ctx, OpPause, caller, domain.RoleEmergency, true)
}

// Unpause resumes deposits and withdrawals. Requires ADMIN.
func (uc *GovernanceUseCase) Unpause(ctx context.Context, caller string) error {
	return uc.setPaused(ctx, OpUnpause, caller, domain.RoleAdmin, false)
}

func (uc *GovernanceUseCase) setPaused(ctx context.Context, op, caller string, role domain.Role, paused bool) error {
	if err := guardReentry(ctx, op); err != nil {
		return err
	}
	if err := requireRole(ctx, uc, caller, role); err != nil {
		return err
	}

	eventType := domain.EventTypeUnpaused
	if paused {
		eventType = domain.EventTypeEmergencyPause
	}

	err := retry(ctx, uc.retrier, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		vault, err := uc.vaultRepo.LockForUpdate(ctx, tx)
		if err != nil {
			return err
		}
		if vault.Paused == paused {
			if paused {
				return domain.ErrAlreadyPaused
			}
			return domain.ErrNotPaused
		}

		now := uc.now()
		if err := uc.vaultRepo.SetPaused(ctx, tx, paused, now); err != nil {
			return err
		}

		event := domain.PauseEvent{Caller: caller}
		if err := uc.outboxRepo.Create(ctx, tx, newOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeVault, "vault", eventType, event.ToPayload(), now)); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		uc.logger.Debug().Err(err).Str("caller", caller).Str("operation", op).Msg("pause switch rejected")
		return err
	}

	uc.logger.Warn().Str("caller", caller).Bool("paused", paused).Msg("pause switch changed")
	return nil
}

func (uc *GovernanceUseCase) checkRoleInput(ctx context.Context, op string, input RoleInput) error {
	if err := guardReentry(ctx, op); err != nil {
		return err
	}
	if err := requireRole(ctx, uc, input.Caller, domain.RoleOwner); err != nil {
		return err
	}
	if err := domain.ValidatePrincipal(input.Principal); err != nil {
		return err
	}
	if !input.Role.IsValid() {
		return domain.ErrInvalidRole
	}
	return nil
}

func (uc *GovernanceUseCase) inTx(ctx context.Context, fn func(tx Transaction, now time.Time) error) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := uc.vaultRepo.LockForUpdate(ctx, tx); err != nil {
		return err
	}

	if err := fn(tx, uc.now()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *GovernanceUseCase) grant(ctx context.Context, tx Transaction, principal string, role domain.Role, sender string, now time.Time) error {
	granted, err := uc.roleRepo.Grant(ctx, tx, &domain.RoleAssignment{
		Principal: principal,
		Role:      role,
		GrantedBy: sender,
		GrantedAt: now,
	})
	if err != nil || !granted {
		return err
	}

	event := domain.RoleEvent{Principal: principal, Role: role, Sender: sender}
	return uc.outboxRepo.Create(ctx, tx, newOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeRole, principal, domain.EventTypeRoleGranted, event.ToPayload(), now))
}

func (uc *GovernanceUseCase) revoke(ctx context.Context, tx Transaction, principal string, role domain.Role, sender string, now time.Time) error {
	revoked, err := uc.roleRepo.Revoke(ctx, tx, principal, role)
	if err != nil || !revoked {
		return err
	}

	event := domain.RoleEvent{Principal: principal, Role: role, Sender: sender}
	return uc.outboxRepo.Create(ctx, tx, newOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeRole, principal, domain.EventTypeRoleRevoked, event.ToPayload(), now))
}

func (uc *GovernanceUseCase) logResult(err error, op string, input RoleInput) {
	if err != nil {
		uc.logger.Debug().Err(err).Str("operation", op).Str("caller", input.Caller).Msg("role change rejected")
		return
	}
	uc.logger.Info().
		Str("operation", op).
		Str("caller", input.Caller).
		Str("principal", input.Principal).
		Str("role", string(input.Role)).
		Msg("role changed")
}
