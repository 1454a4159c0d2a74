package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// AdminAction enumerates the moderation operations an admin can take
// on another account.
type AdminAction string

const (
	AdminActionPromote AdminAction = "promote"
	AdminActionDemote  AdminAction = "demote"
	AdminActionBan     AdminAction = "ban"
)

// AdminGuard enforces the moderation rules:
//
//  1. an admin never targets their own account
//  2. the super-admin account is immutable by anyone
//  3. only the super-admin may target another admin
//
// Each action runs its checks and its write inside one transaction so
// a concurrent role change cannot slip between them.
type AdminGuard struct {
	repo         RepositoryManager
	logger       Logger
	activitySink ActivitySink
}

// NewAdminGuard creates a guard over the given repositories.
func NewAdminGuard(repo RepositoryManager) *AdminGuard {
	return &AdminGuard{
		repo:         repo,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (g *AdminGuard) WithLogger(logger Logger) *AdminGuard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// WithActivitySink configures an ActivitySink for moderation events.
func (g *AdminGuard) WithActivitySink(sink ActivitySink) *AdminGuard {
	g.activitySink = normalizeActivitySink(sink)
	return g
}

// Promote sets the target's role to ADMIN.
func (g *AdminGuard) Promote(ctx context.Context, actorID, targetID int64) (*User, error) {
	return g.changeRole(ctx, AdminActionPromote, actorID, targetID, RoleAdmin)
}

// Demote sets the target's role to USER.
func (g *AdminGuard) Demote(ctx context.Context, actorID, targetID int64) (*User, error) {
	return g.changeRole(ctx, AdminActionDemote, actorID, targetID, RoleUser)
}

// Ban toggles the target's ban flag. Banning an active account and
// un-banning a banned one are the same operation.
func (g *AdminGuard) Ban(ctx context.Context, actorID, targetID int64) (*User, error) {
	var target *User

	err := g.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := g.authorize(ctx, tx, AdminActionBan, actorID, targetID)
		if err != nil {
			return err
		}

		banned, err := g.repo.Users().ToggleBanTx(ctx, tx, targetID)
		if err != nil {
			return err
		}

		record.Banned = banned
		target = record
		return nil
	})

	if err != nil {
		g.emitRejected(ctx, AdminActionBan, actorID, targetID, err)
		return nil, err
	}

	g.emit(ctx, ActivityEvent{
		EventType: ActivityEventBanToggled,
		Actor:     ActorRef{ID: actorID, Type: "user"},
		UserID:    target.ID,
		Metadata: map[string]any{
			"action": string(AdminActionBan),
			"banned": target.Banned,
		},
	})

	return target, nil
}

func (g *AdminGuard) changeRole(ctx context.Context, action AdminAction, actorID, targetID int64, role UserRole) (*User, error) {
	var target *User
	var fromRole UserRole

	err := g.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := g.authorize(ctx, tx, action, actorID, targetID)
		if err != nil {
			return err
		}

		fromRole = record.Role

		updated, err := g.repo.Users().UpdateRoleTx(ctx, tx, targetID, role)
		if err != nil {
			return err
		}

		target = updated
		return nil
	})

	if err != nil {
		g.emitRejected(ctx, action, actorID, targetID, err)
		return nil, err
	}

	g.emit(ctx, ActivityEvent{
		EventType: ActivityEventRoleChanged,
		Actor:     ActorRef{ID: actorID, Type: "user"},
		UserID:    target.ID,
		FromRole:  fromRole,
		ToRole:    target.Role,
		Metadata: map[string]any{
			"action": string(action),
		},
	})

	return target, nil
}

// authorize runs the rule checks in a fixed order: self-action first,
// then super-admin immutability, then target existence, then
// admin-on-admin privilege.
func (g *AdminGuard) authorize(ctx context.Context, tx bun.Tx, action AdminAction, actorID, targetID int64) (*User, error) {
	if actorID == targetID {
		return nil, ErrSelfActionForbidden.Clone().WithMetadata(map[string]any{
			"action":   string(action),
			"actor_id": actorID,
		})
	}

	superID, err := g.repo.Users().SuperAdminIDTx(ctx, tx)
	if err != nil {
		return nil, err
	}

	if targetID == superID {
		return nil, ErrSuperAdminImmutable.Clone().WithMetadata(map[string]any{
			"action":    string(action),
			"actor_id":  actorID,
			"target_id": targetID,
		})
	}

	target, err := g.repo.Users().GetByIDTx(ctx, tx, targetID)
	if err != nil {
		return nil, err
	}

	if target.IsAdmin() && actorID != superID {
		return nil, ErrInsufficientPrivilege.Clone().WithMetadata(map[string]any{
			"action":    string(action),
			"actor_id":  actorID,
			"target_id": targetID,
		})
	}

	return target, nil
}

func (g *AdminGuard) emit(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := normalizeActivitySink(g.activitySink).Record(ctx, event); err != nil {
		g.logger.Error("activity sink record error: %v", err)
	}
}

func (g *AdminGuard) emitRejected(ctx context.Context, action AdminAction, actorID, targetID int64, cause error) {
	var richErr *goerrors.Error
	if !goerrors.As(cause, &richErr) || richErr.Category != goerrors.CategoryAuthz {
		return
	}

	g.emit(ctx, ActivityEvent{
		EventType: ActivityEventAdminRejected,
		Actor:     ActorRef{ID: actorID, Type: "user"},
		UserID:    targetID,
		Metadata: map[string]any{
			"action": string(action),
			"reason": richErr.TextCode,
		},
	})
}
