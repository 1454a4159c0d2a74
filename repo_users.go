package auth

import (
	"context"
	"database/sql"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the persistence surface for user records. Every method has
// a Tx variant so the admin guard and registration can run their
// check-then-write sequences inside a single transaction.
type Users interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UsernameExistsTx(ctx context.Context, tx bun.IDB, username string) (bool, error)
	Count(ctx context.Context) (int, error)
	CountTx(ctx context.Context, tx bun.IDB) (int, error)
	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	UpdateRole(ctx context.Context, id int64, role UserRole) (*User, error)
	UpdateRoleTx(ctx context.Context, tx bun.IDB, id int64, role UserRole) (*User, error)
	ToggleBan(ctx context.Context, id int64) (bool, error)
	ToggleBanTx(ctx context.Context, tx bun.IDB, id int64) (bool, error)
	SuperAdminID(ctx context.Context) (int64, error)
	SuperAdminIDTx(ctx context.Context, tx bun.IDB) (int64, error)
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (a *users) GetByID(ctx context.Context, id int64) (*User, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *users) GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*User, error) {
	record := &User{}
	err := tx.NewSelect().Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err, map[string]any{"id": id})
	}
	return record.EnsureRole(), nil
}

func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	return a.GetByUsernameTx(ctx, a.db, username)
}

func (a *users) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err, map[string]any{"username": username})
	}
	return record.EnsureRole(), nil
}

func (a *users) UsernameExists(ctx context.Context, username string) (bool, error) {
	return a.UsernameExistsTx(ctx, a.db, username)
}

func (a *users) UsernameExistsTx(ctx context.Context, tx bun.IDB, username string) (bool, error) {
	return tx.NewSelect().Model((*User)(nil)).
		Where("?TableAlias.username = ?", username).
		Exists(ctx)
}

func (a *users) Count(ctx context.Context) (int, error) {
	return a.CountTx(ctx, a.db)
}

func (a *users) CountTx(ctx context.Context, tx bun.IDB) (int, error) {
	return tx.NewSelect().Model((*User)(nil)).Count(ctx)
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

// RegisterTx inserts the record and lets the database assign the id.
// Callers decide the role; see RegisterUserHandler for the bootstrap
// rule.
func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	user.EnsureRole()
	_, err := tx.NewInsert().Model(user).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to insert user")
	}
	return user, nil
}

func (a *users) UpdateRole(ctx context.Context, id int64, role UserRole) (*User, error) {
	return a.UpdateRoleTx(ctx, a.db, id, role)
}

func (a *users) UpdateRoleTx(ctx context.Context, tx bun.IDB, id int64, role UserRole) (*User, error) {
	record := &User{}
	err := tx.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"user_role" = ?,
			"updated_at" = CURRENT_TIMESTAMP
		WHERE
			"usr"."id" = ?
		RETURNING *;
	`, string(role), id).Scan(ctx, record)
	if err != nil {
		return nil, wrapNotFound(err, map[string]any{"id": id, "role": role})
	}
	return record, nil
}

func (a *users) ToggleBan(ctx context.Context, id int64) (bool, error) {
	return a.ToggleBanTx(ctx, a.db, id)
}

// ToggleBanTx flips the ban flag in a single statement so concurrent
// toggles never lose an update.
func (a *users) ToggleBanTx(ctx context.Context, tx bun.IDB, id int64) (bool, error) {
	var banned bool
	err := tx.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"is_banned" = NOT "is_banned",
			"updated_at" = CURRENT_TIMESTAMP
		WHERE
			"usr"."id" = ?
		RETURNING "is_banned";
	`, id).Scan(ctx, &banned)
	if err != nil {
		return false, wrapNotFound(err, map[string]any{"id": id})
	}
	return banned, nil
}

func (a *users) SuperAdminID(ctx context.Context) (int64, error) {
	return a.SuperAdminIDTx(ctx, a.db)
}

// SuperAdminIDTx resolves the permanent super-admin: the first ever
// registered account. Ids are monotonic and never reused, so the
// minimum id is stable for the lifetime of the store.
func (a *users) SuperAdminIDTx(ctx context.Context, tx bun.IDB) (int64, error) {
	var id sql.NullInt64
	err := tx.NewRaw(`SELECT MIN("id") FROM "users";`).Scan(ctx, &id)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve super admin id")
	}
	if !id.Valid {
		return 0, ErrUnknownUser
	}
	return id.Int64, nil
}

func wrapNotFound(err error, meta map[string]any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUnknownUser.Clone().WithMetadata(meta)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "user query failed")
}
