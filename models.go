package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleUser is the default role for every account after the first
	RoleUser UserRole = "USER"
	// RoleAdmin can mutate other users' roles and ban status
	RoleAdmin UserRole = "ADMIN"
)

// User is the user model. Identifiers are assigned monotonically by the
// store and never reused; the first ever registered account is the
// permanent super-admin.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Role          UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	Banned        bool       `bun:"is_banned,notnull,default:false" json:"is_banned"`
	Email         string     `bun:"email,nullzero" json:"email,omitempty"`
	FirstName     string     `bun:"first_name,nullzero" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,nullzero" json:"last_name,omitempty"`
	DateOfBirth   *time.Time `bun:"date_of_birth,nullzero" json:"date_of_birth,omitempty"`
	AvatarURL     string     `bun:"avatar_url,nullzero" json:"avatar_url,omitempty"`
	Nickname      string     `bun:"nickname,nullzero" json:"nickname,omitempty"`
	AboutMe       string     `bun:"about_me,nullzero" json:"about_me,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsureRole backfills the default role on records that predate the role column.
func (u *User) EnsureRole() *User {
	if u.Role == "" {
		u.Role = RoleUser
	}
	return u
}

// IsAdmin reports whether the persisted role grants admin capability.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
