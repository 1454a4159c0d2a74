package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserStore is a store we can use to retrieve users
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// UserProvider handles users
type UserProvider struct {
	store     UserStore
	passwords PasswordAuthenticator
	Validator func(*User) error
	logger    Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserStore) *UserProvider {
	return &UserProvider{
		store:     store,
		passwords: BcryptPasswordAuthenticator{},
		logger:    defLogger{},
		Validator: defaultValidator,
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// WithPasswordAuthenticator swaps the credential comparison scheme.
func (u *UserProvider) WithPasswordAuthenticator(p PasswordAuthenticator) *UserProvider {
	if p != nil {
		u.passwords = p
	}
	return u
}

func (u *UserProvider) validate(user *User) error {
	if u.Validator != nil {
		return u.Validator(user)
	}
	return defaultValidator(user)
}

// VerifyIdentity will find the user, compare to the password, and
// return identity. An unknown username and a wrong password surface as
// distinct errors so the transport can map them to different statuses.
func (u UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := u.store.GetByUsername(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrUnknownUser
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		return nil, ErrUnknownUser
	}

	if err := u.passwords.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredential
	}

	if err := u.validate(user); err != nil {
		return nil, err
	}

	aid := authIdentity{
		id:       user.ID,
		email:    user.Email,
		username: user.Username,
		role:     string(user.Role),
		banned:   user.Banned,
	}

	return aid, nil
}

// FindIdentityByIdentifier resolves the live record for a username,
// without any credential check. Callers enforce banned state.
func (u UserProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	user, err := u.store.GetByUsername(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	if user == nil {
		return nil, ErrUnknownUser
	}

	if err := u.validate(user); err != nil {
		return nil, err
	}

	aid := authIdentity{
		id:       user.ID,
		email:    user.Email,
		username: user.Username,
		role:     string(user.Role),
		banned:   user.Banned,
	}

	return aid, nil
}

type authIdentity struct {
	id       int64
	username string
	email    string
	role     string
	banned   bool
}

func (a authIdentity) ID() int64 {
	return a.id
}

func (a authIdentity) Username() string {
	return a.username
}

func (a authIdentity) Email() string {
	return a.email
}

func (a authIdentity) Role() string {
	return a.role
}

func (a authIdentity) Banned() bool {
	return a.banned
}

var _ Identity = authIdentity{}

func defaultValidator(u *User) error {
	switch u.EnsureRole().Role {
	case RoleUser, RoleAdmin:
		return nil
	default:
		return errors.New("user has an unknown or invalid role", errors.CategoryAuth).
			WithTextCode("INVALID_ROLE").
			WithMetadata(map[string]any{"role": u.Role, "user_id": u.ID})
	}
}
