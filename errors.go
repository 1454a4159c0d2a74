package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// Error taxonomy for the authentication and authorization flows. Each
// error carries a stable text code for clients and an HTTP status code
// for the transport layer. Callers should match with goerrors.Is.
var (
	// ErrUnknownUser means no account exists for the given identifier.
	ErrUnknownUser = goerrors.New("user not found", goerrors.CategoryNotFound).
			WithTextCode("UNKNOWN_USER").
			WithCode(goerrors.CodeNotFound)

	// ErrInvalidCredential means the account exists but the password
	// did not match.
	ErrInvalidCredential = goerrors.New("invalid credentials", goerrors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIAL").
				WithCode(goerrors.CodeUnauthorized)

	// ErrUsernameTaken means registration collided with an existing
	// username.
	ErrUsernameTaken = goerrors.New("username already taken", goerrors.CategoryConflict).
				WithTextCode("USERNAME_TAKEN").
				WithCode(goerrors.CodeConflict)

	// ErrAccountLocked means the account is banned and may not
	// authenticate or act.
	ErrAccountLocked = goerrors.New("account is locked", goerrors.CategoryAuth).
				WithTextCode("ACCOUNT_LOCKED").
				WithCode(goerrors.CodeForbidden)

	// ErrTokenInvalidOrExpired covers every token failure: bad
	// signature, malformed payload, or past expiry.
	ErrTokenInvalidOrExpired = goerrors.New("token is invalid or expired", goerrors.CategoryAuth).
					WithTextCode("TOKEN_INVALID_OR_EXPIRED").
					WithCode(goerrors.CodeUnauthorized)

	// ErrSelfActionForbidden means an admin targeted their own account.
	ErrSelfActionForbidden = goerrors.New("cannot perform this action on your own account", goerrors.CategoryAuthz).
				WithTextCode("SELF_ACTION_FORBIDDEN").
				WithCode(goerrors.CodeForbidden)

	// ErrSuperAdminImmutable means the target is the permanent
	// super-admin, which no one may modify.
	ErrSuperAdminImmutable = goerrors.New("the super admin account cannot be modified", goerrors.CategoryAuthz).
				WithTextCode("SUPER_ADMIN_IMMUTABLE").
				WithCode(goerrors.CodeForbidden)

	// ErrInsufficientPrivilege means the actor lacks the privilege for
	// the attempted operation, e.g. a regular admin targeting another
	// admin.
	ErrInsufficientPrivilege = goerrors.New("insufficient privilege for this action", goerrors.CategoryAuthz).
					WithTextCode("INSUFFICIENT_PRIVILEGE").
					WithCode(goerrors.CodeForbidden)
)
