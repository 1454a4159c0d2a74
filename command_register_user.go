package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Username    string     `json:"username"`
	Password    string     `json:"password"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	AvatarURL   string     `json:"avatar_url"`
	Nickname    string     `json:"nickname"`
	AboutMe     string     `json:"about_me"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler creates accounts. The very first account ever
// registered is created as ADMIN and becomes the permanent super-admin;
// every later account starts as USER.
type RegisterUserHandler struct {
	repo         RepositoryManager
	passwords    PasswordAuthenticator
	activitySink ActivitySink
}

func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:         repo,
		passwords:    BcryptPasswordAuthenticator{},
		activitySink: noopActivitySink{},
	}
}

// WithActivitySink configures an ActivitySink for registration events.
func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.activitySink = normalizeActivitySink(sink)
	return h
}

// WithPasswordAuthenticator swaps the password hashing scheme.
func (h *RegisterUserHandler) WithPasswordAuthenticator(p PasswordAuthenticator) *RegisterUserHandler {
	if p != nil {
		h.passwords = p
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := h.repo.Users().UsernameExistsTx(ctx, tx, event.Username)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username availability")
		}

		if taken {
			return ErrUsernameTaken.Clone().WithMetadata(map[string]any{
				"username": event.Username,
			})
		}

		hash, err := h.passwords.HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.Username = event.Username
		user.PasswordHash = hash
		user.Email = event.Email
		user.FirstName = event.FirstName
		user.LastName = event.LastName
		user.DateOfBirth = event.DateOfBirth
		user.AvatarURL = event.AvatarURL
		user.Nickname = event.Nickname
		user.AboutMe = event.AboutMe

		count, err := h.repo.Users().CountTx(ctx, tx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count users during bootstrap check")
		}

		// First account ever becomes the permanent super-admin.
		if count == 0 {
			user.Role = RoleAdmin
		} else {
			user.Role = RoleUser
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	h.emitRegistered(ctx, user)

	return user, nil
}

func (h *RegisterUserHandler) emitRegistered(ctx context.Context, user *User) {
	sink := normalizeActivitySink(h.activitySink)
	_ = sink.Record(ctx, ActivityEvent{
		EventType: ActivityEventUserRegistered,
		Actor:     ActorRef{ID: user.ID, Type: "user"},
		UserID:    user.ID,
		ToRole:    user.Role,
		Metadata: map[string]any{
			"username": user.Username,
		},
		OccurredAt: time.Now(),
	})
}
