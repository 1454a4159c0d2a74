package auth

import (
	"github.com/goliatone/go-router"
)

// UserController serves public profile reads.
type UserController struct {
	Logger Logger
	Repo   RepositoryManager
}

// PublicProfile is the externally visible slice of a user record.
type PublicProfile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Banned    bool   `json:"is_banned"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	AboutMe   string `json:"about_me,omitempty"`
}

// RegisterUserRoutes wires the public profile endpoint.
func RegisterUserRoutes(app RouteRegistrar, repo RepositoryManager, logger Logger) *UserController {
	if logger == nil {
		logger = defLogger{}
	}

	controller := &UserController{
		Logger: logger,
		Repo:   repo,
	}

	app.Get("/users/:id", controller.Show)

	return controller
}

func (u *UserController) Show(ctx router.Context) error {
	id := int64(ctx.ParamsInt("id", 0))
	if id <= 0 {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error": "invalid user id",
			"code":  "BAD_REQUEST",
		})
	}

	user, err := u.Repo.Users().GetByID(ctx.Context(), id)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, PublicProfile{
		ID:        user.ID,
		Username:  user.Username,
		Role:      string(user.Role),
		Banned:    user.Banned,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		AvatarURL: user.AvatarURL,
		Nickname:  user.Nickname,
		AboutMe:   user.AboutMe,
	})
}
