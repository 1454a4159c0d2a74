package auth

import (
	"github.com/goliatone/go-router"
)

// AdminController exposes the moderation endpoints. Every handler
// resolves the acting identity from the gate middleware and lets the
// AdminGuard arbitrate the action.
type AdminController struct {
	Logger     Logger
	Guard      *AdminGuard
	Repo       RepositoryManager
	ContextKey string
}

type AdminControllerOption func(*AdminController) *AdminController

func WithAdminLogger(logger Logger) AdminControllerOption {
	return func(c *AdminController) *AdminController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithAdminGuard(guard *AdminGuard) AdminControllerOption {
	return func(c *AdminController) *AdminController {
		c.Guard = guard
		return c
	}
}

func WithAdminRepository(repo RepositoryManager) AdminControllerOption {
	return func(c *AdminController) *AdminController {
		c.Repo = repo
		return c
	}
}

func WithAdminContextKey(key string) AdminControllerOption {
	return func(c *AdminController) *AdminController {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

func NewAdminController(opts ...AdminControllerOption) *AdminController {
	c := &AdminController{
		Logger:     defLogger{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Guard == nil {
		panic("Missing AdminGuard in admin controller...")
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in admin controller...")
	}

	return c
}

// RegisterAdminRoutes wires the moderation endpoints.
func RegisterAdminRoutes(app RouteRegistrar, opts ...AdminControllerOption) *AdminController {
	controller := NewAdminController(opts...)

	app.Put("/users/:id/promote", controller.Promote)
	app.Put("/users/:id/demote", controller.Demote)
	app.Put("/users/:id/ban", controller.Ban)

	return controller
}

func (a *AdminController) Promote(ctx router.Context) error {
	return a.act(ctx, AdminActionPromote)
}

func (a *AdminController) Demote(ctx router.Context) error {
	return a.act(ctx, AdminActionDemote)
}

func (a *AdminController) Ban(ctx router.Context) error {
	return a.act(ctx, AdminActionBan)
}

func (a *AdminController) act(ctx router.Context, action AdminAction) error {
	actor, err := a.requireAdmin(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	targetID := int64(ctx.ParamsInt("id", 0))
	if targetID <= 0 {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error": "invalid user id",
			"code":  "BAD_REQUEST",
		})
	}

	switch action {
	case AdminActionPromote:
		_, err = a.Guard.Promote(ctx.Context(), actor.ID(), targetID)
	case AdminActionDemote:
		_, err = a.Guard.Demote(ctx.Context(), actor.ID(), targetID)
	case AdminActionBan:
		_, err = a.Guard.Ban(ctx.Context(), actor.ID(), targetID)
	}

	if err != nil {
		a.Logger.Info("admin action rejected", "action", action, "actor", actor.ID(), "target", targetID)
		return respondError(ctx, err)
	}

	return ctx.NoContent(router.StatusOK)
}

// requireAdmin resolves the acting identity from the request. The gate
// attaches it only for valid, active tokens; anonymous requests and
// non-admin actors are both rejected here.
func (a *AdminController) requireAdmin(ctx router.Context) (Identity, error) {
	actor, ok := FromRouterContext(ctx, a.ContextKey)
	if !ok {
		return nil, ErrInsufficientPrivilege
	}

	if !ParseRole(actor.Role()).IsAdmin() {
		return nil, ErrInsufficientPrivilege
	}

	return actor, nil
}
