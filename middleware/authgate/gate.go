package authgate

import (
	"context"
	"errors"

	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup         = "header:" + router.HeaderAuthorization
	ErrTokenMissingOrMalformed = errors.New("missing or malformed bearer token")
)

const authorityPrefix = "ROLE_"

// TokenValidator interface for validating tokens without import cycles
// This mirrors the TokenService.Validate method from the auth package
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims interface for structured claims without import cycles
// This mirrors the AuthClaims interface from the auth package
type AuthClaims interface {
	Subject() string
	UserID() int64
	Role() string
}

// Identity mirrors the auth package Identity interface
type Identity interface {
	ID() int64
	Username() string
	Role() string
	Banned() bool
}

// IdentityResolver re-reads the live account record for a token
// subject. The gate never trusts the role or ban state baked into the
// claims.
type IdentityResolver interface {
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// Logger mirrors the auth package Logger interface
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type Config struct {
	// Filter skips the gate entirely for matching requests, e.g. the
	// login and registration endpoints.
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	// ForbiddenHandler produces the terminal response for a banned
	// account. It is the only case where the gate ends the request
	// itself.
	ForbiddenHandler func(router.Context, Identity) error
	// TokenValidator is required for token validation
	TokenValidator TokenValidator
	// Identities is required for live record resolution
	Identities IdentityResolver
	// ContextKey is the Locals key the identity is stored under
	ContextKey string
	// AuthoritiesKey is the Locals key for the authority strings
	AuthoritiesKey string
	TokenLookup    string
	AuthScheme     string
	Logger         Logger

	// ContextEnricher is an optional function to propagate the
	// identity to the standard Go context. If provided, it is called
	// after the live record resolves as active.
	ContextEnricher func(c context.Context, identity Identity) context.Context
}

type outcome int

const (
	// outcomeAnonymous lets the request continue with no identity
	// attached. Missing, invalid, and expired tokens all land here, as
	// do tokens whose subject no longer resolves.
	outcomeAnonymous outcome = iota
	outcomeAuthenticated
	outcomeForbidden
)

// New builds the authentication gate middleware. The gate fails open:
// any token problem downgrades the request to anonymous and later
// authorization decides what anonymous may do. The single exception is
// a valid token whose live account is banned, which terminates the
// request with Forbidden before any handler runs.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, _ := ExtractRawTokenFromContext(ctx, cfg.getExtractors())

			identity, result := cfg.evaluate(ctx.Context(), raw)
			switch result {
			case outcomeForbidden:
				return cfg.ForbiddenHandler(ctx, identity)
			case outcomeAuthenticated:
				ctx.Locals(cfg.ContextKey, identity)
				ctx.Locals(cfg.AuthoritiesKey, authoritiesFor(identity.Role()))

				if cfg.ContextEnricher != nil {
					stdCtx := ctx.Context()
					ctx.SetContext(cfg.ContextEnricher(stdCtx, identity))
				}
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

// evaluate decides what a raw token is worth: nothing, an identity, or
// a terminal rejection.
func (cfg *Config) evaluate(ctx context.Context, raw string) (Identity, outcome) {
	if raw == "" {
		return nil, outcomeAnonymous
	}

	claims, err := cfg.TokenValidator.Validate(raw)
	if err != nil {
		cfg.Logger.Debug("gate rejected token, continuing anonymous", "error", err)
		return nil, outcomeAnonymous
	}

	identity, err := cfg.Identities.FindIdentityByIdentifier(ctx, claims.Subject())
	if err != nil {
		cfg.Logger.Debug("gate could not resolve token subject, continuing anonymous", "subject", claims.Subject())
		return nil, outcomeAnonymous
	}

	if identity.Banned() {
		cfg.Logger.Info("gate blocked banned account", "user_id", identity.ID())
		return identity, outcomeForbidden
	}

	return identity, outcomeAuthenticated
}

// authoritiesFor returns both representations of a role: the raw name
// and the prefixed form. Downstream checks match against either.
func authoritiesFor(role string) []string {
	return []string{role, authorityPrefix + role}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ForbiddenHandler == nil {
		cfg.ForbiddenHandler = func(c router.Context, _ Identity) error {
			return c.JSON(router.StatusForbidden, map[string]any{
				"error": "account is locked",
				"code":  "ACCOUNT_LOCKED",
			})
		}
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: gate middleware configuration: TokenValidator is required.")
	}

	if cfg.Identities == nil {
		panic("AUTH: gate middleware configuration: Identities is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.AuthoritiesKey == "" {
		cfg.AuthoritiesKey = "authorities"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}

	return cfg
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}
