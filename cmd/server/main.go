package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/oneblog/auth"
	"github.com/oneblog/auth/middleware/authgate"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := openDatabase(cfg.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := runMigrations(context.Background(), db); err != nil {
		log.Fatal(err)
	}

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	logger := appLogger{}
	sink := loggingSink{logger: logger}

	provider := auth.NewUserProvider(repo.Users()).WithLogger(logger)
	auther := auth.NewAuthenticator(provider, cfg).
		WithLogger(logger).
		WithActivitySink(sink)
	guard := auth.NewAdminGuard(repo).
		WithLogger(logger).
		WithActivitySink(sink)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	srv.Router().Use(authgate.New(authgate.Config{
		Filter: func(ctx router.Context) bool {
			return strings.HasPrefix(ctx.Path(), "/auth/")
		},
		TokenValidator: tokenValidatorAdapter{service: auther.TokenService()},
		Identities:     identityResolverAdapter{provider: provider},
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		AuthScheme:     cfg.GetAuthScheme(),
		Logger:         logger,
		ContextEnricher: func(c context.Context, identity authgate.Identity) context.Context {
			if aid, ok := identity.(auth.Identity); ok {
				return auth.WithContext(c, aid)
			}
			return c
		},
	}))

	auth.RegisterAuthRoutes(srv.Router(),
		auth.WithRepository(repo),
		auth.WithAuthenticator(auther),
		auth.WithLogger(logger),
		auth.WithActivitySink(sink),
		auth.WithDebug(cfg.Debug),
	)

	auth.RegisterAdminRoutes(srv.Router(),
		auth.WithAdminRepository(repo),
		auth.WithAdminGuard(guard),
		auth.WithAdminLogger(logger),
		auth.WithAdminContextKey(cfg.GetContextKey()),
	)

	auth.RegisterUserRoutes(srv.Router(), repo, logger)

	logger.Info("listening on %s", cfg.HTTPAddr)
	srv.Serve(cfg.HTTPAddr)

	WaitExitSignal()
}

func openDatabase(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// runMigrations applies the embedded up migrations in lexical order.
func runMigrations(ctx context.Context, db *bun.DB) error {
	migrations, err := fs.Sub(auth.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		content, err := fs.ReadFile(migrations, name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
	}

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}

// tokenValidatorAdapter bridges the auth TokenService to the gate's
// mirrored validator interface.
type tokenValidatorAdapter struct {
	service auth.TokenService
}

func (a tokenValidatorAdapter) Validate(raw string) (authgate.AuthClaims, error) {
	claims, err := a.service.Validate(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// identityResolverAdapter bridges the user provider to the gate's
// mirrored resolver interface.
type identityResolverAdapter struct {
	provider auth.IdentityProvider
}

func (a identityResolverAdapter) FindIdentityByIdentifier(ctx context.Context, identifier string) (authgate.Identity, error) {
	identity, err := a.provider.FindIdentityByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return identity, nil
}

type appLogger struct{}

func (appLogger) Debug(format string, args ...any) { logWith("DBG", format, args...) }
func (appLogger) Info(format string, args ...any)  { logWith("INF", format, args...) }
func (appLogger) Error(format string, args ...any) { logWith("ERR", format, args...) }

func logWith(level, format string, args ...any) {
	log.Printf("["+level+"] "+format, args...)
}

// loggingSink writes activity events to the application log.
type loggingSink struct {
	logger auth.Logger
}

func (s loggingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.logger.Info("activity %s actor=%d user=%d meta=%v",
		string(event.EventType), event.Actor.ID, event.UserID, event.Metadata)
	return nil
}
