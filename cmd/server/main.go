package main

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	requestlog "github.com/gofiber/fiber/v2/middleware/logger"
	recoverware "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	signin "github.com/goliatone/go-signin"
	"github.com/goliatone/go-signin/provider/google"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"
)

type App struct {
	config   *signin.AppConfig
	bunDB    *bun.DB
	repo     signin.RepositoryManager
	auth     *signin.Auther
	profiles signin.Profiles
	verifier *google.TokenVerifier
	srv      *fiber.App
	logger   *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("signin"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := signin.LoadConfig()
	if err != nil {
		lgr.Error("configuration error", "error", err)
		os.Exit(1)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		lgr.Error("persistence setup error", "error", err)
		os.Exit(1)
	}

	if err := WithAuth(ctx, app); err != nil {
		lgr.Error("auth setup error", "error", err)
		os.Exit(1)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		lgr.Error("http setup error", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := app.srv.Listen(cfg.ListenAddr); err != nil {
			lgr.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	sig := WaitExitSignal()
	lgr.Info("shutting down", "signal", sig.String())

	if err := app.srv.ShutdownWithTimeout(10 * time.Second); err != nil {
		lgr.Error("server shutdown error", "error", err)
	}

	app.verifier.Close()

	if err := app.bunDB.Close(); err != nil {
		lgr.Error("database close error", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.config.DatabaseDSN)
	if err != nil {
		return err
	}

	app.bunDB = bun.NewDB(db, sqlitedialect.New())

	migrationsFS, err := fs.Sub(signin.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(migrationsFS); err != nil {
		return err
	}

	migrator := migrate.NewMigrator(app.bunDB, migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}

	if group.IsZero() {
		app.GetLogger("persistence").Info("database schema up to date")
	} else {
		app.GetLogger("persistence").Info("ran migrations", "group", group.String())
	}

	repo := signin.NewRepositoryManager(app.bunDB)
	if err := repo.Validate(); err != nil {
		return err
	}
	app.repo = repo

	return nil
}

func WithAuth(ctx context.Context, app *App) error {
	verifier, err := google.NewTokenVerifier(google.DefaultConfig(app.config.GoogleClientID))
	if err != nil {
		return err
	}
	app.verifier = verifier

	auther := signin.NewAuthenticator(verifier, app.repo, app.config).
		WithLogger(app.GetLogger("auth"))

	// A rotated signing key keeps sessions minted under the previous
	// key valid until they expire.
	if prev := app.config.PreviousSigningKey; prev != "" {
		previous := signin.NewTokenService(
			[]byte(prev),
			app.config.GetTokenExpiration(),
			app.config.GetIssuer(),
			jwt.ClaimStrings(app.config.GetAudience()),
			app.GetLogger("auth:prev"),
		)

		auther.WithTokenService(signin.NewRotatingTokenService(auther.TokenService(), previous))
	}

	app.auth = auther
	app.profiles = signin.NewProfileManager(app.repo).
		WithLogger(app.GetLogger("profiles"))

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	srv := fiber.New(fiber.Config{
		AppName:      "go-signin",
		ErrorHandler: signin.NewErrorHandler(app.GetLogger("http")),
	})

	srv.Use(recoverware.New())
	srv.Use(requestlog.New())
	srv.Use(cors.New())
	srv.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	}))

	signin.RegisterRoutes(srv,
		signin.WithAuthenticator(app.auth),
		signin.WithProfiles(app.profiles),
		signin.WithConfig(app.config),
		signin.WithControllerLogger(app.GetLogger("http")),
	)

	app.srv = srv

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
