package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/repquest/internal/envstruct"
	"github.com/myrjola/repquest/internal/errors"
	"github.com/myrjola/repquest/internal/flightrecorder"
	"github.com/myrjola/repquest/internal/logging"
	"github.com/myrjola/repquest/internal/pprofserver"
	"github.com/myrjola/repquest/internal/sqlite"
	"github.com/myrjola/repquest/internal/workout"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	workoutService *workout.Service
	flightRecorder *flightrecorder.Service
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"REPQUEST_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"REPQUEST_SQLITE_URL" envDefault:"./repquest.sqlite3"`
	// PProfAddr is the optional address to listen on for the pprof server.
	PProfAddr string `env:"REPQUEST_PPROF_ADDR" envDefault:""`
	// SecureCookies marks session cookies Secure. Disabled by default so that
	// plain-HTTP local development works; production sets this to true.
	SecureCookies bool `env:"REPQUEST_SECURE_COOKIES" envDefault:"false"`
	// TracesDirectory is where timeout flight-recorder traces are written.
	TracesDirectory string `env:"REPQUEST_TRACES_DIR" envDefault:"./traces"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PProfAddr != "" {
		pprofserver.Launch(ctx, cfg.PProfAddr, logger)
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessionManager := initializeSessionManager(db, cfg.SecureCookies)

	workoutService, err := workout.NewService(db, logger)
	if err != nil {
		return errors.Wrap(err, "new workout service")
	}

	recorder, err := flightrecorder.New(flightrecorder.Config{
		Logger:          logger,
		TracesDirectory: cfg.TracesDirectory,
	})
	if err != nil {
		return errors.Wrap(err, "new flight recorder")
	}
	if err = recorder.Start(ctx); err != nil {
		return errors.Wrap(err, "start flight recorder")
	}
	defer recorder.Stop(ctx)

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		workoutService: workoutService,
		flightRecorder: recorder,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database, secureCookies bool) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 30 * 24 * time.Hour                                           //nolint:mnd // month
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = secureCookies
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
