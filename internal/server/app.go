// Package server wires configuration, storage, services and the HTTP API
// together and runs them until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/marketplace/internal/logging"
	"github.com/dmitrijs2005/marketplace/internal/server/auth"
	"github.com/dmitrijs2005/marketplace/internal/server/config"
	"github.com/dmitrijs2005/marketplace/internal/server/metrics"
	"github.com/dmitrijs2005/marketplace/internal/server/password"
	"github.com/dmitrijs2005/marketplace/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/marketplace/internal/server/rest"
	"github.com/dmitrijs2005/marketplace/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	config *config.Config
	logger logging.Logger
	sync   func()
	db     *sql.DB
	server *rest.HTTPServer
}

// openDB is a seam for tests.
var openDB = repomanager.Open

// NewLogger builds the logger selected by backend. The returned func
// flushes buffered output.
func NewLogger(backend string) (logging.Logger, func(), error) {
	switch backend {
	case config.LogBackendZap:
		l, err := logging.NewProductionZapLogger()
		if err != nil {
			return nil, nil, err
		}
		return l, func() { _ = l.Sync() }, nil
	case config.LogBackendSlog:
		return logging.NewJSONSlogLogger(os.Stdout, slog.LevelInfo), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

// NewApp validates c, connects to the database, applies migrations and
// builds the HTTP stack.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger, sync, err := NewLogger(c.LogBackend)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	issuer, err := auth.NewIssuer(c.SecretKey, c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, c.DatabaseDSN, c.DatabaseConnectTimeout, logger.With("module", "db"))
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	verifier := password.NewVerifier(password.NewPool(c.HashWorkers), c.BcryptCost,
		func(s password.Scheme, d time.Duration) { m.ObserveHash(string(s), d) })

	us := services.NewUserService(db, rm, verifier, issuer, logger, m)
	ms := services.NewMediaService(c, logger)

	gin.SetMode(gin.ReleaseMode)
	router, err := rest.NewRouter(rest.RouterDeps{
		Handler:        rest.NewHandler(us, ms, logger),
		Tokens:         us,
		Logger:         logger,
		Requests:       m,
		MetricsHandler: promhttp.Handler(),
		LoginLimiter:   rest.NewRateLimiter(c.LoginRateLimit),
		TrustedProxies: c.TrustedProxies,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("router init error: %w", err)
	}

	return &App{
		config: c,
		logger: logger.With("module", "app"),
		sync:   sync,
		db:     db,
		server: rest.NewHTTPServer(c.EndpointAddrHTTP, router, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
	}

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close failed", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	app.sync()

	return err
}
