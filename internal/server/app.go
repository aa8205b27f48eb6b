// Package server wires the account service together: storage, the key-value
// store, services, the public HTTP API and the gRPC health endpoint, and runs
// them until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/researchdt/internal/logging"
	"github.com/dmitrijs2005/researchdt/internal/server/cache"
	"github.com/dmitrijs2005/researchdt/internal/server/config"
	"github.com/dmitrijs2005/researchdt/internal/server/httpapi"
	"github.com/dmitrijs2005/researchdt/internal/server/metrics"
	"github.com/dmitrijs2005/researchdt/internal/server/notify"
	"github.com/dmitrijs2005/researchdt/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/researchdt/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/researchdt/internal/server/grpc"
)

const keyPrefix = "researchdt:"

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	rdb    *redis.Client
	http   *httpapi.Server
	health *gs.HealthServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := openDB(ctx, c.DatabaseDSN, logger)
	if err != nil {
		return nil, err
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	rdb, err := openRedis(ctx, c.RedisAddr, c.RedisPassword, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store := cache.NewRedisStore(rdb, keyPrefix)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New()
	if err := m.Register(reg); err != nil {
		_ = db.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("metrics error: %w", err)
	}

	notifier := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		User:     c.SMTPUser,
		Password: c.SMTPPassword,
		From:     c.FromEmail,
	}, logger)

	accounts := services.NewAccountService(db, rm, logger)
	tokens := services.NewTokenService(c, store, m, logger)
	reset := services.NewResetService(db, rm, store, notifier, c.ResetCodeTTL, m, logger)

	httpServer := httpapi.NewServer(httpapi.Options{
		Addr:     c.EndpointAddrHTTP,
		ResetTTL: c.ResetCodeTTL,
		Logger:   logger,
		Metrics:  m,
		Gatherer: reg,
	}, accounts, tokens, reset)

	health := gs.NewHealthServer(c.EndpointAddrGRPC, logger, map[string]gs.Checker{
		"postgres": gs.CheckerFunc(db.PingContext),
		"redis":    store,
	})

	return &App{config: c, logger: logger, db: db, rdb: rdb, http: httpServer, health: health}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) serve(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run blocks until a signal arrives or one of the servers fails, then closes
// the storage connections.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "http", app.http.Run)
	}()
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "grpc", app.health.Run)
	}()

	wg.Wait()

	if err := app.rdb.Close(); err != nil {
		app.logger.Error(ctx, "redis close", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
