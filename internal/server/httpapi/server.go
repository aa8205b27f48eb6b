// Package httpapi is the public JSON API: routing, request binding,
// authentication and the error envelope.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/researchdt/internal/logging"
	"github.com/dmitrijs2005/researchdt/internal/server/metrics"
	"github.com/dmitrijs2005/researchdt/internal/server/models"
	"github.com/dmitrijs2005/researchdt/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type AccountService interface {
	Create(ctx context.Context, in services.CreateInput) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*models.Account, error)
	Get(ctx context.Context, id string) (*models.Account, error)
	Update(ctx context.Context, user *models.User, in services.UpdateInput) (*models.Account, error)
}

type TokenService interface {
	Authenticator
	Issue(ctx context.Context, userID string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) error
}

type ResetService interface {
	RequestReset(ctx context.Context, email string) error
	ConfirmReset(ctx context.Context, email, code, newPassword string) error
}

// Options configures a Server. Gatherer, when set, is exposed on /metrics.
type Options struct {
	Addr     string
	ResetTTL time.Duration
	Logger   logging.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

type Server struct {
	addr     string
	router   *gin.Engine
	accounts AccountService
	tokens   TokenService
	reset    ResetService
	resetTTL time.Duration
	validate *validator.Validate
	logger   logging.Logger
}

func NewServer(opts Options, accounts AccountService, tokens TokenService, reset ResetService) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		addr:     opts.Addr,
		router:   gin.New(),
		accounts: accounts,
		tokens:   tokens,
		reset:    reset,
		resetTTL: opts.ResetTTL,
		validate: newValidator(),
		logger:   opts.Logger.With("module", "http_server"),
	}

	s.router.HandleMethodNotAllowed = true
	s.router.Use(RequestLogger(s.logger))
	s.router.Use(RequestMetrics(opts.Metrics))
	s.router.Use(NewNormalizer(s.logger).Middleware())
	s.router.NoRoute(notFound)
	s.router.NoMethod(methodNotAllowed)

	if opts.Gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api/v1")

	api.POST("/users", s.handleRegister)
	api.POST("/users/forgot-password", s.handleRequestReset)
	api.POST("/users/forgot-password/set", s.handleConfirmReset)

	authed := api.Group("/users")
	authed.Use(RequireAuth(s.tokens))
	authed.GET("/:id", s.handleGetUser)
	authed.PATCH("/:id", s.handleUpdateUser)
	authed.PUT("/:id", methodNotAllowed)

	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/refresh", s.handleRefresh)
	api.POST("/auth/logout", s.handleLogout)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
