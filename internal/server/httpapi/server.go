// Package httpapi exposes the library over a JSON REST API built on gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/dmitrijs2005/bookledger/internal/logging"
	"github.com/dmitrijs2005/bookledger/internal/server/config"
	"github.com/dmitrijs2005/bookledger/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Services are the application services the handlers call into.
type Services struct {
	Identity    *services.IdentityService
	Catalog     *services.CatalogService
	Circulation *services.CirculationService
	Reconciler  *services.AvailabilityReconciler
	Stats       *services.StatisticsService
}

type HTTPServer struct {
	address string
	svc     Services
	cfg     *config.Config
	logger  logging.Logger
	limiter *IPRateLimiter
	router  *gin.Engine
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, svc Services) *HTTPServer {
	s := &HTTPServer{
		address: cfg.EndpointAddrHTTP,
		svc:     svc,
		cfg:     cfg,
		logger:  l.With("module", "http_server"),
	}
	if cfg.RateLimitRPS > 0 {
		s.limiter = NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	s.router = s.routes()
	return s
}

// Handler returns the configured gin engine.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	if c, ok := corsConfig(s.cfg.CORSAllowedOrigins); ok {
		r.Use(cors.New(c))
	}

	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	if s.limiter != nil {
		api.Use(s.rateLimit())
	}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
		authGroup.POST("/guest", s.handleGuest)
	}

	books := api.Group("/books")
	{
		books.GET("/catalog", s.handleCatalog)
		books.POST("/borrow", s.authRequired(), s.handleBorrow)
		books.GET("/borrowed/:userId", s.authRequired(), s.handleBorrowed)
		books.POST("/return", s.authRequired(), s.handleReturn)
	}

	admin := api.Group("/admin", s.authRequired(), requireAdmin())
	{
		admin.GET("/transactions", s.handleTransactions)
		admin.GET("/stats", s.handleStats)
		admin.POST("/reconcile", s.handleReconcile)
		admin.POST("/books", s.handleAddBook)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}

func corsConfig(origins []string) (cors.Config, bool) {
	if len(origins) == 0 {
		return cors.Config{}, false
	}
	c := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			c.AllowAllOrigins = true
			return c, true
		}
	}
	c.AllowOrigins = origins
	return c, true
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: common.DefaultRequestTimeout,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), common.DefaultRequestTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
