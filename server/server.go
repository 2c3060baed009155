package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/michaelpento.lv/arbbot/strategies/arbitrage"
	"github.com/michaelpento.lv/arbbot/types"
)

// StatusSource provides the statistics served on /status
type StatusSource interface {
	Snapshot() arbitrage.Snapshot
}

// Server exposes scanner status, health and Prometheus metrics over HTTP
type Server struct {
	addr   string
	status StatusSource
	lock   *types.ExecutionLock
	logger *zap.Logger
	router *gin.Engine
	srv    *http.Server
}

// New creates a status server. gatherer is served on /metrics.
func New(addr string, status StatusSource, lock *types.ExecutionLock, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		addr:   addr,
		status: status,
		lock:   lock,
		logger: logger.With(zap.String("component", "status_server")),
		router: gin.New(),
	}

	s.router.Use(gin.Recovery())
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/status", s.handleStatus)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves in the background
func (s *Server) Start() {
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("Starting status server", zap.String("addr", s.addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Status server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	s.logger.Info("Stopping status server")
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statistics":          s.status.Snapshot(),
		"execution_in_flight": s.lock.Held(),
	})
}
