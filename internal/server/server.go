// Package server hosts the HTTP API: health, metrics and whatever the
// services mount on Engine.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	healthTimeout          = 2 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// HealthChecker is pinged by /health. *sql.DB satisfies it.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// Config configures a Server.
type Config struct {
	Addr string
	Mode string // debug | release
	// DB is nil when runs are kept in memory.
	DB HealthChecker
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer        prometheus.Gatherer
	ShutdownTimeout time.Duration
}

type Server struct {
	Engine *gin.Engine
	cfg    Config
}

func New(cfg Config) *Server {
	if cfg.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{Engine: gin.New(), cfg: cfg}
	s.Engine.Use(gin.Recovery(), logRequests())
	s.Engine.GET("/health", s.health)
	if cfg.Gatherer != nil {
		s.Engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	return s
}

// logRequests logs every request at debug level and failures at warn.
func logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelDebug
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(c.Request.Context(), level, "[HTTP] Request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	if s.cfg.DB == nil {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "none"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if err := s.cfg.DB.PingContext(ctx); err != nil {
		slog.Error("[Server] Database unreachable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected"})
}

// Run listens on Config.Addr until ctx is done, then drains in-flight
// requests for up to ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Engine}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		slog.Info("[Server] Shutting down", "timeout", s.cfg.ShutdownTimeout)
		sctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			slog.Error("[Server] Shutdown incomplete", "error", err)
		}
	}()

	slog.Info("[Server] Listening", "address", s.cfg.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
