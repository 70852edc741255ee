package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/logview-dev/logview/internal/config"
	"github.com/logview-dev/logview/internal/handler"
	"github.com/logview-dev/logview/internal/metrics"
)

// Server holds the Echo app and dependencies.
type Server struct {
	Echo    *echo.Echo
	Config  *config.Config
	log     zerolog.Logger
	handler *handler.ViewHandler
}

// New builds the Echo server and registers routes.
func New(cfg *config.Config, log zerolog.Logger, h *handler.ViewHandler, m *metrics.Handler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowedOrigins,
	}))

	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.Server.IdleTimeout) * time.Second

	api := e.Group("/api")
	api.GET("/meta", h.GetMeta)
	api.GET("/view", h.GetActiveView)
	api.POST("/view", h.SaveView)
	api.GET("/views", h.ListViews)
	api.POST("/views", h.CreateView)
	api.GET("/views/:name", h.GetView)
	api.POST("/views/:name/rename", h.RenameView)
	api.POST("/scan", h.Scan)
	api.POST("/render", h.Render)

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	return &Server{Echo: e, Config: cfg, log: log, handler: h}
}

// Start starts the HTTP server. Blocks until the context is cancelled or
// the server fails. On context cancel, Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()
	addr := s.Config.Server.Host + ":" + s.Config.Server.Port
	s.log.Info().Str("addr", addr).Msg("server listening")
	return s.Echo.Start(addr)
}

// Shutdown gracefully shuts down the server and stops the render scheduler.
func (s *Server) Shutdown(ctx context.Context) error {
	s.handler.Close()
	return s.Echo.Shutdown(ctx)
}
