package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codespire/rca-console/internal/services"
)

// HTTPServer serves the browser-facing REST API.
type HTTPServer struct {
	echo    *echo.Echo
	address string
	logger  *slog.Logger
}

// NewHTTPServer builds the echo router for the console. The server is not started.
func NewHTTPServer(address string, logger *slog.Logger, console *services.Console) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelDebug
			if v.Error != nil {
				level = slog.LevelWarn
				attrs = append(attrs, slog.Any("error", v.Error))
			}
			logger.LogAttrs(context.Background(), level, "http request", attrs...)
			return nil
		},
	}))

	h := &handlers{logger: logger, console: console}
	e.GET("/healthz", h.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")
	v1.POST("/tickets/:id/search", h.searchTicket)
	v1.GET("/tickets/:id/view", h.ticketView)
	v1.POST("/tickets/:id/guidance", h.ticketGuidance)
	v1.POST("/guidance", h.guidance)
	v1.GET("/playbooks", h.listPlaybooks)
	v1.POST("/playbooks", h.createPlaybook)
	v1.GET("/playbooks/search", h.searchPlaybooks)
	v1.GET("/playbooks/:id", h.getPlaybook)
	v1.PUT("/playbooks/:id", h.updatePlaybook)
	v1.DELETE("/playbooks/:id", h.deletePlaybook)

	return &HTTPServer{echo: e, address: address, logger: logger}
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address until Shutdown is called.
func (s *HTTPServer) Start() error {
	s.logger.Info("http server listening", slog.String("address", s.address))
	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
