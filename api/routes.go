package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewServer wires middleware and routes for h.
func NewServer(h *Handler, bodyLimit string, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewErrorHandler(logger)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/health"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	if bodyLimit != "" {
		e.Use(middleware.BodyLimit(bodyLimit))
	}

	Register(e.Group("/api"), h)
	return e
}

// Register mounts the API routes on g.
func Register(g *echo.Group, h *Handler) {
	g.GET("/health", HandleHealth)
	g.POST("/extract", h.HandleExtract)

	g.POST("/sessions", h.HandleCreateSession)
	g.GET("/sessions/:id", h.HandleGetSession)
	g.DELETE("/sessions/:id", h.HandleDeleteSession)
	g.POST("/sessions/:id/file", h.HandleSelectFile)
	g.GET("/sessions/:id/report", h.HandleReport)
}
