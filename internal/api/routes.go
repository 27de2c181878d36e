// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves conversions over HTTP: a multipart upload goes in
// and the submission file comes back as an XML attachment.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pdiddy/apyexit/internal/convert"
	"github.com/pdiddy/apyexit/pkg/types"
)

const (
	defaultBodyLimit = "10M"
	shutdownTimeout  = 10 * time.Second
)

// NewServer builds the echo instance with middleware and routes.
func NewServer(cfg types.ServerConfig, conv *convert.Converter, log *slog.Logger, version string) *echo.Echo {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	bodyLimit := cfg.BodyLimit
	if bodyLimit == "" {
		bodyLimit = defaultBodyLimit
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(log)

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			)
			return nil
		},
	}))
	e.Use(middleware.BodyLimit(bodyLimit))

	RegisterRoutes(e, NewHandlers(conv, log, version))
	return e
}

// RegisterRoutes registers all API routes with the Echo instance.
func RegisterRoutes(e *echo.Echo, h *Handlers) {
	e.GET("/health", h.HandleHealth)
	e.POST("/api/convert", h.HandleConvert)
}

// Serve listens on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, e *echo.Echo, addr string) error {
	errc := make(chan error, 1)
	go func() { errc <- e.Start(addr) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
