// Package server exposes the process liveness endpoint. It carries no
// decision logic; the monitor runs entirely independently of it.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// HealthResponse is the liveness payload.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// Server wraps Echo with lifecycle management.
type Server struct {
	e      *echo.Echo
	addr   string
	closed chan struct{} // signals shutdown completion
}

// New creates the liveness HTTP server.
func New(addr string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.GET("/v1/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{OK: true})
	})

	return &Server{e: e, addr: addr, closed: make(chan struct{})}
}

// Start begins serving HTTP requests on the configured address.
func (s *Server) Start() error {
	return s.e.Start(s.addr)
}

// Shutdown gracefully shuts down the server with a 10-second timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	defer close(s.closed)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.e.Shutdown(ctx)
}

// WaitClosed blocks until the server is fully shut down or the context ends.
func (s *Server) WaitClosed(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.closed:
		return nil
	}
}
