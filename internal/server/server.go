// Package server exposes the message operations over HTTP. Request bodies
// are raw PNG streams; modified containers are returned as image/png.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/pngctl/internal/config"
	"github.com/danmuck/pngctl/internal/observability"
	"github.com/danmuck/pngctl/internal/png"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	ID       string
	Addr     string
	Appeared time.Time

	limits    png.Limits
	authToken string
	router    *gin.Engine
}

// Appear builds a server with middleware installed and routes registered.
func Appear(id string, cfg config.Config) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(id))
	if len(cfg.Server.CorsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.Server.CorsOrigins,
			AllowMethods:  []string{"GET", "POST"},
			AllowHeaders:  []string{"Origin", "Content-Type", observability.RequestIDHeader},
			ExposeHeaders: []string{observability.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		ID:        id,
		Addr:      cfg.Server.Addr,
		Appeared:  time.Now(),
		limits:    cfg.ServerLimits(),
		authToken: cfg.Server.AuthToken,
		router:    r,
	}
	s.RegisterRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on s.Addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("server", s.ID).Str("addr", s.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info().Str("server", s.ID).Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
