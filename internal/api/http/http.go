package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jakubkanna/labguy-manager/internal/apisrv/admin"
	"github.com/jakubkanna/labguy-manager/internal/apisrv/auth"
	"github.com/jakubkanna/labguy-manager/internal/apisrv/respond"
	"github.com/jakubkanna/labguy-manager/internal/metrics"
	mw "github.com/jakubkanna/labguy-manager/internal/middleware"
	"github.com/jakubkanna/labguy-manager/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Config is the configuration for the http server
type Config struct {
	Port           string        `mapstructure:"port"`
	Address        string        `mapstructure:"address"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_grace"`
}

// Handlers are the parts mounted on the router. UI, Metrics and Gatherer may be nil.
type Handlers struct {
	Admin    *admin.Server
	Auth     *auth.Server
	UI       http.Handler
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// Health reports whether the backing store is reachable.
	Health func(ctx context.Context) error
}

// Server is the http server
type Server struct {
	hs   *http.Server
	c    *Config
	done chan struct{}
}

// New creates a new server
func New(config *Config) *Server {
	return &Server{
		c:    config,
		done: make(chan struct{}),
	}
}

// Done returns a channel that is closed when the http server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Router builds the API router.
func (s *Server) Router(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		mw.ClientIdentifier,
		log.RequestLogger(slog.Default()),
		h.Metrics.Middleware,
		cors.Handler(cors.Options{
			AllowOriginFunc: func(r *http.Request, origin string) bool {
				return isOriginAllowed(origin, s.c.AllowedOrigins)
			},
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if h.Health != nil {
			if err := h.Health(r.Context()); err != nil {
				slog.Default().ErrorContext(r.Context(), "health check failed",
					slog.String("err", err.Error()),
				)
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Mount("/api/auth", h.Auth.Routes())
	r.Mount("/api", h.Admin.Routes(h.Auth.WithAuth))
	if h.UI != nil {
		r.Mount("/admin", h.UI)
	}
	return r
}

// Start starts the server
func (s *Server) Start(ctx context.Context, h Handlers) error {
	listenerAddr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:              listenerAddr,
		Handler:           h2c.NewHandler(s.Router(h), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Default().InfoContext(ctx, "labguy-manager new listener", slog.String("addr", "http://"+listenerAddr))
		err := s.hs.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			slog.Default().InfoContext(ctx, "http server returned")
		} else {
			slog.Default().ErrorContext(ctx, "http server exited with an error", slog.String("err", err.Error()))
		}
		close(s.done)
	}()
	return nil
}

// Stop shuts the server down, waiting up to the configured grace period.
func (s *Server) Stop(ctx context.Context) error {
	if s.hs == nil {
		return nil
	}
	grace := s.c.ShutdownGrace
	if grace == 0 {
		grace = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, grace)
	defer cancel()
	return s.hs.Shutdown(ctx)
}

func isOriginAllowed(origin string, allowedOrigins []string) bool {
	// Always allow localhost origins
	if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "https://localhost:") {
		return true
	}
	for _, allowedOrigin := range allowedOrigins {
		if origin == allowedOrigin {
			return true
		}
	}
	return false
}
