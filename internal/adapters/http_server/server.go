package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// friends. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

type Server struct{ mux *chi.Mux }

func New(opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	m := chi.NewRouter()

	// middlewares must be registered before any route
	if opts.TrustProxyHeaders {
		m.Use(chimw.RealIP)
	}
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag", "Retry-After"},
		MaxAge:         600,
	}).Handler)
	m.Use(Timeout(opts.RequestTimeout))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g. /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
