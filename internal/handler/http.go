package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/MikhailRaia/shortlink/internal/logger"
	"github.com/MikhailRaia/shortlink/internal/middleware"
	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/pool"
	"github.com/MikhailRaia/shortlink/internal/service"
)

// maxBodySize bounds POST bodies after gzip decoding.
const maxBodySize = 1 << 20

type URLService interface {
	Shorten(ctx context.Context, req model.ShortenRequest) (*service.ShortenResult, error)
	Resolve(ctx context.Context, code string) (string, error)
	Ping(ctx context.Context) error
}

type Handler struct {
	urlService URLService
	buffers    *pool.BufferPool
}

func NewHandler(urlService URLService) *Handler {
	return &Handler{
		urlService: urlService,
		buffers:    pool.NewBufferPool(64),
	}
}

func (h *Handler) RegisterRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(logger.RequestLogger)

	r.Use(middleware.GzipReader)
	r.Use(middleware.GzipMiddleware)

	r.Post("/api/shorten", h.handleShorten)
	r.Get("/api/health", h.handleHealth)
	r.Get("/{code}", h.handleRedirect)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
