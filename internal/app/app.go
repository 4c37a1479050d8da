package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"

	"github.com/MikhailRaia/shortlink/internal/config"
	"github.com/MikhailRaia/shortlink/internal/handler"
	"github.com/MikhailRaia/shortlink/internal/logger"
	"github.com/MikhailRaia/shortlink/internal/proto"
	"github.com/MikhailRaia/shortlink/internal/service"
	"github.com/MikhailRaia/shortlink/internal/storage"
	"github.com/MikhailRaia/shortlink/internal/storage/cache"
	"github.com/MikhailRaia/shortlink/internal/storage/file"
	"github.com/MikhailRaia/shortlink/internal/storage/memory"
	"github.com/MikhailRaia/shortlink/internal/storage/postgres"
	"github.com/MikhailRaia/shortlink/internal/worker"
)

type App struct {
	config     *config.Config
	storage    storage.URLStorage
	purger     *worker.PurgeWorkerPool
	handler    http.Handler
	grpcServer *grpc.Server
}

// NewApp wires storage, the purge worker and both transports from cfg.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	purger := worker.NewPurgeWorkerPool(store, worker.DefaultConfig())
	urlService := service.NewURLService(store, cfg.BaseURL, service.WithPurgeQueue(purger))

	app := &App{
		config:  cfg,
		storage: store,
		purger:  purger,
		handler: handler.NewHandler(urlService).RegisterRoutes(),
	}

	if cfg.GRPCAddress != "" {
		app.grpcServer = grpc.NewServer(grpc.UnaryInterceptor(logger.UnaryServerInterceptor))
		proto.RegisterShortenerServer(app.grpcServer, handler.NewShortenerGRPCServer(urlService))
	}

	return app, nil
}

// newStorage picks postgres, then the file store, then memory, and puts the
// Redis cache in front when an address is configured.
func newStorage(ctx context.Context, cfg *config.Config) (storage.URLStorage, error) {
	var store storage.URLStorage

	switch {
	case cfg.DatabaseDSN != "":
		pg, err := postgres.NewStorage(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres storage: %w", err)
		}
		log.Info().Msg("Using PostgreSQL storage")
		store = pg
	case cfg.FileStoragePath != "":
		fs, err := file.NewStorage(cfg.FileStoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		log.Info().Str("path", cfg.FileStoragePath).Msg("Using file storage")
		store = fs
	default:
		log.Info().Msg("Using in-memory storage")
		store = memory.NewStorage()
	}

	if cfg.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		log.Info().Str("address", cfg.RedisAddress).Msg("Using Redis link cache")
		store = cache.NewStorage(store, client)
	}

	return store, nil
}

// Handler returns the HTTP handler of the app.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run listens on the configured addresses and serves until ctx is done.
func (a *App) Run(ctx context.Context) error {
	httpListener, err := net.Listen("tcp", a.config.ServerAddress)
	if err != nil {
		_ = a.storage.Close()
		return fmt.Errorf("failed to listen on %s: %w", a.config.ServerAddress, err)
	}

	var grpcListener net.Listener
	if a.grpcServer != nil {
		grpcListener, err = net.Listen("tcp", a.config.GRPCAddress)
		if err != nil {
			httpListener.Close()
			_ = a.storage.Close()
			return fmt.Errorf("failed to listen on %s: %w", a.config.GRPCAddress, err)
		}
	}

	return a.Serve(ctx, httpListener, grpcListener)
}

// Serve serves HTTP on httpListener and, when gRPC is enabled, gRPC on
// grpcListener. On return every listener, the purge worker and the storage
// are shut down.
func (a *App) Serve(ctx context.Context, httpListener, grpcListener net.Listener) error {
	a.purger.Start()

	httpServer := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		log.Info().Str("address", httpListener.Addr().String()).Str("baseURL", a.config.BaseURL).Msg("Starting HTTP server")
		if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.grpcServer != nil && grpcListener != nil {
		go func() {
			log.Info().Str("address", grpcListener.Addr().String()).Msg("Starting gRPC server")
			if err := a.grpcServer.Serve(grpcListener); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown requested")
	case runErr = <-errCh:
		log.Error().Err(runErr).Msg("Server failed")
	}

	timeout := a.config.ShutdownTimeout.Duration
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	if a.grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			a.grpcServer.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			a.grpcServer.Stop()
		}
	}

	if err := a.purger.Shutdown(timeout); err != nil {
		log.Error().Err(err).Msg("Purge worker shutdown failed")
	}

	if err := a.storage.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close storage")
	}

	log.Info().Msg("Server stopped")
	return runErr
}
