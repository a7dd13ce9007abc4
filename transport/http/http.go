package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"localguide/config"
	"localguide/docs"
	"localguide/infras/otel"
	"localguide/infras/postgres"
	"localguide/shared/constant"
	"localguide/transport/http/middleware"
	"localguide/transport/http/response"
	"localguide/transport/http/router"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger"
)

type ServerState int32

const (
	ServerStateReady ServerState = iota + 1
	ServerStateInGracePeriod
	ServerStateInCleanupPeriod
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

type HTTP struct {
	Config     *config.Config
	Router     router.Router
	Middleware middleware.AppMiddleware
	DB         *postgres.Connection
	Otel       otel.Otel

	state   atomic.Int32
	once    sync.Once
	handler http.Handler
	server  *http.Server
}

func New(cfg *config.Config, r router.Router, appMiddleware middleware.AppMiddleware, db *postgres.Connection, otl otel.Otel) *HTTP {
	return &HTTP{
		Config:     cfg,
		Router:     r,
		Middleware: appMiddleware,
		DB:         db,
		Otel:       otl,
	}
}

func (h *HTTP) State() ServerState {
	return ServerState(h.state.Load())
}

func (h *HTTP) Serve() {
	h.setup()
	h.setupGracefulShutdown()

	h.server = &http.Server{
		Addr:              net.JoinHostPort(h.Config.Server.Host, h.Config.Server.Port),
		Handler:           h.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	log.Info().Str("port", h.Config.Server.Port).Msg("Starting up HTTP server.")

	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

// ServeHTTP lets the app run behind a serverless entrypoint without owning a listener.
func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.setup()
	h.handler.ServeHTTP(w, r)
}

func (h *HTTP) setup() {
	h.once.Do(func() {
		response.ExposeInternalErrors(h.Config.IsDevelopment())

		h.setupRoutes()
		h.state.Store(int32(ServerStateReady))
	})
}

func (h *HTTP) setupRoutes() {
	mux := chi.NewRouter()

	mux.Use(chiMiddleware.RequestID)
	mux.Use(chiMiddleware.RealIP)
	mux.Use(chiMiddleware.Recoverer)
	mux.Use(h.rejectWhileShuttingDown)

	if corsCfg := h.Config.App.CORS; corsCfg.Enable {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   append(slices.Clone(corsCfg.AllowedOrigins), h.Config.App.FrontendURL),
			AllowedMethods:   corsCfg.AllowedMethods,
			AllowedHeaders:   corsCfg.AllowedHeaders,
			AllowCredentials: corsCfg.AllowCredentials,
			MaxAge:           corsCfg.MaxAgeSeconds,
		}))
	}

	mux.Use(h.Middleware.Tracing)
	mux.Use(h.Middleware.RateLimit())

	docs.SwaggerInfo.BasePath = "/"
	mux.Get("/swagger/*", httpSwagger.WrapHandler)

	h.Router.SetupRoutes(mux)

	h.handler = mux
}

// rejectWhileShuttingDown turns new requests away once the grace period has begun.
func (h *HTTP) rejectWhileShuttingDown(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.State() != ServerStateReady {
			response.WithPreparingShutdown(w)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *HTTP) setupGracefulShutdown() {
	serverStateCh := make(chan os.Signal, 1)

	signal.Notify(serverStateCh, os.Interrupt, syscall.SIGTERM)

	go h.respondToSigterm(serverStateCh)
}

func (h *HTTP) respondToSigterm(done chan os.Signal) {
	<-done

	defer h.cleanup()

	if h.Config.Server.Env == constant.ServerEnvDevelopment {
		log.Warn().Msg("Received SIGTERM. Shutting down now.")

		return
	}

	shutdownConfig := h.Config.Server.Shutdown

	log.Info().Msg("Received SIGTERM.")
	log.Info().Int64("seconds", shutdownConfig.GracePeriodSeconds).Msg("Entering grace period.")

	h.state.Store(int32(ServerStateInGracePeriod))

	time.Sleep(time.Duration(shutdownConfig.GracePeriodSeconds) * time.Second)

	log.Info().Int64("seconds", shutdownConfig.CleanupPeriodSeconds).Msg("Entering cleanup period.")

	h.state.Store(int32(ServerStateInCleanupPeriod))

	time.Sleep(time.Duration(shutdownConfig.CleanupPeriodSeconds) * time.Second)

	log.Info().Msg("Cleaning up completed. Shutting down now.")
}

func (h *HTTP) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if h.server != nil {
		if err := h.server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("failed to shut down HTTP server")
		}
	}

	if err := h.DB.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}

	if err := h.Otel.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to flush traces")
	}
}
