package server

import (
	"context"
	"log"
	"net/http"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/strefethen/yamaha-hub-go/internal/api"
	"github.com/strefethen/yamaha-hub-go/internal/audit"
	"github.com/strefethen/yamaha-hub-go/internal/auth"
	"github.com/strefethen/yamaha-hub-go/internal/config"
	"github.com/strefethen/yamaha-hub-go/internal/control"
	"github.com/strefethen/yamaha-hub-go/internal/db"
	"github.com/strefethen/yamaha-hub-go/internal/devices"
	"github.com/strefethen/yamaha-hub-go/internal/openapi"
	"github.com/strefethen/yamaha-hub-go/internal/scheduler"
	"github.com/strefethen/yamaha-hub-go/internal/status"
	"github.com/strefethen/yamaha-hub-go/internal/store"
	"github.com/strefethen/yamaha-hub-go/internal/stream"
	"github.com/strefethen/yamaha-hub-go/internal/yamaha/ync"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLoggerMiddleware logs all incoming HTTP requests
func requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, wrapped.status, time.Since(start).Round(time.Millisecond))
	})
}

// Options controls server wiring.
type Options struct {
	DisableDiscovery bool
}

// NewHandler builds the HTTP handler and returns a shutdown function.
func NewHandler(cfg config.Config, options Options) (http.Handler, func(context.Context) error, error) {
	log.Printf("Using database: %s", cfg.SQLiteDBPath)
	dbPair, err := db.Init(cfg.SQLiteDBPath)
	if err != nil {
		return nil, nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)
	router.Use(requestLoggerMiddleware)
	router.Use(api.RequestIDMiddleware)
	router.Use(api.RecovererMiddleware)
	router.Use(auth.Middleware(cfg))

	openapi.RegisterRoutes(router)

	pairingStore := auth.NewPairingStore(5 * time.Minute)
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	pairingStore.StartCleanup(shutdownCtx, time.Minute)
	auth.RegisterRoutes(router, pairingStore, cfg)

	yncClient := ync.NewClient(time.Duration(cfg.ReceiverTimeoutMs) * time.Millisecond)
	recordStore := store.NewSQLiteStore(dbPair)

	deviceService := devices.NewService(cfg, nil, yncClient, recordStore)
	if options.DisableDiscovery {
		deviceService.SetTestMode(true)
	}
	if err := deviceService.LoadPersisted(); err != nil {
		shutdownCancel()
		_ = dbPair.Close()
		return nil, nil, err
	}
	devices.RegisterRoutes(router, deviceService)

	registerHealthRoutes(router, deviceService)

	hub := stream.NewHub(nil)
	stream.RegisterRoutes(router, hub)

	statusService := status.NewService(cfg, nil, deviceService, hub)
	status.RegisterRoutes(router, statusService)
	if !options.DisableDiscovery {
		statusService.Start()
	}

	auditService := audit.NewService(dbPair, nil, cfg.AuditRetentionDays)
	audit.RegisterRoutes(router, auditService)
	auditService.StartPruning()

	controlService := control.NewService(nil, deviceService, auditService)
	control.RegisterRoutes(router, controlService)

	routinesRepo := scheduler.NewRepository(dbPair)
	scheduler.RegisterRoutes(router, routinesRepo)
	runner := scheduler.NewRunner(nil, routinesRepo, controlService, 0)
	if !options.DisableDiscovery {
		runner.Start()
	}

	shutdown := func(ctx context.Context) error {
		shutdownCancel()
		runner.Stop()
		statusService.Stop()
		auditService.StopPruning()
		hub.Close()
		if ctx == nil {
			ctx = context.Background()
		}
		return dbPair.Close()
	}

	return router, shutdown, nil
}

func registerHealthRoutes(router chi.Router, deviceService *devices.Service) {
	router.Method(http.MethodGet, "/v1/health", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		healthStatus := "healthy"
		if !deviceService.IsHealthy() {
			healthStatus = "degraded"
		}
		response := map[string]any{
			"status":    healthStatus,
			"service":   "yamaha-hub",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		return api.WriteJSON(w, http.StatusOK, response)
	}))
	router.Method(http.MethodGet, "/v1/health/live", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}))
	router.Method(http.MethodGet, "/v1/health/ready", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	}))
}
