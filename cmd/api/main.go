package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"artkit-backend/config"
	"artkit-backend/internal/delivery/http/middleware"
	v1 "artkit-backend/internal/delivery/http/v1"
	"artkit-backend/internal/domain"
	"artkit-backend/internal/infrastructure/cache"
	"artkit-backend/internal/infrastructure/catalogapi"
	"artkit-backend/internal/repository/kv"
	"artkit-backend/internal/usecase"
	"artkit-backend/pkg/logger"
	"artkit-backend/pkg/storage"
	"artkit-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"
)

func newKVStore(ctx context.Context, cfg *config.Config) (domain.KVStore, error) {
	switch cfg.KVBackend {
	case config.KVBackendFile:
		return kv.NewFileStore(cfg.KVFilePath)
	case config.KVBackendPostgres:
		pool, err := kv.NewPgxPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return kv.NewPostgresStore(ctx, pool)
	case config.KVBackendR2:
		return storage.NewR2Store(ctx, cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2AccessKeySecret, cfg.R2BucketName, cfg.R2Timeout)
	case config.KVBackendMemory:
		return kv.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown kv backend %q", cfg.KVBackend)
	}
}

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// Initialize Persistence
	kvStore, err := newKVStore(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.KVBackend).Msg("Failed to initialize KV store")
	}
	log.Info().Str("backend", cfg.KVBackend).Msg("KV store ready")

	// Initialize Cache (In-Memory)
	memCache := cache.NewMemoryCache(cfg.CatalogCacheTTL, 2*cfg.CatalogCacheTTL)

	// Set up Router
	mux := http.NewServeMux()

	// --- Modules Initialization ---

	// Catalog Module
	catalogSource := catalogapi.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	catalogUC := usecase.NewCatalogUsecase(catalogSource, kvStore, memCache, cfg.CatalogCacheTTL)
	catalogHandler := v1.NewCatalogHandler(catalogUC)

	// Favorites Module
	scope := func(userID string) domain.KVStore {
		return kv.Namespaced(kvStore, "u:"+userID)
	}
	sessions := usecase.NewSessionRegistry(
		context.Background(),
		scope,
		catalogUC,
		v1.DetailNavigator{},
		cfg.SessionTTL,
		cfg.SessionSweepPeriod,
	)
	favoritesHandler := v1.NewFavoritesHandler(sessions)

	// Catalog (Public)
	mux.HandleFunc("GET /api/v1/arttools", catalogHandler.ListArtTools)
	mux.HandleFunc("GET /api/v1/arttools/{id}", catalogHandler.GetArtTool)

	// Catalog (Admin)
	adminMiddleware := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}
	mux.Handle("POST /api/v1/admin/arttools/refresh", adminMiddleware(catalogHandler.RefreshCatalog))

	// Favorites (Protected)
	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(http.HandlerFunc(h))
	}
	mux.Handle("GET /api/v1/favorites", authed(favoritesHandler.GetState))
	mux.Handle("GET /api/v1/favorites/ids", authed(favoritesHandler.GetIDs))
	mux.Handle("POST /api/v1/favorites/activate", authed(favoritesHandler.Activate))
	mux.Handle("POST /api/v1/favorites/deactivate", authed(favoritesHandler.Deactivate))
	mux.Handle("POST /api/v1/favorites/toggle", authed(favoritesHandler.Toggle))
	mux.Handle("POST /api/v1/favorites/edit-mode", authed(favoritesHandler.ToggleEditMode))
	mux.Handle("POST /api/v1/favorites/select", authed(favoritesHandler.Select))
	mux.Handle("POST /api/v1/favorites/select-all", authed(favoritesHandler.SelectAll))
	mux.Handle("POST /api/v1/favorites/delete", authed(favoritesHandler.RequestDelete))
	mux.Handle("POST /api/v1/favorites/delete/cancel", authed(favoritesHandler.CancelDelete))
	mux.Handle("POST /api/v1/favorites/delete/confirm", authed(favoritesHandler.ConfirmDelete))
	mux.Handle("DELETE /api/v1/favorites/{artToolId}", authed(favoritesHandler.DeleteOne))
	mux.Handle("POST /api/v1/favorites/{artToolId}/open", authed(favoritesHandler.Open))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler)

	addr := fmt.Sprintf(":%s", cfg.Port)

	// Rate limiter with lifecycle management
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,
		3*time.Minute,
	)

	// Apply CORS, Request Logger, Rate Limit and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart("artkit-backend", "1.0.0", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Flush every live favorites session before exit.
	sessions.Shutdown()

	logger.ServiceStop("artkit-backend")
}
