package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/opencourt/platform/pkg/authorization"
	"github.com/opencourt/platform/pkg/blob"
	"github.com/opencourt/platform/pkg/common/config"
	"github.com/opencourt/platform/pkg/common/database"
	"github.com/opencourt/platform/pkg/common/kafka"
	"github.com/opencourt/platform/pkg/common/logger"
	"github.com/opencourt/platform/pkg/common/middleware"
	"github.com/opencourt/platform/pkg/lifecycle"
	"github.com/opencourt/platform/pkg/location"
	"github.com/opencourt/platform/pkg/observability/metrics"
	"github.com/opencourt/platform/pkg/publication"
)

func main() {
	logger.Init("publication-service")
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	locationRepo := location.NewRepository(db)
	if err := locationRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate location tables")
	}
	artefactRepo := publication.NewRepository(db)
	if err := artefactRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate artefact tables")
	}

	blobs := blob.NewRedisStore(database.GetRedis())

	searchTable, err := publication.LoadSearchTable(cfg.SearchConfigPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load search extraction table")
	}

	producer := kafka.NewProducer(cfg.PublicationTopic)
	defer producer.Close()

	resolver := location.NewResolver(locationRepo)
	gate := authorization.NewGate(authorization.NewAccountClient(cfg))

	svc := publication.NewService(artefactRepo, blobs, producer, searchTable)
	handler := publication.NewHTTPHandler(svc, resolver, gate, cfg.AdminAPIKey, cfg.MaxRequestBody)

	manager := lifecycle.NewManager(artefactRepo, blobs, producer)
	lifecycleHandler := lifecycle.NewHTTPHandler(manager, cfg.AdminAPIKey)

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingPostgres(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(api)
	lifecycleHandler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Publication Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	go manager.RunSweeper(ctx, cfg.ExpirySweepInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Publication Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Publication Service stopped")
}
