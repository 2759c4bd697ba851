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
	"github.com/opencourt/platform/pkg/blob"
	"github.com/opencourt/platform/pkg/common/config"
	"github.com/opencourt/platform/pkg/common/database"
	"github.com/opencourt/platform/pkg/common/kafka"
	"github.com/opencourt/platform/pkg/common/logger"
	"github.com/opencourt/platform/pkg/location"
	"github.com/opencourt/platform/pkg/observability/metrics"
	"github.com/opencourt/platform/pkg/publication"
	"github.com/opencourt/platform/pkg/render"
)

func main() {
	logger.Init("render-worker")
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	artefactRepo := publication.NewRepository(db)
	locationRepo := location.NewRepository(db)
	blobs := blob.NewRedisStore(database.GetRedis())

	resources, err := render.LoadResources(cfg.ResourceBundlePath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load language resources")
	}

	worker := render.NewWorker(artefactRepo, locationRepo, blobs, render.NewRegistry(), resources)

	consumer := kafka.NewConsumer(cfg.PublicationTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

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
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	go func() {
		logger.Log.WithField("topic", cfg.PublicationTopic).Info("Render Worker started")
		if err := consumer.Consume(ctx, worker.Handle); err != nil && err != context.Canceled {
			logger.Log.WithError(err).Error("consumer stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Render Worker...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Render Worker stopped")
}
