package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cortexmap/internal/adapters/httpapi"
	"cortexmap/internal/bootstrap"
	"cortexmap/internal/config"
	"cortexmap/internal/logging"
)

func main() {
	configFlag := flag.String("config", "", "path to a YAML config file")
	dbFlag := flag.String("db", "", "path to the database")
	devFlag := flag.Bool("dev", false, "human-readable logs")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg = cfg.WithDatabase(*dbFlag)

	logger, err := logging.New(cfg.LogLevel, *devFlag)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	rt, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}

	router := httpapi.NewRouter(rt.Backend.Graph, rt.Versioner, logger, cfg.AllowedOrigin)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.Addr),
			zap.String("database", cfg.Database),
			zap.String("allowed_origin", cfg.AllowedOrigin),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := rt.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}

	log.Println("Server stopped")
}
