package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/viper"

	"github.com/coursekit/go-media-search/database"
	"github.com/coursekit/go-media-search/queue"
	"github.com/coursekit/go-media-search/search"
	"github.com/coursekit/go-media-search/services"
	"github.com/coursekit/go-media-search/worker"
)

func init() {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DB_SSLMODE", "disable")

	if err := viper.ReadInConfig(); err != nil {
		slog.Warn("no .env file loaded", "error", err)
	}

	viper.AutomaticEnv()

	setupLogging()
}

func setupLogging() {
	level := slog.LevelInfo
	switch viper.GetString("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func main() {
	db, err := database.Connect()
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	store := database.NewStore(db)

	tasks := queue.New()

	ingestor := worker.NewIngestor(
		services.NewMediaServiceClient(),
		services.NewDocumentProcessorClient(),
		services.NewVideoProcessorClient(),
		store,
	)
	w := worker.NewWorker(tasks, ingestor)
	w.Start()

	embedder := services.NewCachedEmbedder(services.NewSentenceEmbedderClient())
	engine := search.NewEngine(embedder, store)

	api := &apiHandlers{tasks: tasks, store: store, engine: engine}

	r := mux.NewRouter()
	r.HandleFunc("/media-records/{id}/ingest", api.ingestMediaRecord).Methods("POST")
	r.HandleFunc("/media-records/{id}", api.deleteMediaRecord).Methods("DELETE")
	r.HandleFunc("/search", api.search).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:    ":" + viper.GetString("PORT"),
		Handler: c.Handler(r),
	}

	go func() {
		slog.Info("server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	// The worker finishes its in-flight task before exiting; tasks still
	// queued are lost, which is the fire-and-forget contract.
	w.Stop()
}
