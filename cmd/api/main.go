package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ts-objective/internal/api"
	"ts-objective/internal/logging"
	"ts-objective/internal/metrics"
	"ts-objective/internal/run"
	"ts-objective/internal/store"
)

func main() {
	// Get configuration from environment
	port := getenv("API_PORT", "8080")
	dataDir := getenv("DATA_DIR", "./data")
	dbPath := getenv("RESULTS_DB", filepath.Join(dataDir, "results.db"))

	format := "console"
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
		format = "json"
	}
	log, err := logging.New(logging.Config{Level: getenv("LOG_LEVEL", "info"), Format: format})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log = logging.Component(log, "api")

	if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
		log.Fatal().Str("data_dir", dataDir).Msg("data directory not found")
	}

	ttl, err := time.ParseDuration(getenv("CACHE_TTL", "1h"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid CACHE_TTL")
	}
	maxSteps, err := strconv.Atoi(getenv("MAX_STEPS", strconv.Itoa(run.DefaultMaxSteps)))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid MAX_STEPS")
	}

	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open results db")
	}
	defer db.Close()
	cache := store.NewCache(ttl, 5*time.Minute)
	defer cache.Close()

	rec := metrics.New()

	var origins []string
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}

	router := api.NewRouter(api.Deps{
		DataDir:  dataDir,
		MaxSteps: maxSteps,
		Store:    store.NewCached(db, cache),
		Recorder: rec,
		Gatherer: rec.Registry(),
		Logger:   log,
		Origins:  origins,
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("data_dir", dataDir).Str("db", dbPath).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("server stopped")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
