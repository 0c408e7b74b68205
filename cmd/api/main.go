package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jacker/internal/config"
	"github.com/justsurfingit/jacker/internal/database"
	"github.com/justsurfingit/jacker/internal/handlers"
	"github.com/justsurfingit/jacker/internal/logger"
	"github.com/justsurfingit/jacker/internal/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "jacker:", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Config and logging
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database, built once and injected
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return err
	}
	jobService := services.NewJobService(db)

	// 3. Optional extraction cache
	var cache services.ExtractionCache
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, extraction cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			cache = services.NewRedisExtractionCache(rdb, cfg.ExtractionCacheTTL)
			log.Info("extraction cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.ExtractionCacheTTL))
		}
		cancel()
	}

	// 4. AI tier dependencies; missing keys only disable the tier
	llmService, err := services.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.MaxPromptChars, cfg.ExtractionTimeout, log)
	if err != nil {
		return err
	}
	scraper := services.NewScraperService(cfg.BrowserlessAPIKey, cfg.BrowserlessEndpoint, cfg.ScrapeTimeout, log)
	if !cfg.AIEnabled() {
		log.Warn("AI analysis disabled; jobs will be tracked with basic info",
			zap.Bool("gemini_key", cfg.GeminiAPIKey != ""),
			zap.Bool("browserless_key", cfg.BrowserlessAPIKey != ""))
	}

	ingestion := services.NewIngestionService(scraper, llmService, jobService, cache, log)

	// 5. HTTP
	if cfg.LogFormat == "json" {
		gin.SetMode(gin.ReleaseMode)
	}
	jobHandler := handlers.NewJobHandler(ingestion, jobService, cfg.TrackRequestTimeout, log)
	router := handlers.NewRouter(jobHandler, cfg.CORSAllowOrigins, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
