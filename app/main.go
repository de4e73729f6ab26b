package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arl-connect/gold-news/app/api"
	"github.com/arl-connect/gold-news/app/cache"
	"github.com/arl-connect/gold-news/app/cfg"
	"github.com/arl-connect/gold-news/app/database"
	"github.com/arl-connect/gold-news/app/feed"
	"github.com/arl-connect/gold-news/app/tasks"
	"github.com/gin-gonic/gin"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	if err := run(appCfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting gold news server", "version", appCfg.Version, "timezone", time.Local.String())

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	configCache := feed.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load source configurations: %w", err)
	}
	slog.Info("Source configurations loaded", "dir", appCfg.SourcesDir, "count", configCache.GetConfigCount())

	sourceRepo := database.NewSourceRepository(db)
	itemRepo := database.NewItemRepository(db)

	var responseCache cache.CacheInterface
	var invalidator tasks.CacheInvalidator
	if appCfg.RedisAddr != "" {
		redisCache, err := cache.NewCache(appCfg.RedisAddr)
		if err != nil {
			slog.Warn("Response cache disabled", "addr", appCfg.RedisAddr, "error", err)
		} else {
			defer redisCache.Close()
			responseCache = redisCache
			invalidator = redisCache
		}
	}

	var parser feed.FeedParser
	switch appCfg.Parser {
	case cfg.ParserGofeed:
		parser = feed.NewGofeedParser()
	default:
		parser = feed.NewParser()
	}
	slog.Info("Feed parser selected", "parser", appCfg.Parser)

	fetcher := feed.NewFetcher(&http.Client{}, appCfg.UserAgent, appCfg.FetchTimeoutDuration())
	ingester := tasks.NewIngester(fetcher, parser, sourceRepo, itemRepo)
	batchRunner := tasks.NewBatchRunner(sourceRepo, ingester, invalidator)
	cleaner := tasks.NewCleaner(itemRepo, invalidator)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount)
	scheduler := tasks.NewScheduler(configCache, sourceRepo, batchRunner, cleaner, tasks.SchedulerSettings{
		FetchInterval:   time.Duration(appCfg.SchedulerInterval) * time.Second,
		CleanupInterval: time.Duration(appCfg.CleanupInterval) * time.Second,
		RetentionDays:   appCfg.RetentionDays,
		WorkerCount:     appCfg.WorkerCount,
	})
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(configCache, sourceRepo, itemRepo, batchRunner, cleaner, responseCache, appCfg.CacheTTLDuration())
	server := api.NewServer(handler, appCfg.APIAccessKey)

	// Manual fetches run synchronously across every source, so writes get a generous timeout
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "admin_api", appCfg.APIAccessKey != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return serveErr
}
