package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/feedmill/feedmill/app/api"
	"github.com/feedmill/feedmill/app/cfg"
	"github.com/feedmill/feedmill/app/database"
	"github.com/feedmill/feedmill/app/feed"
	"github.com/feedmill/feedmill/app/tasks"
)

func main() {
	// Optional .env file for local development
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if c == nil {
		// Help output was requested
		return
	}

	setupLogging(c.LogLevel)

	log.Printf("Starting FeedMill %s", c.Version)

	db, err := database.Open(c.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Printf("Database ready at %s (schema version %d, dirty: %t)", c.DatabasePath, version, dirty)

	configCache := feed.NewConfigCache(c.FeedsDir)
	if err := configCache.Run(); err != nil {
		log.Fatalf("Failed to load feed configurations: %v", err)
	}
	log.Printf("Loaded %d feed configuration(s) from %s", configCache.GetConfigCount(), c.FeedsDir)

	feedRepo := database.NewFeedRepository(db)
	itemRepo := database.NewItemRepository(db)

	httpClient := &http.Client{}
	sanitizer := feed.NewSanitizer()
	parser := feed.NewParser(sanitizer)
	filterer := feed.NewFilterer()
	contentExtractor := feed.NewContentExtractor()

	scheduler := tasks.NewScheduler(configCache, feedRepo, itemRepo, httpClient,
		parser, filterer, contentExtractor, sanitizer)
	scheduler.Start()

	handler := api.NewHandler(configCache, feedRepo, itemRepo, scheduler)
	router := api.NewServer(handler, c.APIKey)

	httpServer := &http.Server{
		Addr:         c.Host + ":" + c.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down", sig)
	case err := <-serverErrChan:
		log.Printf("HTTP server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	scheduler.Stop()

	log.Printf("Shutdown complete")
}

// setupLogging configures the default slog handler used by the shell
// components. The main package itself sticks to the standard logger.
func setupLogging(level string) {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel,
	})))
}
