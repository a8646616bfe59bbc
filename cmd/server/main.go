// @title leafdoc API
// @version 1.0
// @description Upload a plant leaf photo and get a structured disease diagnosis from a multimodal model.
// @BasePath /api/v1
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"leafdoc/internal/analyzer"
	"leafdoc/internal/analyzer/claude"
	"leafdoc/internal/analyzer/gemini"
	"leafdoc/internal/analyzer/openai"
	"leafdoc/internal/config"
	"leafdoc/internal/encoder"
	"leafdoc/internal/handler"
	"leafdoc/internal/router"
	"leafdoc/internal/service"
	"leafdoc/internal/storage"
	"leafdoc/internal/web"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		if cfg.Server.IsProduction() {
			return fmt.Errorf("invalid config: %w", err)
		}
		log.Printf("WARNING: %v; analyses will fail until it is set", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Register vision model providers
	gemini.Register()
	claude.Register()
	openai.Register()

	model, err := analyzer.NewVisionModel(&cfg.Analyzer)
	if err != nil {
		return fmt.Errorf("failed to initialize analyzer: %w", err)
	}
	log.Printf("Analyzer provider: %s (available: %v)", cfg.Analyzer.Provider, analyzer.Providers())

	// Initialize storage
	store, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize preview storage: %w", err)
	}

	// Initialize services
	enc := encoder.New(cfg.Upload.MaxBytes())
	client := analyzer.NewClient(model, enc, &cfg.Analyzer)
	sessionSvc := service.NewSessionService(client, store, enc, cfg.Session.TTL)

	tmpl, err := web.Templates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	if !cfg.Log.Verbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize handlers
	r := router.Setup(router.Handlers{
		Page:    handler.NewPageHandler(sessionSvc, cfg.Session.TTL, cfg.Session.CookieSecure),
		Session: handler.NewSessionHandler(sessionSvc),
		Analyze: handler.NewAnalyzeHandler(client, enc),
		Health:  handler.NewHealthHandler(client, store),
	}, router.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxUploadBytes: cfg.Upload.MaxBytes(),
		Templates:      tmpl,
	})

	go sweepSessions(ctx, sessionSvc, cfg.Session.SweepInterval)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// sweepSessions drops expired sessions until ctx is canceled.
func sweepSessions(ctx context.Context, sessions service.SessionService, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sessions.Sweep(ctx, now.UTC())
		}
	}
}
