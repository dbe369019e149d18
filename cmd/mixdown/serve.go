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

	"github.com/spf13/cobra"

	"github.com/oszuidwest/zwfm-mixdown/internal/api"
	"github.com/oszuidwest/zwfm-mixdown/internal/api/handlers"
	"github.com/oszuidwest/zwfm-mixdown/internal/audio"
	"github.com/oszuidwest/zwfm-mixdown/internal/audio/preview"
	"github.com/oszuidwest/zwfm-mixdown/internal/cache"
	"github.com/oszuidwest/zwfm-mixdown/internal/config"
	"github.com/oszuidwest/zwfm-mixdown/internal/database"
	"github.com/oszuidwest/zwfm-mixdown/internal/repository"
	"github.com/oszuidwest/zwfm-mixdown/internal/scheduler"
	"github.com/oszuidwest/zwfm-mixdown/internal/services"
	"github.com/oszuidwest/zwfm-mixdown/internal/storage"
	"github.com/oszuidwest/zwfm-mixdown/internal/tts"
	"github.com/oszuidwest/zwfm-mixdown/pkg/logger"
)

func newServeCmd(a *app) *cobra.Command {
	var runMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), a.cfg, runMigrations)
		},
	}
	cmd.Flags().BoolVar(&runMigrations, "migrate", false, "apply pending database migrations before starting")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, runMigrations bool) error {
	logger.Info("Database config: Host=%s, Port=%d, User=%s, Database=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Database)
	logger.Info("Server config: Address=%s", cfg.Server.Address)

	db, err := database.NewGormDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	// Migrations are opt-in to prevent accidental schema changes
	if runMigrations {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	mixCache, err := cache.New(ctx, &cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to create mix cache: %w", err)
	}
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create mix storage: %w", err)
	}

	mixRepo := repository.NewMixRepository(db)
	audioSvc := audio.NewService(&cfg.Audio)
	assetSvc := services.NewAssetService(repository.NewAssetRepository(db), cfg.Audio.AssetsPath)
	mixSvc := services.NewMixService(mixRepo, assetSvc, audioSvc, store, mixCache)
	defer mixSvc.Wait()

	var synth tts.Synthesizer
	if svc := tts.NewService(&cfg.TTS); svc != nil {
		synth = svc
	} else {
		logger.Info("No TTS API key configured, speech synthesis disabled")
	}
	speechSvc := services.NewSpeechService(synth, mixSvc, cfg.TTS.MaxChunkChars)

	player := preview.NewPlayer(audioSvc, previewSink(cfg.Preview), preview.Options{Realtime: true})
	defer player.Stop()
	previewSvc := services.NewPreviewService(player, audioSvc, assetSvc)

	h := handlers.NewHandlers(mixSvc, assetSvc, speechSvc, previewSvc, cfg)
	router := api.SetupRouter(h, cfg)

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: synchronous exports of long narrations can take minutes.
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting mixdown API server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	cleanupService := scheduler.NewMixCleanupService(mixRepo, store, cfg.Audio.MixRetention)
	cleanupService.Start()
	defer cleanupService.Stop()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("Shutting down server...")

	// Stop scheduler first
	cleanupService.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

// previewSink picks the preview output: an external player when configured, otherwise nothing.
func previewSink(cfg config.PreviewConfig) func() preview.Sink {
	if cfg.Command == "" {
		return func() preview.Sink { return preview.DiscardSink{} }
	}
	return func() preview.Sink {
		return &preview.CommandSink{Name: cfg.Command, Args: cfg.Args}
	}
}
