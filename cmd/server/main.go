package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/sayilar/internal/api"
	"github.com/vytor/sayilar/internal/config"
	"github.com/vytor/sayilar/internal/db"
	"github.com/vytor/sayilar/internal/haptics"
	"github.com/vytor/sayilar/internal/logger"
	"github.com/vytor/sayilar/internal/numbers"
	"github.com/vytor/sayilar/internal/repository/sqlite"
	"github.com/vytor/sayilar/internal/services"
	"github.com/vytor/sayilar/internal/voice"
	"github.com/vytor/sayilar/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Sayilar Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("speech=%s pitch=%.2f rate=%.2f debounce=%s", cfg.SpeechLanguage, cfg.SpeechPitch, cfg.SpeechRate, cfg.SpeechDebounce)
	log.Debug("advance_delay=%s wrong_recovery_delay=%s counting_pause=%s", cfg.AdvanceDelay, cfg.WrongRecoveryDelay, cfg.CountingPause)
	log.Debug("haptics_worker_count=%d haptics_queue_size=%d", cfg.HapticsWorkerCount, cfg.HapticsQueueSize)
	log.Debug("screen_idle_timeout=%s", cfg.ScreenIdleTimeout)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	ctx, cancel := context.WithCancel(logger.NewContext(context.Background(), log))
	defer cancel()

	profileRepo := sqlite.NewProfileRepository(database.DB)
	defaultProfile, err := profileRepo.Upsert(ctx, db.DefaultProfile)
	if err != nil {
		log.Error("failed to prepare default profile: %v", err)
		os.Exit(1)
	}

	hapticsPool := worker.NewPool(cfg.HapticsWorkerCount, cfg.HapticsQueueSize)
	hapticsPool.Start(ctx)

	screenService := services.NewScreenService(ctx, services.ScreenServiceConfig{
		Store:    sqlite.NewKeyValueStore(database.DB),
		Profiles: profileRepo,
		Haptics:  haptics.NewDispatcher(hapticsPool, haptics.LogDriver{}),
		Voice: voice.Settings{
			Language: cfg.SpeechLanguage,
			Pitch:    cfg.SpeechPitch,
			Rate:     cfg.SpeechRate,
			Debounce: cfg.SpeechDebounce,
		},
		Timings: numbers.Timings{
			Tick:               time.Second,
			AdvanceDelay:       cfg.AdvanceDelay,
			WrongRecoveryDelay: cfg.WrongRecoveryDelay,
			CountingPause:      cfg.CountingPause,
		},
		DefaultProfileID: defaultProfile.ID,
		IdleTimeout:      cfg.ScreenIdleTimeout,
	})

	srv := &api.Server{
		ProfileService: services.NewProfileService(profileRepo),
		ScreenService:  screenService,
		DB:             database,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}

	go reapIdleScreens(ctx, screenService, cfg.ScreenIdleTimeout)

	httpServer := &http.Server{
		Addr:        cfg.Addr,
		Handler:     srv.Routes(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("closing screens")
	screenService.Shutdown(shutdownCtx)

	cancel()
	log.Debug("stopping haptics pool")
	hapticsPool.Stop()

	log.Info("===========================================")
	log.Info("Sayilar Server Stopped")
	log.Info("===========================================")
}

func reapIdleScreens(ctx context.Context, svc services.ScreenService, timeout time.Duration) {
	interval := timeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.ReapIdle(ctx)
		}
	}
}
