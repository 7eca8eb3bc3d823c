package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"apartinvest/server/config"
	"apartinvest/server/internal/api"
	"apartinvest/server/internal/catalog"
	"apartinvest/server/internal/ingest"
	"apartinvest/server/internal/journal"
	"apartinvest/server/internal/logging"
	"apartinvest/server/internal/models"
	"apartinvest/server/internal/observability"
	"apartinvest/server/internal/processor"
	"apartinvest/server/internal/queue"
	"apartinvest/server/internal/scheduler"
	"apartinvest/server/internal/storage"
	"apartinvest/server/internal/telegram"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	if cfg.CitiesFile != "" {
		if err := config.LoadCities(cfg.CitiesFile); err != nil {
			logger.WithError(err).Fatal("Failed to load city tiers")
		}
	}

	docs, err := storage.Open(storage.Options{
		Backend:       cfg.Storage.Backend,
		DataDir:       cfg.Storage.DataDir,
		SQLitePath:    cfg.Storage.SQLitePath,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisDB:       cfg.Storage.RedisDB,
		RedisPrefix:   cfg.Storage.RedisPrefix,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open storage")
	}
	defer docs.Close()
	logger.WithField("backend", cfg.Storage.Backend).Info("Storage opened")

	store := catalog.NewStore(docs, catalog.Sources{
		Canonical:   cfg.Catalog.Canonical,
		Overlays:    cfg.Catalog.Overlays,
		Extras:      cfg.Catalog.Extras,
		Enrichments: cfg.Catalog.Enrichments,
	}, config.TierForCity, logger)

	if snap, err := store.Load(context.Background()); err != nil {
		logger.WithError(err).Warn("Catalog is not loadable yet; project endpoints answer 503 until it is")
	} else {
		logger.WithFields(logrus.Fields{
			"records":  len(snap.Records),
			"rejected": len(snap.Rejected),
		}).Info("Catalog loaded")
	}

	j := journal.New(docs)

	// Stored settings win over the environment
	telegramStore := telegram.NewConfigStore(docs)
	telegramConfig := &models.TelegramConfig{
		IsEnabled: cfg.Telegram.Enabled,
		BotToken:  cfg.Telegram.BotToken,
		ChatID:    cfg.Telegram.ChatID,
	}
	if stored, err := telegramStore.Load(context.Background()); err != nil {
		logger.WithError(err).Warn("Failed to load stored Telegram config")
	} else if stored != nil {
		telegramConfig = stored
	}
	telegramService := telegram.NewService(telegramConfig, logger)

	leads := queue.NewLeadQueue(cfg.BatchProcessing.QueueSize, logger)
	notifier := processor.NewNotifier(telegramService, func(ctx context.Context, slug string) *models.Property {
		if slug == "" {
			return nil
		}
		snap, err := store.Load(ctx)
		if err != nil {
			return nil
		}
		p, _ := snap.Find(slug)
		return p
	}, leads, cfg, logger)
	notifier.Start()

	client := &http.Client{}
	limiter := ingest.NewLimiter(cfg.Ingest.RatePerSecond)
	runner := ingest.NewRunner(
		ingest.NewFeedFetcher(client, limiter, cfg.Ingest.Timeout, logger),
		ingest.NewChannelFetcher(client, limiter, cfg.Ingest.Timeout, logger),
		store,
		j,
		ingest.Sources{
			FeedURLs: cfg.Ingest.FeedURLs,
			Channels: cfg.Ingest.Channels,
			Keywords: cfg.Ingest.Keywords,
		},
		logger,
	)

	var sched *scheduler.Scheduler
	if cfg.Ingest.SchedulerEnabled {
		sched = scheduler.NewScheduler(cfg.Ingest.Interval, logger, scheduler.Job{
			Type: scheduler.JobTypeIngest,
			Run: func(ctx context.Context) error {
				_, err := runner.Run(ctx)
				return err
			},
		})
		sched.Start()
	}

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORS.Origins) == 0 || (len(cfg.CORS.Origins) == 1 && cfg.CORS.Origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORS.Origins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, api.AdminTokenHeader, api.IngestTokenHeader)
	router.Use(cors.New(corsConfig))

	handler := api.NewHandler(api.Deps{
		Catalog:        store,
		Admin:          catalog.NewAdmin(store, logger),
		Journal:        j,
		Runner:         runner,
		Leads:          leads,
		Telegram:       telegramService,
		TelegramConfig: telegramStore,
		AdminToken:     cfg.Auth.AdminToken,
		IngestToken:    cfg.Auth.IngestToken,
	}, logger)
	api.SetupRoutes(router, handler, observability.InitRegistry())

	if cfg.Auth.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN is not set; admin endpoints are disabled")
	}
	if cfg.Auth.IngestToken == "" {
		logger.Warn("INGEST_TOKEN is not set; ingest endpoints are disabled")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	if sched != nil {
		sched.Stop()
	}
	notifier.Stop()
	logger.Info("Server exited")
}
