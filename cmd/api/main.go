package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/stripe/stripe-go/v82"

	"github.com/communityhq/membergate/internal/cache"
	"github.com/communityhq/membergate/internal/config"
	"github.com/communityhq/membergate/internal/database"
	"github.com/communityhq/membergate/internal/modules/catalog"
	"github.com/communityhq/membergate/internal/modules/commerce"
	"github.com/communityhq/membergate/internal/modules/identity"
	"github.com/communityhq/membergate/internal/notification"
	"github.com/communityhq/membergate/internal/notification/templates"
	"github.com/communityhq/membergate/internal/platform/lemonsqueezy"
	"github.com/communityhq/membergate/internal/platform/supabase"
	"github.com/communityhq/membergate/internal/platform/telegram"
	"github.com/communityhq/membergate/internal/server"
	"github.com/communityhq/membergate/internal/session"
	"github.com/communityhq/membergate/internal/webhook"
)

// Options for the CLI.
type Options struct {
	Port int `help:"Port to listen on" short:"p" default:"8080"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		// Use a structured logger
		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		cfg := config.Load()
		if cfg == nil {
			logger.Error("failed to load configuration")
			os.Exit(1)
		}
		logger.Info("configuration loaded successfully", "env", cfg.Server.Env)

		// --- Database & Cache ---
		dbPool := database.NewPostgresPool(cfg.Database.URL)
		if dbPool == nil {
			logger.Error("failed to connect to postgres")
			os.Exit(1)
		}
		hooks.OnStop(dbPool.Close)
		logger.Info("successfully connected to postgres database")
		redisClient := cache.NewRedisClient(cfg.Redis.URL)
		if redisClient == nil {
			logger.Error("failed to connect to redis")
			os.Exit(1)
		}
		hooks.OnStop(func() { redisClient.Close() })
		logger.Info("successfully connected to redis")

		// --- Platform Clients ---
		stripe.Key = cfg.Stripe.SecretKey

		tg, err := telegram.New(cfg.Telegram, logger)
		if err != nil {
			logger.Error("failed to create telegram client", "error", err)
			os.Exit(1)
		}
		sb := supabase.New(cfg.Supabase, logger)
		ls := lemonsqueezy.New(cfg.LemonSqueezy, logger)

		sessions := session.NewCodec(cfg.Session.Secret, cfg.IsProduction())
		claimThrottle := cache.NewThrottle(redisClient, time.Hour)

		// Mail is optional; without SMTP credentials receipts are skipped.
		mailer := notification.NewService(logger, nil, templates.NewEngine())
		if cfg.SMTP.Host != "" {
			sender := notification.NewSMTPEmailSender(
				cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, logger,
			)
			mailer = notification.NewService(logger, sender, templates.NewEngine())
		}

		// --- Module Initialization (Bottom-Up) ---

		// Commerce Module (constructed first; the identity module reconciles
		// unmatched purchases through it)
		commerceRepo := commerce.NewRepository(dbPool)
		commerceService := commerce.NewService(&commerce.ServiceConfig{
			Repo:      commerceRepo,
			Licenses:  ls,
			Directory: sb,
			Mailer:    mailer,
			Logger:    logger,
		})

		// Identity Module
		identityRepo := identity.NewRepository(dbPool)
		identityService := identity.NewService(&identity.Config{
			Repo:     identityRepo,
			Checker:  tg,
			Notifier: tg,
			Claimer:  commerceService,
			Throttle: claimThrottle,
			Logger:   logger,
			Config:   cfg,
		})
		gateway := identity.NewGateway(identityService, sessions, server.SupabaseTokenAdapter{Client: sb}, logger)
		identityHandler := identity.NewHandler(&identity.HandlerConfig{
			Service:       identityService,
			Sessions:      sessions,
			Gateway:       gateway,
			TelegramHook:  webhook.NewSecretTokenVerifier(cfg.Telegram.WebhookSecret),
			TributeHook:   webhook.NewHMACHexVerifier(cfg.Tribute.APIKey),
			TributeHasKey: cfg.Tribute.APIKey != "",
			Logger:        logger,
		})

		// Catalog Module
		catalogRepo := catalog.NewRepository(dbPool)
		catalogService := catalog.NewService(catalogRepo, logger)
		catalogHandler := catalog.NewHandler(catalogService, gateway, logger)

		commerceHandler := commerce.NewHandler(&commerce.HandlerConfig{
			Service:        commerceService,
			Gateway:        gateway,
			Sessions:       sessions,
			Prices:         commerce.StripePriceResolver{},
			EndpointSecret: cfg.Stripe.EndpointSecret,
			Logger:         logger,
		})

		router := server.New(cfg, logger, server.Handlers{
			Identity: identityHandler,
			Catalog:  catalogHandler,
			Commerce: commerceHandler,
		})
		hooks.OnStart(func() {
			logger.Info(fmt.Sprintf("Starting server on port %d...", options.Port))
			if err := http.ListenAndServe(fmt.Sprintf(":%d", options.Port), router); err != nil {
				slog.Error("Server failed to start", "error", err)
				os.Exit(1)
			}
		})
	})
	cli.Run()
}
