package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/groupcollect/groupcollect-backend/api/routes"
	"github.com/groupcollect/groupcollect-backend/internal/auth"
	"github.com/groupcollect/groupcollect-backend/internal/collects"
	"github.com/groupcollect/groupcollect-backend/internal/comments"
	"github.com/groupcollect/groupcollect-backend/internal/notifications"
	"github.com/groupcollect/groupcollect-backend/internal/payments"
	"github.com/groupcollect/groupcollect-backend/internal/users"
	"github.com/groupcollect/groupcollect-backend/pkg/auth/session"
	"github.com/groupcollect/groupcollect-backend/pkg/censor"
	"github.com/groupcollect/groupcollect-backend/pkg/config"
	"github.com/groupcollect/groupcollect-backend/pkg/db"
	"github.com/groupcollect/groupcollect-backend/pkg/env"
	"github.com/groupcollect/groupcollect-backend/pkg/instance"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
	"github.com/groupcollect/groupcollect-backend/pkg/mail"
	"github.com/groupcollect/groupcollect-backend/pkg/metrics"
	"github.com/groupcollect/groupcollect-backend/pkg/migrate"
	"github.com/groupcollect/groupcollect-backend/pkg/pubsub"
	"github.com/groupcollect/groupcollect-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Env:         cfg.App.Env,
		Instance:    instance.GetID(),
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var pubsubClient *pubsub.Client
	if strings.EqualFold(cfg.Mail.Transport, config.MailTransportPubSub) {
		pubsubClient, err = pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
	}

	sender, err := mail.NewSender(cfg.Mail, pubsubClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mail sender", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerParams := auth.RegisterServiceParams{DB: dbClient, PasswordConfig: cfg.Password}
	registerService, err := auth.NewRegisterService(registerParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}
	adminRegisterService, err := auth.NewAdminRegisterService(registerParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin register service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(usersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repo:    notifications.NewRepository(dbClient.DB()),
		Sender:  sender,
		From:    cfg.Mail.From,
		Metrics: metrics.NewNotificationMetrics(registry),
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	textCensor := censor.Default()
	collectsRepo := collects.NewRepository(dbClient.DB())

	collectsService, err := collects.NewService(collects.ServiceParams{
		DB:             dbClient,
		Repo:           collectsRepo,
		Users:          usersRepo,
		Notifications:  notificationsService,
		Censor:         textCensor,
		Cache:          redisClient,
		AdminURL:       cfg.App.AdminCollectURL,
		PublicPageSize: cfg.Cache.PublicPageSize,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create collects service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		DB:            dbClient,
		Repo:          payments.NewRepository(dbClient.DB()),
		Collects:      collectsRepo,
		Users:         usersRepo,
		Notifications: notificationsService,
		Cache:         redisClient,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	commentsService, err := comments.NewService(comments.ServiceParams{
		DB:            dbClient,
		Repo:          comments.NewRepository(dbClient.DB()),
		Collects:      collectsRepo,
		Users:         usersRepo,
		Notifications: notificationsService,
		Censor:        textCensor,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create comments service", err)
		os.Exit(1)
	}

	infra := routes.Infra{
		DB:       dbClient,
		Redis:    redisClient,
		Sessions: sessionManager,
		Metrics:  metrics.NewHTTPMetrics(registry),
		Gatherer: registry,
	}
	if pubsubClient != nil {
		infra.PubSub = pubsubClient
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"addr":           addr,
		"mail_transport": sender.Name(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			infra,
			authService,
			registerService,
			adminRegisterService,
			collectsService,
			paymentsService,
			commentsService,
			usersService,
			notificationsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
