package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/groupcollect/groupcollect-backend/api/controllers"
	"github.com/groupcollect/groupcollect-backend/api/middleware"
	"github.com/groupcollect/groupcollect-backend/internal/auth"
	"github.com/groupcollect/groupcollect-backend/internal/collects"
	"github.com/groupcollect/groupcollect-backend/internal/comments"
	"github.com/groupcollect/groupcollect-backend/internal/notifications"
	"github.com/groupcollect/groupcollect-backend/internal/payments"
	"github.com/groupcollect/groupcollect-backend/internal/users"
	"github.com/groupcollect/groupcollect-backend/pkg/auth/session"
	"github.com/groupcollect/groupcollect-backend/pkg/config"
	"github.com/groupcollect/groupcollect-backend/pkg/db"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
	"github.com/groupcollect/groupcollect-backend/pkg/metrics"
	"github.com/groupcollect/groupcollect-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Infra groups the shared clients the router needs besides domain services.
// Redis and PubSub are optional; nil disables the features built on them.
type Infra struct {
	DB       db.Pinger
	Redis    *redis.Client
	PubSub   controllers.Pinger
	Sessions sessionManager
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	infra Infra,
	authService auth.Service,
	registerService auth.RegisterService,
	adminRegisterService auth.RegisterService,
	collectsService collects.Service,
	paymentsService payments.Service,
	commentsService comments.Service,
	usersService users.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Logging(logg, infra.Metrics),
	)

	var (
		rateStore   middleware.RateLimitStore
		idemStore   redis.IdempotencyStore
		pageStore   redis.PageCache
		readyChecks = map[string]controllers.Pinger{"db": infra.DB}
	)
	if infra.Redis != nil {
		rateStore = infra.Redis
		idemStore = infra.Redis
		readyChecks["redis"] = infra.Redis
		if cfg.FeatureFlags.PageCache {
			pageStore = infra.Redis
		}
	}
	if infra.PubSub != nil {
		readyChecks["pubsub"] = infra.PubSub
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginIdentityLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readyChecks, logg))
	})
	if infra.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public/v1", func(r chi.Router) {
		r.Use(middleware.PageCache(pageStore, cfg.Cache.PageTTL, logg))
		r.Get("/collects", controllers.PublicListCollects(collectsService, logg))
		r.Get("/collects/{collectId}", controllers.GetCollect(collectsService, logg))
		r.Get("/collects/{collectId}/comments", controllers.ListComments(commentsService, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, rateStore, logg),
			middleware.Idempotency(idemStore, logg),
		).Post("/register", controllers.AuthRegister(registerService, authService, logg))
		r.Post("/logout", controllers.AuthLogout(infra.Sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(infra.Sessions, cfg.JWT, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.AuthRegister(adminRegisterService, authService, logg))
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, infra.Sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/collects", func(r chi.Router) {
			r.Get("/", controllers.ListMyCollects(collectsService, logg))
			r.Post("/", controllers.CreateCollect(collectsService, logg))
			r.Get("/{collectId}", controllers.GetCollect(collectsService, logg))
			r.Patch("/{collectId}", controllers.UpdateCollect(collectsService, logg))
			r.Post("/{collectId}/close", controllers.RequestCloseCollect(collectsService, logg))
			r.Post("/{collectId}/comments", controllers.CreateComment(commentsService, logg))
		})
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", controllers.ListPayments(paymentsService, logg))
			r.Post("/", controllers.CreatePayment(paymentsService, logg))
			r.Get("/{paymentId}", controllers.GetPayment(paymentsService, logg))
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.ListUsers(usersService, logg))
			r.Get("/{userId}", controllers.GetUser(usersService, logg))
		})
		r.Get("/profile", controllers.GetProfile(usersService, logg))
		r.Put("/profile", controllers.UpdateProfile(usersService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, infra.Sessions, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/collects", func(r chi.Router) {
			r.Get("/", controllers.AdminListCollects(collectsService, logg))
			r.Post("/activate", controllers.AdminActivateCollects(collectsService, logg))
			r.Patch("/{collectId}", controllers.UpdateCollect(collectsService, logg))
			r.Delete("/{collectId}", controllers.AdminDeleteCollect(collectsService, logg))
			r.Post("/{collectId}/close", controllers.AdminCloseCollect(collectsService, logg))
		})
		r.Get("/users", controllers.AdminListUsers(usersService, logg))
		r.Get("/notifications", controllers.AdminListNotifications(notificationsService, logg))
		r.Delete("/comments/{commentId}", controllers.AdminDeleteComment(commentsService, logg))
	})

	return r
}
