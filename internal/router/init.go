package router

import (
	"time"

	"github.com/oksasatya/go-ddd-auth/internal/application"
	"github.com/oksasatya/go-ddd-auth/internal/container"
	"github.com/oksasatya/go-ddd-auth/internal/domain/repository"
	"github.com/oksasatya/go-ddd-auth/internal/domain/service"
	"github.com/oksasatya/go-ddd-auth/internal/infrastructure/cache"
	"github.com/oksasatya/go-ddd-auth/internal/infrastructure/events"
	pginfra "github.com/oksasatya/go-ddd-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-auth/internal/infrastructure/security"
	handlers "github.com/oksasatya/go-ddd-auth/internal/interface/http"
	"github.com/oksasatya/go-ddd-auth/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-auth/internal/router/modules"
	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
)

const (
	eventPublishTimeout = 2 * time.Second
	metricsRateLimit    = 120
)

type AuthModuleDeps struct {
	Store       repository.UserStore
	Register    *application.RegisterUser
	Login       *application.Login
	CurrentUser *application.GetCurrentUser
	Handler     *handlers.AuthHandler
}

// BuildAuthDeps assembles the auth use cases from the container singletons.
// Redis and RabbitMQ are optional: without them the user cache is skipped
// and events are discarded.
func BuildAuthDeps() AuthModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	var store repository.UserStore = pginfra.NewUserStore(container.GetPGPool())
	if rdb := container.GetRedis(); rdb != nil && cfg.UserCacheTTL > 0 {
		store = cache.NewUserCache(store, rdb, cfg.UserCacheTTL, logger)
	}

	var publisher application.EventPublisher = application.NoopPublisher{}
	if p := container.GetRabbitPub(); p != nil {
		publisher = events.NewRabbitPublisher(p, eventPublishTimeout)
	}

	var metrics application.Metrics = application.NoopMetrics{}
	if m := container.GetAuthMetrics(); m != nil {
		metrics = m
	}

	hasher := service.NewBcryptHasher()
	limiter := security.NewLoginRateLimiter(security.NewMemoryStore())

	register := application.NewRegisterUser(store, hasher, publisher, metrics, logger)
	authenticate := application.NewAuthenticateUser(store, hasher, container.GetJWT())
	login := application.NewLogin(authenticate, limiter, publisher, metrics, logger)
	current := application.NewGetCurrentUser(store)

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.IsProduction(), container.GetJWT().ExpiresIn())
	handler := handlers.NewAuthHandler(register, login, current, cookies, logger)

	return AuthModuleDeps{
		Store:       store,
		Register:    register,
		Login:       login,
		CurrentUser: current,
		Handler:     handler,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	authDeps := BuildAuthDeps()
	throttle := middleware.RateLimit(container.GetRedis(), cfg.AuthRateLimit, cfg.AuthRateWindow,
		middleware.KeyByIPAndPath(), nil, logger)
	r.Add(modules.NewAuthModule(authDeps.Handler, container.GetJWT(), throttle))

	if cfg.MetricsEnabled && container.GetRegistry() != nil {
		metricsThrottle := middleware.RateLimit(container.GetRedis(), metricsRateLimit, time.Minute,
			middleware.KeyByIP(), middleware.AllowPrivateIP(), logger)
		r.AddRoot(modules.NewMetricsModule(container.GetRegistry(), metricsThrottle))
	}
}
