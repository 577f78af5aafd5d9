package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth/config"
	"github.com/oksasatya/go-ddd-auth/internal/infrastructure/metrics"
	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client

	jwtManager *helpers.JWTManager
	rabbitPub  *helpers.RabbitPublisher

	registry    *prometheus.Registry
	authMetrics *metrics.AuthMetrics
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

// GetRedis returns nil (an untyped nil interface) when redis is not
// configured, so callers can test it directly.
func GetRedis() redis.Cmdable {
	if redisClient == nil {
		return nil
	}
	return redisClient
}

// SetRabbitPub stores the event publisher; nil keeps publishing disabled.
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

// SetMetrics stores the registry served on /metrics and the auth collectors
// registered on it.
func SetMetrics(reg *prometheus.Registry, m *metrics.AuthMetrics) {
	registry = reg
	authMetrics = m
}
func GetRegistry() *prometheus.Registry    { return registry }
func GetAuthMetrics() *metrics.AuthMetrics { return authMetrics }

// Reset clears every singleton. Tests use it between cases.
func Reset() {
	cfg, logger, pgPool, redisClient = nil, nil, nil, nil
	jwtManager, rabbitPub = nil, nil
	registry, authMetrics = nil, nil
}
