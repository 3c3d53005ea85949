package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/OrderTrack/config"
	ordersapi "github.com/BearBump/OrderTrack/internal/api/orders_api"
	"github.com/BearBump/OrderTrack/internal/broker/kafka"
	"github.com/BearBump/OrderTrack/internal/cache"
	"github.com/BearBump/OrderTrack/internal/cache/memcache"
	"github.com/BearBump/OrderTrack/internal/cache/rediscache"
	"github.com/BearBump/OrderTrack/internal/integrations/backend/fake"
	"github.com/BearBump/OrderTrack/internal/integrations/backend/restyclient"
	"github.com/BearBump/OrderTrack/internal/logger"
	"github.com/BearBump/OrderTrack/internal/ratelimit"
	"github.com/BearBump/OrderTrack/internal/services/orders"
	"github.com/BearBump/OrderTrack/internal/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type app struct {
	ctx     context.Context
	cancel  context.CancelFunc
	opts    serverOpts
	api     *ordersapi.OrdersAPI
	closers []func() error
}

func mustBootstrap() *app {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}
	if err := logger.Initialize(cfg.Server.LogLevel, cfg.Server.LogEnv); err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a, err := bootstrap(ctx, cfg)
	if err != nil {
		cancel()
		panic(err)
	}
	a.cancel = cancel
	a.opts.swaggerPath = os.Getenv("swaggerPath")
	return a
}

// bootstrap wires the service graph from cfg. Redis is only dialled when
// either the rate limiter or the session store is configured to use it.
func bootstrap(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{ctx: ctx}

	var backend orders.Backend
	switch cfg.Backend.Mode {
	case config.BackendModeFake:
		backend = fake.New()
		logger.Log.Warn("using in-process fake backend")
	default:
		backend = restyclient.New(cfg.Backend.BaseURL, restyclient.Options{
			Timeout: cfg.BackendTimeout(),
			MaxRPS:  cfg.Backend.MaxRPS,
		})
	}

	var rdb *redis.Client
	if cfg.RateLimit.Backend == config.StoreRedis || cfg.Session.Backend == config.StoreRedis {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		a.closers = append(a.closers, rdb.Close)
		a.opts.ready = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("redis %s is not reachable: %w", cfg.Redis.Addr(), err)
		}
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Backend == config.StoreRedis {
		limiter = rediscache.NewRateLimiterWithClient(rdb, int64(cfg.RateLimit.MaxRequests), cfg.RateLimitWindow())
	} else {
		limiter = ratelimit.NewMemory(ratelimit.Config{
			Window:           cfg.RateLimitWindow(),
			MaxRequests:      cfg.RateLimit.MaxRequests,
			CleanupThreshold: cfg.RateLimit.CleanupThreshold,
		}, nil)
	}

	var sessionCache cache.BytesCache
	if cfg.Session.Backend == config.StoreRedis {
		sessionCache = rediscache.NewWithClient(rdb)
	} else {
		mc := memcache.New()
		mc.StartJanitor(ctx, time.Minute)
		sessionCache = mc
	}
	sessions := session.NewStore(sessionCache, cfg.SessionTTL())

	var publisher orders.Publisher
	if cfg.Kafka.Enabled() {
		p := kafka.NewProducer([]string{cfg.Kafka.Addr()})
		a.closers = append(a.closers, p.Close)
		publisher = p
	}

	svc := orders.New(backend, limiter, sessions, publisher, orders.Config{
		TrackingRetries:     cfg.Tracking.RetryCount,
		TrackingRetryDelay:  cfg.TrackingRetryDelay(),
		TrackingConcurrency: cfg.Tracking.Concurrency,
		LookupTopic:         cfg.Kafka.OrderLookupTopicName,
	})

	a.api = ordersapi.New(svc, ordersapi.CookieOptions{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
		MaxAge: cfg.Session.TTLSeconds,
	})
	a.opts.httpAddr = cfg.Server.HTTPAddr

	logger.Log.Info("service configured",
		zap.String("backend_mode", cfg.Backend.Mode),
		zap.String("rate_limit_backend", cfg.RateLimit.Backend),
		zap.String("session_backend", cfg.Session.Backend),
		zap.Bool("kafka", cfg.Kafka.Enabled()),
	)
	return a, nil
}

func (a *app) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Log.Warn("close", zap.Error(err))
		}
	}
	_ = logger.Log.Sync()
}

func (a *app) Run() error {
	return runServer(a.ctx, a.opts, a.api)
}
