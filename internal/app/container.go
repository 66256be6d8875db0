package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"courier-dispatch/internal/auth"
	"courier-dispatch/internal/config"
	"courier-dispatch/internal/gateway/notify"
	"courier-dispatch/internal/http/handlers"
	"courier-dispatch/internal/http/middleware/ratelimit"
	"courier-dispatch/internal/http/pprofserver"
	"courier-dispatch/internal/http/router"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/metrics"
	"courier-dispatch/internal/service/courier"
	"courier-dispatch/internal/service/dispatch"
	"courier-dispatch/internal/service/matching"
	"courier-dispatch/internal/service/offers"
	"courier-dispatch/internal/service/orders"
	"courier-dispatch/internal/service/pricing"
	"courier-dispatch/internal/transport/kafka"
)

const dispatchTimeout = 10 * time.Second

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect dbConnectFunc
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns the API container.
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerStorage(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if err := registerDomainServices(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns the API container.
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		config.Load,
		NewLogger,
		provideMetrics,
	)
}

func provideMetrics() (*metrics.Set, error) {
	return metrics.Register(prometheus.DefaultRegisterer)
}

func registerStorage(container *dig.Container, connect dbConnectFunc) error {
	return provideAll(container,
		newStorageProvider(connect),
		provideRedis,
		provideMirror,
		provideGeoIndex,
	)
}

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config) *pricing.Engine {
			return pricing.NewEngine(pricing.Config{
				BasePrice:      cfg.Pricing.BasePrice,
				PricePerKm:     cfg.Pricing.PricePerKm,
				DeliveryFee:    cfg.Pricing.DeliveryFee,
				CommissionRate: cfg.Pricing.CommissionRate,
			})
		},
		func(cfg *config.Config, idx matching.GeoIndex, q *pricing.Engine, logger logx.Logger, m *metrics.Set) *matching.Engine {
			return matching.NewEngine(idx, q, cfg.Matching.RadiusKm, cfg.Orders.OperationTimeout, logger, m.MatchOutcomes)
		},
		provideNotifier,
		func(e *matching.Engine, n dispatch.Notifier, logger logx.Logger) *dispatch.Dispatcher {
			return dispatch.NewDispatcher(e, n, dispatchTimeout, logger)
		},
		func(cfg *config.Config, st *storage, q *pricing.Engine, d *dispatch.Dispatcher, cs *courier.Service, logger logx.Logger, m *metrics.Set) *orders.Service {
			return orders.NewService(st.Orders, q, cfg.Orders.PlaceholderDistanceKm, cfg.Orders.OperationTimeout, logger,
				orders.WithCompletionRecorder(cs),
				orders.WithCreatedHook(d),
				orders.WithClaimsCounter(m.OrderClaims),
			)
		},
		func(cfg *config.Config, st *storage) *offers.Feed {
			return offers.NewFeed(st.Orders, cfg.Orders.RejectionCooldown, cfg.Orders.OperationTimeout, nil)
		},
		provideCourierService,
		func(cfg *config.Config) *auth.Tokens {
			return auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		},
	)
}

func provideCourierService(cfg *config.Config, st *storage, mirror courier.Mirror, logger logx.Logger) *courier.Service {
	return courier.NewService(st.Couriers, mirror, cfg.Orders.OperationTimeout, logger)
}

// notifierOut exposes the producer separately so the runner can close it.
type notifierOut struct {
	dig.Out

	Notifier dispatch.Notifier
	Producer *kafka.OfferProducer
}

func provideNotifier(cfg *config.Config, logger logx.Logger, m *metrics.Set) (notifierOut, error) {
	if !cfg.Kafka.Enabled() {
		return notifierOut{Notifier: notify.NewLogNotifier(logger)}, nil
	}
	producer, err := kafka.NewOfferProducer(logger, cfg.Kafka.Brokers, cfg.Kafka.OffersTopic)
	if err != nil {
		return notifierOut{}, err
	}
	retrying := notify.NewRetryingNotifier(producer, logger, m.NotifierRetriesTotal, notify.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
	})
	return notifierOut{Notifier: retrying, Producer: producer}, nil
}

type routerIn struct {
	dig.In

	Config   *config.Config
	Logger   logx.Logger
	Metrics  *metrics.Set
	Base     *handlers.Handlers
	Orders   *handlers.OrderHandler
	Matching *handlers.MatchingHandler
	Offers   *handlers.OfferHandler
	Couriers *handlers.CourierHandler
	Tokens   *auth.Tokens
	Limit    *ratelimit.Middleware `optional:"true"`
}

func provideRouter(in routerIn) http.Handler {
	return router.New(router.Deps{
		Base:           in.Base,
		Orders:         in.Orders,
		Matching:       in.Matching,
		Offers:         in.Offers,
		Couriers:       in.Couriers,
		Tokens:         in.Tokens,
		RateLimit:      in.Limit,
		HTTPMetrics:    in.Metrics.HTTP,
		MetricsHandler: metrics.Handler(prometheus.DefaultGatherer),
		Logger:         in.Logger,
	})
}

type serversOut struct {
	dig.Out

	Main  *http.Server
	Pprof *http.Server `name:"pprof_server"`
}

func provideServers(cfg *config.Config, mux http.Handler) serversOut {
	return serversOut{
		Main: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Pprof: pprofserver.New(pprofserver.Config{
			Addr: cfg.Pprof.Addr,
			User: cfg.Pprof.User,
			Pass: cfg.Pprof.Pass,
		}),
	}
}

func registerHTTP(container *dig.Container) error {
	return provideAll(container,
		handlers.New,
		func(logger logx.Logger, svc *orders.Service) *handlers.OrderHandler {
			return handlers.NewOrderHandler(logger, svc)
		},
		func(logger logx.Logger, e *matching.Engine) *handlers.MatchingHandler {
			return handlers.NewMatchingHandler(logger, e)
		},
		func(logger logx.Logger, f *offers.Feed) *handlers.OfferHandler {
			return handlers.NewOfferHandler(logger, f)
		},
		func(logger logx.Logger, svc *courier.Service) *handlers.CourierHandler {
			return handlers.NewCourierHandler(logger, svc)
		},
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		provideRouter,
		provideServers,
	)
}
