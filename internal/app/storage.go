package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
	"courier-dispatch/internal/geo/redisgeo"
	"courier-dispatch/internal/jobs"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/repository"
	"courier-dispatch/internal/repository/memory"
	"courier-dispatch/internal/service/courier"
	"courier-dispatch/internal/service/matching"
	"courier-dispatch/internal/service/offers"
	"courier-dispatch/internal/service/orders"
)

type orderStore interface {
	orders.Store
	offers.Source
	jobs.RejectionPruner
}

type courierStore interface {
	Get(ctx context.Context, id int64) (*domain.Courier, error)
	ApplyLocation(ctx context.Context, u domain.LocationUpdate) (domain.Courier, error)
	SetAvailability(ctx context.Context, id int64, available bool) (bool, error)
	IncrementCompleted(ctx context.Context, id int64) error
	ListAvailable(ctx context.Context) ([]domain.Courier, error)
}

// storage is the selected persistence backend. Pool is nil for memory.
type storage struct {
	Orders   orderStore
	Couriers courierStore
	Pool     *pgxpool.Pool
}

func (s *storage) Close() {
	if s != nil && s.Pool != nil {
		s.Pool.Close()
	}
}

func newStorageProvider(connect dbConnectFunc) func(context.Context, *config.Config, logx.Logger) (*storage, error) {
	return func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*storage, error) {
		if cfg.Storage.Backend == config.StorageMemory {
			logger.Warn("using in-memory storage, state is lost on restart")
			return &storage{Orders: memory.NewStore(), Couriers: geo.NewMemoryIndex()}, nil
		}

		pool, err := connect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &storage{
			Orders:   repository.NewOrderRepo(pool),
			Couriers: repository.NewCourierRepo(pool),
			Pool:     pool,
		}, nil
	}
}

// provideRedis returns nil when Redis is not configured.
func provideRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled() {
		return nil, nil
	}
	return redisgeo.NewClient(ctx, redisgeo.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// provideMirror feeds the Redis GEO set from courier updates when Redis is on.
func provideMirror(rdb *redis.Client) courier.Mirror {
	if rdb == nil {
		return nil
	}
	return redisgeo.NewIndex(rdb)
}

func provideGeoIndex(cfg *config.Config, st *storage, rdb *redis.Client) (matching.GeoIndex, error) {
	if cfg.Matching.GeoBackend == config.GeoRedis {
		if rdb == nil {
			return nil, fmt.Errorf("geo backend redis: redis is not configured")
		}
		return redisgeo.NewIndex(rdb), nil
	}
	if idx, ok := st.Couriers.(geo.Index); ok {
		return idx, nil
	}
	return geo.NewSnapshotIndex(st.Couriers), nil
}
