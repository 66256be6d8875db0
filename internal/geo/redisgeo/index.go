package redisgeo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
)

const (
	geoKey        = "couriers:available"
	courierPrefix = "courier:"
	// Redis uses a slightly larger Earth radius; search a bit wider and
	// re-filter with geo.DistanceKm so every backend agrees on the boundary.
	searchSlack = 1.01
)

// Config stores Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient creates a Redis client and pings it.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Index is a geo.Index kept in a Redis GEO set.
// Only available couriers are members of the set; attributes live in a hash per courier.
type Index struct {
	rdb redis.UniversalClient
}

// NewIndex returns an Index over rdb.
func NewIndex(rdb redis.UniversalClient) *Index {
	return &Index{rdb: rdb}
}

func courierKey(id int64) string { return courierPrefix + strconv.FormatInt(id, 10) }

// Put mirrors a courier record.
func (i *Index) Put(ctx context.Context, c domain.Courier) error {
	member := strconv.FormatInt(c.ID, 10)
	pipe := i.rdb.TxPipeline()
	pipe.HSet(ctx, courierKey(c.ID), map[string]any{
		"rating":     strconv.FormatFloat(c.Rating, 'f', -1, 64),
		"completed":  strconv.FormatInt(c.CompletedDeliveries, 10),
		"available":  strconv.FormatBool(c.Available),
		"updated_at": c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if c.Available {
		pipe.GeoAdd(ctx, geoKey, &redis.GeoLocation{
			Name:      member,
			Longitude: c.Location.Lng,
			Latitude:  c.Location.Lat,
		})
	} else {
		pipe.ZRem(ctx, geoKey, member)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put courier %d: %w", c.ID, err)
	}
	return nil
}

// FindNear implements geo.Index.
func (i *Index) FindNear(ctx context.Context, p domain.Point, radiusKm float64) ([]domain.Candidate, error) {
	locs, err := i.rdb.GeoSearchLocation(ctx, geoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     radiusKm*searchSlack + 0.001,
			RadiusUnit: "km",
		},
		WithCoord: true,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis geosearch: %w", err)
	}
	if len(locs) == 0 {
		return []domain.Candidate{}, nil
	}

	pipe := i.rdb.Pipeline()
	attrs := make([]*redis.MapStringStringCmd, len(locs))
	for n, l := range locs {
		attrs[n] = pipe.HGetAll(ctx, courierPrefix+l.Name)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis courier attrs: %w", err)
	}

	couriers := make([]domain.Courier, 0, len(locs))
	for n, l := range locs {
		id, err := strconv.ParseInt(l.Name, 10, 64)
		if err != nil {
			continue
		}
		c := domain.Courier{
			ID:        id,
			Location:  domain.Point{Lat: l.Latitude, Lng: l.Longitude},
			Available: true,
		}
		decodeAttrs(attrs[n].Val(), &c)
		couriers = append(couriers, c)
	}
	return geo.Within(couriers, p, radiusKm), nil
}

func decodeAttrs(m map[string]string, c *domain.Courier) {
	if v, err := strconv.ParseFloat(m["rating"], 64); err == nil {
		c.Rating = v
	}
	if v, err := strconv.ParseInt(m["completed"], 10, 64); err == nil {
		c.CompletedDeliveries = v
	}
	if v, err := strconv.ParseBool(m["available"]); err == nil {
		c.Available = v
	}
	if v, err := time.Parse(time.RFC3339Nano, m["updated_at"]); err == nil {
		c.UpdatedAt = v
	}
}
