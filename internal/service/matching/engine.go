package matching

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// ResultCap is the maximum number of ranked candidates. It is fixed.
const ResultCap = 10

// Engine ranks couriers for a pickup point.
type Engine struct {
	index         GeoIndex
	quoter        Quoter
	defaultRadius float64
	timeout       time.Duration
	logger        logx.Logger
	outcomes      *prometheus.CounterVec
}

// NewEngine creates a matching Engine. outcomes may be nil.
func NewEngine(
	index GeoIndex,
	quoter Quoter,
	defaultRadiusKm float64,
	timeout time.Duration,
	logger logx.Logger,
	outcomes *prometheus.CounterVec,
) *Engine {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Engine{
		index:         index,
		quoter:        quoter,
		defaultRadius: defaultRadiusKm,
		timeout:       timeout,
		logger:        logger,
		outcomes:      outcomes,
	}
}

// DefaultRadiusKm returns the radius used by Match.
func (e *Engine) DefaultRadiusKm() float64 { return e.defaultRadius }

// Match ranks couriers around pickup within the default radius.
func (e *Engine) Match(ctx context.Context, pickup domain.Point) (domain.MatchResult, error) {
	return e.MatchWithin(ctx, pickup, e.defaultRadius)
}

// MatchWithin ranks couriers around pickup within radiusKm.
// An empty area yields *apperr.NoCourierAvailableError.
func (e *Engine) MatchWithin(ctx context.Context, pickup domain.Point, radiusKm float64) (domain.MatchResult, error) {
	if !pickup.Valid() {
		return domain.MatchResult{}, fmt.Errorf("%w: pickup coordinates out of range", apperr.ErrInvalid)
	}
	if radiusKm < 0 || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return domain.MatchResult{}, fmt.Errorf("%w: radius %v", apperr.ErrInvalid, radiusKm)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	found, err := e.index.FindNear(ctx, pickup, radiusKm)
	if err != nil {
		e.observe("error")
		return domain.MatchResult{}, fmt.Errorf("find near: %w", err)
	}

	ranked := Rank(found)
	if len(ranked) == 0 {
		e.observe("empty")
		e.logger.Info("no courier in range",
			logx.String("event", "match_empty"),
			logx.Float64("lat", pickup.Lat),
			logx.Float64("lng", pickup.Lng),
			logx.Float64("radius_km", radiusKm),
		)
		return domain.MatchResult{}, &apperr.NoCourierAvailableError{RadiusKm: radiusKm}
	}

	price, err := e.quoter.Quote(ranked[0].DistanceKm)
	if err != nil {
		e.observe("error")
		return domain.MatchResult{}, err
	}

	e.observe("matched")
	e.logger.Debug("couriers matched",
		logx.String("event", "match_found"),
		logx.Int("candidates", len(ranked)),
		logx.Int64("best_courier_id", ranked[0].Courier.ID),
		logx.Float64("best_distance_km", ranked[0].DistanceKm),
	)

	return domain.MatchResult{
		Candidates: ranked,
		Price:      price,
		RadiusKm:   radiusKm,
	}, nil
}

func (e *Engine) observe(result string) {
	if e.outcomes != nil {
		e.outcomes.WithLabelValues(result).Inc()
	}
}

// Rank orders candidates by distance, then rating and experience, and caps the list.
func Rank(in []domain.Candidate) []domain.Candidate {
	out := make([]domain.Candidate, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		if a.Courier.Rating != b.Courier.Rating {
			return a.Courier.Rating > b.Courier.Rating
		}
		if a.Courier.CompletedDeliveries != b.Courier.CompletedDeliveries {
			return a.Courier.CompletedDeliveries > b.Courier.CompletedDeliveries
		}
		return a.Courier.ID < b.Courier.ID
	})
	if len(out) > ResultCap {
		out = out[:ResultCap]
	}
	return out
}
