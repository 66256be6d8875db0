package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewNotifierRetriesTotal returns a counter of offer notification retries.
func NewNotifierRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "offer_notifier_retries_total",
		Help: "Total number of retry attempts performed by the offer notifier",
	})
}

// NewMatchOutcomes counts matching runs by result (matched, empty, error).
func NewMatchOutcomes() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_runs_total",
		Help: "Matching runs by outcome",
	}, []string{"result"})
}

// NewOrderClaims counts claim attempts by result (won, lost, not_found, error).
func NewOrderClaims() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_claims_total",
		Help: "Order claim attempts by outcome",
	}, []string{"result"})
}

// HTTP holds request metrics labelled by method, route pattern and status.
type HTTP struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTP creates unregistered HTTP metrics.
func NewHTTP() *HTTP {
	labels := []string{"method", "path", "status"}
	return &HTTP{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, labels),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, labels),
	}
}

// Set is every collector the service exports.
type Set struct {
	RateLimitExceededTotal prometheus.Counter
	NotifierRetriesTotal   prometheus.Counter
	MatchOutcomes          *prometheus.CounterVec
	OrderClaims            *prometheus.CounterVec
	HTTP                   *HTTP
}

// Register creates the collectors and registers them with reg. Collectors
// that are already registered are reused, so building twice in one process
// is safe.
func Register(reg prometheus.Registerer) (*Set, error) {
	var (
		s   = &Set{HTTP: &HTTP{}}
		err error
	)
	if s.RateLimitExceededTotal, err = register(reg, "rate_limit_exceeded_total", NewRateLimitExceededTotal()); err != nil {
		return nil, err
	}
	if s.NotifierRetriesTotal, err = register(reg, "offer_notifier_retries_total", NewNotifierRetriesTotal()); err != nil {
		return nil, err
	}
	if s.MatchOutcomes, err = register(reg, "matching_runs_total", NewMatchOutcomes()); err != nil {
		return nil, err
	}
	if s.OrderClaims, err = register(reg, "order_claims_total", NewOrderClaims()); err != nil {
		return nil, err
	}
	h := NewHTTP()
	if s.HTTP.Requests, err = register(reg, "http_requests_total", h.Requests); err != nil {
		return nil, err
	}
	if s.HTTP.Duration, err = register(reg, "http_request_duration_seconds", h.Duration); err != nil {
		return nil, err
	}
	return s, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, name string, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register %s: %w", name, err)
	}
	return c, nil
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
