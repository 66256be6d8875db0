package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// Budget is a refill rate in tokens per second and a bucket capacity.
type Budget struct {
	Rate  float64
	Burst int
}

func (b Budget) normalized() Budget {
	if b.Rate <= 0 {
		b.Rate = 1
	}
	if b.Burst <= 0 {
		b.Burst = 1
	}
	return b
}

// Config stores TokenBucketLimiter settings.
type Config struct {
	Rate  float64 // default tokens per second
	Burst int     // default capacity
	// Classes overrides the default budget for keys shaped "<class>:<id>",
	// e.g. "courier" for couriers polling offers and pushing locations.
	Classes    map[string]Budget
	TTL        time.Duration // idle buckets are dropped after TTL (0 keeps them)
	MaxBuckets int           // new keys are refused once reached (0 = unbounded)
}

// TokenBucketLimiter keeps one token bucket per caller key.
type TokenBucketLimiter struct {
	def        Budget
	classes    map[string]Budget
	ttl        time.Duration
	maxBuckets int
	clock      Clock

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	budget Budget
	tokens float64
	last   time.Time
}

// NewTokenBucketLimiter creates a limiter with an injected clock.
func NewTokenBucketLimiter(clock Clock, cfg Config) *TokenBucketLimiter {
	if clock == nil {
		clock = RealClock{}
	}
	classes := make(map[string]Budget, len(cfg.Classes))
	for name, b := range cfg.Classes {
		classes[name] = b.normalized()
	}
	maxBuckets := cfg.MaxBuckets
	if maxBuckets < 0 {
		maxBuckets = 0
	}
	return &TokenBucketLimiter{
		def:        Budget{Rate: cfg.Rate, Burst: cfg.Burst}.normalized(),
		classes:    classes,
		ttl:        cfg.TTL,
		maxBuckets: maxBuckets,
		clock:      clock,
		buckets:    make(map[string]*bucket),
	}
}

// Allow takes one token from key's bucket.
func (l *TokenBucketLimiter) Allow(key string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked(now)
	b, ok := l.buckets[key]
	if !ok {
		if l.maxBuckets > 0 && len(l.buckets) >= l.maxBuckets {
			return false
		}
		budget := l.budgetFor(key)
		b = &bucket{budget: budget, tokens: float64(budget.Burst), last: now}
		l.buckets[key] = b
	}
	return b.take(now)
}

func (l *TokenBucketLimiter) budgetFor(key string) Budget {
	if class, _, found := strings.Cut(key, ":"); found {
		if b, ok := l.classes[class]; ok {
			return b
		}
	}
	return l.def
}

func (b *bucket) take(now time.Time) bool {
	if dt := now.Sub(b.last); dt > 0 {
		b.tokens = min(b.tokens+dt.Seconds()*b.budget.Rate, float64(b.budget.Burst))
		b.last = now
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweepLocked drops buckets idle for longer than ttl, at most once per
// max(ttl/2, 1m). A bucket idle that long is full again anyway.
func (l *TokenBucketLimiter) sweepLocked(now time.Time) {
	if l.ttl <= 0 {
		return
	}
	interval := max(l.ttl/2, time.Minute)
	if !l.lastSweep.IsZero() && now.Sub(l.lastSweep) < interval {
		return
	}
	l.lastSweep = now
	for k, b := range l.buckets {
		if now.Sub(b.last) > l.ttl {
			delete(l.buckets, k)
		}
	}
}
