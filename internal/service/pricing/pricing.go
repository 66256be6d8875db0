package pricing

import (
	"fmt"
	"math"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// Config holds the quote constants.
type Config struct {
	BasePrice      float64
	PricePerKm     float64
	DeliveryFee    float64
	CommissionRate float64
}

// DefaultConfig returns the standard tariff.
func DefaultConfig() Config {
	return Config{
		BasePrice:      10000,
		PricePerKm:     2000,
		DeliveryFee:    5000,
		CommissionRate: 0.20,
	}
}

// currencyScale is 10^decimals of the declared currency precision.
const currencyScale = 100

// Engine maps a distance to a price breakdown. It is pure and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine returns an Engine with cfg.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Quote prices a trip of distanceKm.
func (e *Engine) Quote(distanceKm float64) (domain.PriceBreakdown, error) {
	if distanceKm < 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return domain.PriceBreakdown{}, fmt.Errorf("%w: %v km", apperr.ErrInvalidDistance, distanceKm)
	}

	total := round(e.cfg.BasePrice + distanceKm*e.cfg.PricePerKm + e.cfg.DeliveryFee)
	commission := round(total * e.cfg.CommissionRate)

	return domain.PriceBreakdown{
		BasePrice:          e.cfg.BasePrice,
		DistanceKm:         distanceKm,
		PricePerKm:         e.cfg.PricePerKm,
		DeliveryFee:        e.cfg.DeliveryFee,
		TotalPrice:         total,
		PlatformCommission: commission,
		CourierPayout:      round(total - commission),
	}, nil
}

func round(v float64) float64 {
	return math.Round(v*currencyScale) / currencyScale
}
