package notify

import (
	"context"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// LogNotifier writes offers to the log. It is used when no broker is configured.
type LogNotifier struct {
	logger logx.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger logx.Logger) *LogNotifier {
	if logger == nil {
		logger = logx.Nop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs n and never fails.
func (l *LogNotifier) Notify(_ context.Context, n domain.OfferNotice) error {
	l.logger.Info("offer notification",
		logx.String("event_id", n.EventID),
		logx.Int64("order_id", n.OrderID),
		logx.Int64("courier_id", n.CourierID),
		logx.Int("rank", n.Rank),
		logx.Float64("distance_km", n.DistanceKm),
	)
	return nil
}
