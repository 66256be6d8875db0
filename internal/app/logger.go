package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/logx"
)

// NewLogger builds the service logger: JSON slog by default, zap when
// LOG_DRIVER=zap.
func NewLogger(cfg *config.Config) (logx.Logger, error) {
	level := strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if level == "" {
		level = "info"
	}
	switch strings.ToLower(cfg.Log.Driver) {
	case "", "slog":
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
		base := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
		return logx.NewSlogAdapter(base), nil
	case "zap":
		zcfg := zap.NewProductionConfig()
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
		zl, err := zcfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build zap logger: %w", err)
		}
		return logx.NewZapAdapter(zl), nil
	default:
		return nil, fmt.Errorf("unknown log driver %q", cfg.Log.Driver)
	}
}
