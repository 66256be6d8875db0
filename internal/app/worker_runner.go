package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"courier-dispatch/internal/jobs"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/transport/kafka"
)

// WorkerRunner runs the background worker.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun runs the worker until its context is cancelled.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

type workerIn struct {
	dig.In

	Ctx      context.Context
	Logger   logx.Logger
	Storage  *storage
	Consumer *kafka.Consumer `optional:"true"`
	Prune    *jobs.PruneRejectionsJob
	Redis    *redis.Client `optional:"true"`
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

type pruneJob interface {
	Start() error
	Stop()
}

func workerRun(in workerIn) error {
	defer closeWorker(in)
	var prune pruneJob
	if in.Prune != nil {
		prune = in.Prune
	}
	return runWorkerLoop(in.Ctx, in.Logger, in.Consumer, prune)
}

func runWorkerLoop(ctx context.Context, logger logx.Logger, consumer *kafka.Consumer, prune pruneJob) error {
	if prune == nil {
		return fmt.Errorf("prune job is nil: worker container misconfigured")
	}
	if err := prune.Start(); err != nil {
		return fmt.Errorf("start prune job: %w", err)
	}
	defer prune.Stop()

	logger.Info("service-dispatch-worker started")
	if consumer == nil {
		logger.Warn("kafka is not configured, location consumer disabled")
		<-ctx.Done()
		return ctx.Err()
	}
	return consumer.Run(ctx)
}

func closeWorker(in workerIn) {
	if in.Consumer != nil {
		if err := in.Consumer.Close(); err != nil {
			in.Logger.Error("kafka close error", logx.Err(err))
		}
	}
	if in.Redis != nil {
		if err := in.Redis.Close(); err != nil {
			in.Logger.Error("redis close error", logx.Err(err))
		}
	}
	in.Storage.Close()
}
