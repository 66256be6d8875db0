package app

import (
	"context"
	"fmt"

	"go.uber.org/dig"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/jobs"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/service/courier"
	"courier-dispatch/internal/transport/kafka"
)

// MustBuildWorkerContainer builds the worker container.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

// MustBuildWorker builds the worker container: location consumer and
// rejection pruning.
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerStorage(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		provideCourierService,
		provideLocationConsumer,
		providePruneJob,
	)
}

func provideLocationConsumer(cfg *config.Config, logger logx.Logger, svc *courier.Service) (*kafka.Consumer, error) {
	return kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.LocationsTopic, makeLocationsKafka(svc))
}

func providePruneJob(cfg *config.Config, st *storage, logger logx.Logger) (*jobs.PruneRejectionsJob, error) {
	if cfg.Storage.Backend == config.StorageMemory {
		return nil, fmt.Errorf("worker needs shared storage, got %q backend", cfg.Storage.Backend)
	}
	return jobs.NewPruneRejectionsJob(st.Orders, cfg.Orders.RejectionCooldown, cfg.Cleanup.Schedule, logger), nil
}
