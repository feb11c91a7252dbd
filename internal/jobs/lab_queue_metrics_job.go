package jobs

import (
	"context"

	"labdesk/internal/core/application/usecases/queries"
	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/core/domain/model/order"
	"labdesk/internal/core/domain/services"
	"labdesk/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Worklister reads the lab queue.
type Worklister interface {
	Handle(ctx context.Context, query queries.GetLabWorklistQuery) ([]services.LabQueueItem, error)
}

// LabQueueMetricsJob publishes the lab queue depth per priority as a gauge.
type LabQueueMetricsJob struct {
	worklist Worklister
	metrics  *metrics.Metrics
	schedule string
	cron     *cron.Cron
	logger   zerolog.Logger
}

func NewLabQueueMetricsJob(worklist Worklister, m *metrics.Metrics, schedule string, logger zerolog.Logger) *LabQueueMetricsJob {
	return &LabQueueMetricsJob{
		worklist: worklist,
		metrics:  m,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With().Str("component", "lab_queue_metrics_job").Logger(),
	}
}

func (j *LabQueueMetricsJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info().Str("schedule", j.schedule).Msg("lab queue metrics job started")
	return nil
}

// Run samples the queue once. Every priority is reported, including empty ones, so a
// drained queue shows as zero rather than a stale value.
func (j *LabQueueMetricsJob) Run(ctx context.Context) {
	query, err := queries.NewGetLabWorklistQuery(kernel.UnknownPriority, order.UnknownProcessingState)
	if err != nil {
		j.logger.Error().Err(err).Msg("invalid worklist query")
		return
	}
	items, err := j.worklist.Handle(ctx, query)
	if err != nil {
		j.logger.Error().Err(err).Msg("lab queue sampling failed")
		return
	}

	depth := map[string]int{
		kernel.Normal.String():   0,
		kernel.Urgent.String():   0,
		kernel.Critical.String(): 0,
	}
	for _, item := range items {
		depth[item.Priority.String()]++
	}
	j.metrics.SetLabQueueDepth(depth)
}

func (j *LabQueueMetricsJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info().Msg("lab queue metrics job stopped")
}
