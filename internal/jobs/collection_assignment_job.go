package jobs

import (
	"context"
	"errors"

	"labdesk/internal/core/application/usecases/commands"
	"labdesk/internal/core/domain/services"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// AutoAssigner runs one auto-assignment pass.
type AutoAssigner interface {
	Handle(ctx context.Context, cmd commands.AutoAssignCollectorsCommand) (commands.AutoAssignCollectorsResult, error)
}

// CollectionAssignmentJob hands scheduled home collections to available collectors.
type CollectionAssignmentJob struct {
	handler  AutoAssigner
	schedule string
	limit    int
	cron     *cron.Cron
	logger   zerolog.Logger
}

// NewCollectionAssignmentJob creates the job.
//
// Parameters:
//   - handler: the auto-assignment use case
//   - schedule: six-field cron expression (seconds first)
//   - limit: maximum orders considered per pass
func NewCollectionAssignmentJob(handler AutoAssigner, schedule string, limit int, logger zerolog.Logger) *CollectionAssignmentJob {
	return &CollectionAssignmentJob{
		handler:  handler,
		schedule: schedule,
		limit:    limit,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With().Str("component", "collection_assignment_job").Logger(),
	}
}

// Start schedules the job.
func (j *CollectionAssignmentJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info().Str("schedule", j.schedule).Int("limit", j.limit).Msg("collection assignment job started")
	return nil
}

// Run executes one pass. An empty queue and an empty roster are expected and only
// logged at debug level.
func (j *CollectionAssignmentJob) Run(ctx context.Context) {
	cmd, err := commands.NewAutoAssignCollectorsCommand(j.limit)
	if err != nil {
		j.logger.Error().Err(err).Msg("invalid auto-assignment command")
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	switch {
	case errors.Is(err, commands.ErrNoScheduledCollections), errors.Is(err, services.ErrNoAvailableCollector):
		j.logger.Debug().Err(err).Int("assigned", result.Assigned).Msg("nothing to assign")
	case err != nil:
		j.logger.Error().Err(err).Msg("collection assignment job failed")
	case result.Assigned > 0 || result.Skipped > 0:
		j.logger.Info().Int("assigned", result.Assigned).Int("skipped", result.Skipped).Msg("collections assigned")
	}
}

// Stop stops the scheduler and waits for a running pass to finish.
func (j *CollectionAssignmentJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info().Msg("collection assignment job stopped")
}
