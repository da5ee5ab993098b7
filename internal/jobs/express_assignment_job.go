package jobs

import (
	"context"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ExpressAssignmentHandler is satisfied by commands.AssignPendingExpressCommandHandler.
type ExpressAssignmentHandler interface {
	Handle(ctx context.Context, cmd commands.AssignPendingExpressCommand) (int, error)
}

// ExpressAssignmentJob periodically hands waiting express orders to the
// matcher.
type ExpressAssignmentJob struct {
	handler   ExpressAssignmentHandler
	schedule  string
	batchSize int
	cron      *cron.Cron
	logger    *zap.SugaredLogger
}

func NewExpressAssignmentJob(handler ExpressAssignmentHandler, schedule string, batchSize int, logger *zap.SugaredLogger) *ExpressAssignmentJob {
	return &ExpressAssignmentJob{
		handler:   handler,
		schedule:  schedule,
		batchSize: batchSize,
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With("component", "express_assignment_job"),
	}
}

// Start registers the run on the schedule and starts the scheduler.
func (j *ExpressAssignmentJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Infow("job_started", "schedule", j.schedule)
	return nil
}

func (j *ExpressAssignmentJob) run() {
	assigned, err := j.handler.Handle(context.Background(), commands.NewAssignPendingExpressCommand(j.batchSize))
	if err != nil {
		j.logger.Errorw("express_assignment_failed", "error", err)
		return
	}
	if assigned > 0 {
		j.logger.Infow("express_orders_assigned", "count", assigned)
	}
}

// Stop waits for a running pass to finish.
func (j *ExpressAssignmentJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Infow("job_stopped")
}
