package jobs

import (
	"context"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PresenceExpiryHandler is satisfied by commands.ExpireStalePresenceCommandHandler.
type PresenceExpiryHandler interface {
	Handle(ctx context.Context, cmd commands.ExpireStalePresenceCommand) (int, error)
}

// PresenceExpiryJob takes couriers offline when their app stops reporting.
type PresenceExpiryJob struct {
	handler    PresenceExpiryHandler
	schedule   string
	maxSilence time.Duration
	batchSize  int
	cron       *cron.Cron
	logger     *zap.SugaredLogger
}

func NewPresenceExpiryJob(
	handler PresenceExpiryHandler,
	schedule string,
	maxSilence time.Duration,
	batchSize int,
	logger *zap.SugaredLogger,
) *PresenceExpiryJob {
	return &PresenceExpiryJob{
		handler:    handler,
		schedule:   schedule,
		maxSilence: maxSilence,
		batchSize:  batchSize,
		cron:       cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:     logger.With("component", "presence_expiry_job"),
	}
}

func (j *PresenceExpiryJob) Start() error {
	// Reject a bad silence window before anything is scheduled.
	if _, err := commands.NewExpireStalePresenceCommand(j.maxSilence, j.batchSize); err != nil {
		return err
	}
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Infow("job_started", "schedule", j.schedule, "max_silence", j.maxSilence.String())
	return nil
}

func (j *PresenceExpiryJob) run() {
	cmd, err := commands.NewExpireStalePresenceCommand(j.maxSilence, j.batchSize)
	if err != nil {
		j.logger.Errorw("presence_expiry_failed", "error", err)
		return
	}
	if _, err = j.handler.Handle(context.Background(), cmd); err != nil {
		j.logger.Errorw("presence_expiry_failed", "error", err)
	}
}

func (j *PresenceExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Infow("job_stopped")
}
