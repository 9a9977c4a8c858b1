// Package scheduler runs recurring background jobs on cron expressions.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a named unit of recurring work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// Register schedules a job. The spec accepts standard cron expressions and
// the @every / @daily shorthands.
func (s *Scheduler) Register(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		log := s.logger.With().Str("job", job.Name()).Logger()
		log.Info().Msg("job started")
		if err := job.Run(context.Background()); err != nil {
			log.Error().Err(err).Msg("job failed")
			return
		}
		log.Info().Msg("job finished")
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("job", job.Name()).Str("spec", spec).Msg("job registered")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
