package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

type Job func(ctx context.Context) error

// Runner executes jobs on cron schedules while its worker is running.
type Runner struct {
	cron *cron.Cron
	jobs []scheduled
}

type scheduled struct {
	name string
	spec string
	job  Job
}

func NewRunner() *Runner {
	return &Runner{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Add validates the spec, jobs are registered once Start is called
func (r *Runner) Add(name, spec string, job Job) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("parse spec %q for %s: %w", spec, name, err)
	}

	r.jobs = append(r.jobs, scheduled{name: name, spec: spec, job: job})

	return nil
}

func (r *Runner) Start(ctx context.Context) error {
	for _, s := range r.jobs {
		if _, err := r.cron.AddFunc(s.spec, r.wrap(ctx, s)); err != nil {
			return fmt.Errorf("schedule %s: %w", s.name, err)
		}
	}

	r.cron.Start()
	log.Info().Int("jobs", len(r.jobs)).Msg("cron started")

	<-ctx.Done()

	<-r.cron.Stop().Done()
	log.Info().Msg("cron stopped")

	return nil
}

func (r *Runner) wrap(ctx context.Context, s scheduled) func() {
	return func() {
		if err := s.job(ctx); err != nil {
			log.Error().Err(err).Str("job", s.name).Msg("cron job failed")
		}
	}
}
