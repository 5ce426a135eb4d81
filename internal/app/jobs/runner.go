// Package jobs schedules the recurring liquidity work: the invitation expiry
// sweep and the niche admission pass. The two jobs are deliberately
// independent; the sweep is registered and run first so a slot freed by an
// expired invitation is visible to the admission pass of the same cycle.
package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/carelinkhq/carelink/internal/services"
	"github.com/carelinkhq/carelink/pkg/logger"
)

const (
	defaultSweepSpec     = "@daily"
	defaultAdmissionSpec = "@daily"
)

// Runner coordinates the background liquidity jobs.
type Runner struct {
	admissions *services.AdmissionService
	cron       *cron.Cron
	log        *zap.Logger

	sweepSchedule     string
	admissionSchedule string
}

// Option customises the Runner.
type Option func(*Runner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(runner *Runner) {
		if c != nil {
			runner.cron = c
		}
	}
}

// WithSweepSchedule overrides the cron specification for the expiry sweep.
func WithSweepSchedule(spec string) Option {
	return func(runner *Runner) {
		if spec != "" {
			runner.sweepSchedule = spec
		}
	}
}

// WithAdmissionSchedule overrides the cron specification for the admission pass.
func WithAdmissionSchedule(spec string) Option {
	return func(runner *Runner) {
		if spec != "" {
			runner.admissionSchedule = spec
		}
	}
}

// NewRunner constructs a Runner with daily defaults.
func NewRunner(admissions *services.AdmissionService, opts ...Option) *Runner {
	runner := &Runner{
		admissions:        admissions,
		sweepSchedule:     defaultSweepSpec,
		admissionSchedule: defaultAdmissionSpec,
		log:               logger.WithModule("jobs"),
	}

	for _, opt := range opts {
		opt(runner)
	}

	if runner.cron == nil {
		runner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return runner
}

// Start registers both jobs with the cron scheduler and launches it.
func (r *Runner) Start() error {
	if r.admissions == nil {
		return nil
	}

	if _, err := r.cron.AddFunc(r.sweepSchedule, func() {
		ctx := context.Background()
		if _, err := r.admissions.RunExpirySweep(ctx); err != nil {
			r.log.Warn("expiry sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	if _, err := r.cron.AddFunc(r.admissionSchedule, func() {
		ctx := context.Background()
		if _, err := r.admissions.RunAdmissionPass(ctx); err != nil {
			r.log.Warn("admission pass failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	r.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (r *Runner) Stop() context.Context {
	if r.cron == nil {
		return context.Background()
	}
	return r.cron.Stop()
}

// RunOnce executes the sweep followed by the admission pass. Used for the
// on-demand trigger and during tests.
func (r *Runner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.admissions == nil {
		return nil
	}

	var errs error

	if _, err := r.admissions.RunExpirySweep(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}

	if _, err := r.admissions.RunAdmissionPass(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}

	return errs
}
