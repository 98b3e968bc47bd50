package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/topwords/internal/model"
)

// ErrHalt stops the pipeline without another error log.
// Steps wrap it when they have already logged why they failed.
var ErrHalt = errors.New("pipeline halted")

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the run
// filled in by previous steps.
type Step interface {
	// Do executes the pipeline step.
	Do(ctx context.Context, run *model.Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. ErrHalt always stops the pipeline.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// Cancellation is checked before each step. The first error is recorded
// in run and returned. Failures are logged once at ERROR level unless
// the step returned ErrHalt.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", err,
			)
			p.fail(run, err)
			return err
		}

		p.logger.Debug("executing step", "step", step.Name())

		start := time.Now()
		if err := step.Do(ctx, run); err != nil {
			halted := errors.Is(err, ErrHalt)
			if !halted {
				p.logger.Error("step failed",
					"step", step.Name(),
					"error", err,
				)
			}
			p.fail(run, err)

			if halted || !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"elapsed", time.Since(start),
		)
		run.PerformedSteps = append(run.PerformedSteps, step.Name())
	}

	if run.Error != nil {
		return run.Error
	}
	return nil
}

func (p *Pipeline) fail(run *model.Run, err error) {
	if run.Error == nil {
		run.Error = err
		run.ErrorMessage = err.Error()
	}
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
