// Package optimizer runs every resume agent over the same inputs and collects
// their replies into one result mapping.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-optimizer/internal/agents"
)

// ErrEmptyResume is returned before any agent runs when there is no resume text.
var ErrEmptyResume = errors.New("resume text is required")

// Runner is one agent step.
type Runner interface {
	Name() string
	Run(ctx context.Context, in agents.Input) (agents.Result, error)
}

// Results maps agent names to their replies.
type Results map[string]agents.Result

// Options control how the agents are dispatched.
type Options struct {
	// Parallel dispatches all agents at once. The first failure cancels the rest.
	Parallel bool
}

type Optimizer struct {
	steps   []Runner
	options Options
	logger  *zap.Logger
}

func New(steps []Runner, options Options, logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Optimizer{
		steps:   steps,
		options: options,
		logger:  logger,
	}
}

// FromAgents adapts the concrete agents to runners, keeping their order.
func FromAgents(all []*agents.Agent) []Runner {
	steps := make([]Runner, 0, len(all))
	for _, agent := range all {
		steps = append(steps, agent)
	}
	return steps
}

// Names returns the agent names in dispatch order.
func (o *Optimizer) Names() []string {
	names := make([]string, 0, len(o.steps))
	for _, step := range o.steps {
		names = append(names, step.Name())
	}
	return names
}

// Optimize runs every agent on the same resume and job description. Any agent
// failure aborts the run and is returned unchanged; no partial result is produced.
func (o *Optimizer) Optimize(ctx context.Context, resumeText, jobDescription string) (Results, error) {
	in := agents.NewInput(resumeText, jobDescription)
	if in.Resume == "" {
		return nil, ErrEmptyResume
	}

	if in.JobDescription == "" {
		o.logger.Info("no job description provided, agents will work from the resume alone")
	}

	started := time.Now()

	var (
		results Results
		err     error
	)
	if o.options.Parallel {
		results, err = o.runParallel(ctx, in)
	} else {
		results, err = o.runSequential(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	o.logger.Info("optimization completed",
		zap.Int("agents", len(results)),
		zap.Duration("took", time.Since(started)),
		zap.Bool("parallel", o.options.Parallel),
	)

	return results, nil
}

func (o *Optimizer) runSequential(ctx context.Context, in agents.Input) (Results, error) {
	results := make(Results, len(o.steps))
	for _, step := range o.steps {
		result, err := o.runStep(ctx, step, in)
		if err != nil {
			return nil, err
		}
		results[step.Name()] = result
	}
	return results, nil
}

func (o *Optimizer) runParallel(ctx context.Context, in agents.Input) (Results, error) {
	g, gCtx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	results := make(Results, len(o.steps))

	for _, step := range o.steps {
		g.Go(func() error {
			result, err := o.runStep(gCtx, step, in)
			if err != nil {
				return err
			}

			mu.Lock()
			results[step.Name()] = result
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (o *Optimizer) runStep(ctx context.Context, step Runner, in agents.Input) (agents.Result, error) {
	if err := ctx.Err(); err != nil {
		return agents.Result{}, fmt.Errorf("%s: %w", step.Name(), err)
	}

	o.logger.Info("running agent", zap.String("agent", step.Name()))

	started := time.Now()
	result, err := step.Run(ctx, in)
	if err != nil {
		o.logger.Error("agent failed", zap.String("agent", step.Name()), zap.Error(err))
		return agents.Result{}, err
	}

	fields := []zap.Field{
		zap.String("agent", step.Name()),
		zap.Duration("took", time.Since(started)),
		zap.Bool("structured", result.Structured()),
	}
	if score, ok := result.Score(); ok {
		fields = append(fields, zap.Float64("score", score))
	}
	o.logger.Info("agent step", fields...)

	return result, nil
}
