package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Step is one stage of a multi-step workflow against external state.
// Undo reverses a completed Run and may be nil for steps with nothing to
// reverse.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

// Runner executes a workflow's steps. The workflow services take a Runner
// so the consistency model can be swapped without touching the steps.
type Runner interface {
	Run(ctx context.Context, steps []Step) error
}

// SequentialRunner runs steps in order and stops at the first failure,
// leaving earlier steps in place. This matches the upstream behavior:
// no retries, no compensation, partially-created state on failure.
type SequentialRunner struct{}

func (SequentialRunner) Run(ctx context.Context, steps []Step) error {
	for _, step := range steps {
		if err := step.Run(ctx); err != nil {
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	return nil
}

// CompensatingRunner runs steps in order and, on failure, undoes the
// already-completed steps in reverse order. Undo failures are logged and
// do not mask the original error.
type CompensatingRunner struct{}

func (CompensatingRunner) Run(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		err := step.Run(ctx)
		if err == nil {
			continue
		}

		for j := i - 1; j >= 0; j-- {
			if steps[j].Undo == nil {
				continue
			}
			if undoErr := steps[j].Undo(ctx); undoErr != nil {
				log.Error().Err(undoErr).Str("step", steps[j].Name).Msg("Failed to undo workflow step")
			}
		}
		return fmt.Errorf("%s: %w", step.Name, err)
	}
	return nil
}
