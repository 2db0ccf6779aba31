package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-interpret-api/internal/observability"
)

type sagaAction func(ctx context.Context) error

type sagaStep struct {
	name       string
	compensate sagaAction
}

// saga runs steps in order and remembers how to undo each completed one.
type saga struct {
	name      string
	completed []sagaStep
	logger    zerolog.Logger
}

func newSaga(name string, logger zerolog.Logger) *saga {
	return &saga{
		name:   name,
		logger: logger.With().Str("saga", name).Logger(),
	}
}

// Run executes action and, on success, records compensate for a later Abort.
// A nil compensate marks a step that is not undone.
func (s *saga) Run(ctx context.Context, step string, action, compensate sagaAction) error {
	if err := action(ctx); err != nil {
		s.logger.Warn().Err(err).Str("step", step).Msg("saga step failed")
		return err
	}

	s.completed = append(s.completed, sagaStep{name: step, compensate: compensate})
	s.logger.Debug().Str("step", step).Msg("saga step completed")
	return nil
}

// Completed lists the names of the steps that have run successfully.
func (s *saga) Completed() []string {
	names := make([]string, 0, len(s.completed))
	for _, step := range s.completed {
		names = append(names, step.name)
	}
	return names
}

// Abort compensates completed steps in reverse order. Compensation failures are
// returned alongside cause as a *CompensationError.
func (s *saga) Abort(ctx context.Context, cause error) error {
	ctx = context.WithoutCancel(ctx)

	var failures []error
	for i := len(s.completed) - 1; i >= 0; i-- {
		step := s.completed[i]
		if step.compensate == nil {
			continue
		}

		if err := step.compensate(ctx); err != nil {
			observability.AuthoringCompensations().WithLabelValues(step.name, "failed").Inc()
			s.logger.Error().Err(err).Str("step", step.name).Msg("compensation failed")
			failures = append(failures, fmt.Errorf("compensate %s: %w", step.name, err))
			continue
		}

		observability.AuthoringCompensations().WithLabelValues(step.name, "succeeded").Inc()
		s.logger.Info().Str("step", step.name).Msg("step compensated")
	}
	s.completed = nil

	if len(failures) == 0 {
		return cause
	}
	return &CompensationError{Cause: cause, Failures: failures}
}
