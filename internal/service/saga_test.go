package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSagaAbortCompensatesInReverseOrder(t *testing.T) {
	var calls []string
	record := func(name string) sagaAction {
		return func(context.Context) error {
			calls = append(calls, name)
			return nil
		}
	}

	flow := newSaga("test", zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, flow.Run(ctx, "first", record("do first"), record("undo first")))
	require.NoError(t, flow.Run(ctx, "second", record("do second"), nil))
	require.NoError(t, flow.Run(ctx, "third", record("do third"), record("undo third")))
	require.Equal(t, []string{"first", "second", "third"}, flow.Completed())

	cause := errors.New("boom")
	err := flow.Abort(ctx, cause)
	require.Same(t, cause, err)
	require.Equal(t, []string{"do first", "do second", "do third", "undo third", "undo first"}, calls)
	require.Empty(t, flow.Completed())
}

func TestSagaRunDoesNotRecordFailedStep(t *testing.T) {
	compensated := false
	flow := newSaga("test", zerolog.Nop())

	err := flow.Run(context.Background(), "fails",
		func(context.Context) error { return errors.New("nope") },
		func(context.Context) error { compensated = true; return nil },
	)
	require.Error(t, err)
	require.Empty(t, flow.Completed())

	require.Error(t, flow.Abort(context.Background(), err))
	require.False(t, compensated)
}

func TestSagaAbortSurfacesCompensationFailures(t *testing.T) {
	flow := newSaga("test", zerolog.Nop())
	undoErr := errors.New("delete failed")
	require.NoError(t, flow.Run(context.Background(), "create",
		func(context.Context) error { return nil },
		func(context.Context) error { return undoErr },
	))

	cause := errors.New("second step failed")
	err := flow.Abort(context.Background(), cause)

	var compensationErr *CompensationError
	require.ErrorAs(t, err, &compensationErr)
	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, undoErr)
	require.Len(t, compensationErr.Failures, 1)
}

func TestSagaAbortIgnoresCancelledContext(t *testing.T) {
	flow := newSaga("test", zerolog.Nop())
	var sawErr error
	require.NoError(t, flow.Run(context.Background(), "create",
		func(context.Context) error { return nil },
		func(ctx context.Context) error { sawErr = ctx.Err(); return nil },
	))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, flow.Abort(ctx, errors.New("cancelled")))
	require.NoError(t, sawErr)
}
