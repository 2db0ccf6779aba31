package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormRegistryAddGetRemove(t *testing.T) {
	registry := NewFormRegistry(time.Hour, testLogger())
	form := NewAssignmentForm(7, 0, time.Now())

	registry.Add(form)
	require.Equal(t, 1, registry.Len())

	got, err := registry.Get(form.ID())
	require.NoError(t, err)
	require.Same(t, form, got)

	require.NoError(t, registry.Remove(form.ID()))
	require.ErrorIs(t, registry.Remove(form.ID()), ErrFormNotFound)

	_, err = registry.Get(form.ID())
	require.ErrorIs(t, err, ErrFormNotFound)
}

func TestFormRegistrySweepEvictsIdleForms(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	registry := NewFormRegistry(time.Hour, testLogger())
	registry.now = func() time.Time { return base.Add(90 * time.Minute) }

	stale := NewAssignmentForm(7, 0, base)
	fresh := NewAssignmentForm(7, 0, base.Add(time.Hour))
	submitting := NewAssignmentForm(7, 0, base)
	_, err := submitting.beginSubmit()
	require.NoError(t, err)
	submitting.touchedAt = base

	registry.Add(stale)
	registry.Add(fresh)
	registry.Add(submitting)

	require.Equal(t, 1, registry.Sweep())
	require.Equal(t, 2, registry.Len())

	_, err = registry.Get(stale.ID())
	require.ErrorIs(t, err, ErrFormNotFound)
	_, err = registry.Get(submitting.ID())
	require.NoError(t, err)
}

func TestFormRegistryRunStopsOnCancel(t *testing.T) {
	registry := NewFormRegistry(time.Hour, testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		registry.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("registry sweeper did not stop")
	}
}
