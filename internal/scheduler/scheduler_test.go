package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, Config{Interval: time.Second}, nil)
	assert.Error(t, err)

	_, err = New(func(context.Context) error { return nil }, Config{}, nil)
	assert.Error(t, err)

	s, err := New(func(context.Context) error { return nil }, Config{Name: "ok", Interval: time.Second}, nil)
	require.NoError(t, err)
	assert.False(t, s.IsRunning())
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := New(func(context.Context) error { return nil }, Config{Name: "noop", Interval: time.Hour}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start(context.Background()), "second start should fail")

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.Error(t, s.Stop(), "second stop should fail")
}

func TestScheduler_StartImmediately(t *testing.T) {
	done := make(chan error, 1)
	s, err := New(func(context.Context) error { return nil }, Config{
		Name:             "immediate",
		Interval:         time.Hour,
		StartImmediately: true,
		OnComplete:       func(err error) { done <- err },
	}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}

	status := s.Status()
	assert.Equal(t, 1, status.RunCount)
	assert.False(t, status.LastRun.IsZero())
}

func TestScheduler_RunsOnInterval(t *testing.T) {
	var runs atomic.Int32
	s, err := New(func(context.Context) error {
		runs.Add(1)
		return nil
	}, Config{Name: "ticker", Interval: 10 * time.Millisecond}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())
}

func TestScheduler_TracksFailures(t *testing.T) {
	boom := errors.New("boom")
	done := make(chan struct{}, 4)
	s, err := New(func(context.Context) error { return boom }, Config{
		Name:       "failing",
		Interval:   time.Hour,
		OnComplete: func(error) { done <- struct{}{} },
	}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	require.NoError(t, s.Trigger())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("triggered job did not run")
	}

	status := s.Status()
	assert.Equal(t, 0, status.RunCount)
	assert.Equal(t, 1, status.FailureCount)
	assert.ErrorIs(t, status.LastError, boom)
	assert.Contains(t, status.String(), "Last Error: boom")
}

func TestScheduler_TriggerRequiresRunning(t *testing.T) {
	s, err := New(func(context.Context) error { return nil }, Config{Name: "idle", Interval: time.Hour}, nil)
	require.NoError(t, err)
	assert.Error(t, s.Trigger())
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	started := make(chan struct{})
	var cancelled atomic.Bool
	s, err := New(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}, Config{Name: "blocking", Interval: time.Hour, StartImmediately: true}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	<-started
	require.NoError(t, s.Stop())
	assert.True(t, cancelled.Load())
}

func TestScheduler_StopWaitsForTriggeredRun(t *testing.T) {
	started := make(chan struct{}, 1)
	var finished atomic.Bool
	s, err := New(func(ctx context.Context) error {
		started <- struct{}{}
		<-ctx.Done()
		finished.Store(true)
		return ctx.Err()
	}, Config{Name: "triggered", Interval: time.Hour}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Trigger())
	<-started

	require.NoError(t, s.Stop())
	assert.True(t, finished.Load(), "Stop returned before the triggered run ended")
	assert.Error(t, s.Trigger(), "trigger after stop should fail")
	assert.Equal(t, "triggered", s.Name())
}

func TestStatus_String(t *testing.T) {
	stopped := &Status{Name: "snapshots"}
	assert.Equal(t, "snapshots: stopped", stopped.String())

	running := &Status{
		Name:     "snapshots",
		Running:  true,
		Interval: time.Hour,
		RunCount: 2,
		NextRun:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	out := running.String()
	assert.True(t, strings.HasPrefix(out, "snapshots: running"))
	assert.Contains(t, out, "Interval: 1h0m0s")
	assert.Contains(t, out, "Runs: 2")
	assert.Contains(t, out, "Next Run: 2024-01-01T12:00:00Z")
	assert.NotContains(t, out, "Last Run")
}
