package launcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "tenant-reports/pkg/errors"
)

func script(t *testing.T, name, body string) Script {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return Script{Name: name, Path: path}
}

func waitForState(t *testing.T, r *Runner, want RunState) RunStatus {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("runner never reached state %s, last: %s", want, r.Status().State)
		default:
		}
		if status := r.Status(); status.State == want {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRunnerCompletesRun(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Watch(ctx, 20*time.Millisecond)

	id, err := r.Start(ctx, script(t, "ok.sh", "exit 0"))
	require.NoError(t, err)
	require.NotEqual(t, id.String(), "00000000-0000-0000-0000-000000000000")

	status := waitForState(t, r, StateDone)
	assert.Equal(t, id, status.ID)
	require.NotNil(t, status.ExitCode)
	assert.Equal(t, 0, *status.ExitCode)
	require.NotNil(t, status.FinishedAt)
	assert.False(t, r.Busy())
}

func TestRunnerReportsFailure(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Watch(ctx, 20*time.Millisecond)

	_, err := r.Start(ctx, script(t, "fail.sh", "exit 3"))
	require.NoError(t, err)

	status := waitForState(t, r, StateFailed)
	require.NotNil(t, status.ExitCode)
	assert.Equal(t, 3, *status.ExitCode)
	assert.NotEmpty(t, status.Error)
}

func TestRunnerRefusesConcurrentRuns(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Watch(ctx, 20*time.Millisecond)

	_, err := r.Start(ctx, script(t, "slow.sh", "sleep 5"))
	require.NoError(t, err)
	assert.True(t, r.Busy())

	_, err = r.Start(ctx, script(t, "second.sh", "exit 0"))
	assert.ErrorIs(t, err, appErrors.ErrRunInProgress)
}

func TestRunnerNotifiesListeners(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	states := make(chan RunState, 8)
	r.OnChange(func(status RunStatus) {
		states <- status.State
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Watch(ctx, 20*time.Millisecond)

	_, err := r.Start(ctx, script(t, "ok.sh", "exit 0"))
	require.NoError(t, err)

	assert.Equal(t, StateRunning, <-states)
	assert.Equal(t, StateDone, <-states)
}

func TestRunnerListenerMayReadStatus(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	seen := make(chan RunState, 8)
	r.OnChange(func(status RunStatus) {
		// Listeners run outside the runner's lock, so reading the
		// snapshot back must not deadlock.
		_ = r.Status()
		_ = r.Busy()
		seen <- status.State
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Watch(ctx, 20*time.Millisecond)

	_, err := r.Start(ctx, script(t, "ok.sh", "exit 0"))
	require.NoError(t, err)

	assert.Equal(t, StateRunning, <-seen)
	assert.Equal(t, StateDone, <-seen)
}
