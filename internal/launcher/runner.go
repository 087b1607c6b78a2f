package launcher

import (
	"context"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "tenant-reports/pkg/errors"
)

// RunState is the lifecycle of one script run.
type RunState string

const (
	StateIdle    RunState = "idle"
	StateRunning RunState = "running"
	StateDone    RunState = "done"
	StateFailed  RunState = "failed"
)

// RunStatus is the published snapshot of the current or most recent run.
type RunStatus struct {
	ID         uuid.UUID  `json:"id"`
	Script     string     `json:"script"`
	State      RunState   `json:"state"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	ExitCode   *int       `json:"exit_code,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// runResult travels from the process-wait goroutine to the poll loop, so
// the two never share mutable state.
type runResult struct {
	id         uuid.UUID
	exitCode   int
	err        error
	finishedAt time.Time
}

// Runner supervises at most one child process at a time. Completion is
// detected by the wait goroutine and folded into the published status by
// the Watch poll loop; callers read snapshots via Status.
type Runner struct {
	mu        sync.RWMutex
	status    RunStatus
	active    bool
	results   chan runResult
	listeners []func(RunStatus)
}

func NewRunner() *Runner {
	return &Runner{
		status:  RunStatus{State: StateIdle},
		results: make(chan runResult, 1),
	}
}

// OnChange registers a callback invoked whenever the published status
// changes.
func (r *Runner) OnChange(listener func(RunStatus)) {
	if listener == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, listener)
}

// Status returns a copy of the current run status.
func (r *Runner) Status() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Busy reports whether a run is in flight.
func (r *Runner) Busy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Start launches the script as a child process. Only one run may be active;
// a second Start returns ErrRunInProgress.
func (r *Runner) Start(ctx context.Context, script Script) (uuid.UUID, error) {
	r.mu.Lock()

	if r.active {
		r.mu.Unlock()
		return uuid.Nil, appErrors.ErrRunInProgress
	}

	cmd := exec.CommandContext(ctx, script.Path)
	cmd.Dir = filepath.Dir(script.Path)
	if err := cmd.Start(); err != nil {
		r.mu.Unlock()
		return uuid.Nil, err
	}

	id := uuid.New()
	r.active = true
	status := RunStatus{
		ID:        id,
		Script:    script.Name,
		State:     StateRunning,
		StartedAt: time.Now(),
	}
	listeners := r.setStatus(status)
	r.mu.Unlock()

	notify(listeners, status)

	go func() {
		err := cmd.Wait()
		res := runResult{id: id, finishedAt: time.Now()}
		if err != nil {
			res.err = err
			if exitErr, ok := err.(*exec.ExitError); ok {
				res.exitCode = exitErr.ExitCode()
			} else {
				res.exitCode = -1
			}
		}
		r.results <- res
	}()

	return id, nil
}

// Watch polls for completed runs on the given interval until ctx is done.
// Run it once, on its own goroutine.
func (r *Runner) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.drain()
		}
	}
}

func (r *Runner) drain() {
	for {
		select {
		case res := <-r.results:
			r.finish(res)
		default:
			return
		}
	}
}

func (r *Runner) finish(res runResult) {
	r.mu.Lock()

	if res.id != r.status.ID {
		r.mu.Unlock()
		return
	}

	status := r.status
	status.FinishedAt = &res.finishedAt
	status.ExitCode = &res.exitCode
	if res.err != nil {
		status.State = StateFailed
		status.Error = res.err.Error()
	} else {
		status.State = StateDone
	}
	r.active = false
	listeners := r.setStatus(status)
	r.mu.Unlock()

	notify(listeners, status)
}

// setStatus records the new snapshot and returns the listeners to notify.
// Callers hold mu and must invoke the listeners after releasing it, so a
// listener is free to call Status or Busy.
func (r *Runner) setStatus(status RunStatus) []func(RunStatus) {
	r.status = status
	listeners := make([]func(RunStatus), len(r.listeners))
	copy(listeners, r.listeners)
	return listeners
}

func notify(listeners []func(RunStatus), status RunStatus) {
	for _, listener := range listeners {
		listener(status)
	}
}
