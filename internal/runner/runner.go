package runner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/yildizm/attackmap/internal/matcher"
)

// ErrSuperseded is reported by a task that was canceled because a
// newer request replaced it.
var ErrSuperseded = errors.New("superseded by a newer request")

// MatchFunc runs a match request. It is the seam between the runner
// and the matcher, and keeps tests free of real providers.
type MatchFunc func(ctx context.Context, query string, onProgress matcher.ProgressFunc) (*matcher.Result, error)

// Task is a handle to one in-flight match request. Progress, completion
// and results are all delivered through channels; no polling involved.
type Task struct {
	query      string
	progress   chan int
	done       chan struct{}
	cancel     context.CancelFunc
	superseded atomic.Bool

	result *matcher.Result
	err    error
}

// Query returns the query text this task was submitted with.
func (t *Task) Query() string {
	return t.query
}

// Progress returns a channel of progress percentages. The channel is
// closed when the task finishes. Slow consumers never stall the
// pipeline; stale percentages are dropped instead.
func (t *Task) Progress() <-chan int {
	return t.progress
}

// Done returns a channel that is closed when the task finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result returns the match result. Valid only after Done is closed.
func (t *Task) Result() *matcher.Result {
	select {
	case <-t.done:
		return t.result
	default:
		return nil
	}
}

// Err returns the task error, if any. Valid only after Done is closed.
// A task replaced by a newer submission reports ErrSuperseded.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Cancel stops the task. Safe to call multiple times and after
// completion.
func (t *Task) Cancel() {
	t.cancel()
}

func (t *Task) report(percent int) {
	select {
	case t.progress <- percent:
	default:
	}
}

func (t *Task) finish(result *matcher.Result, err error) {
	if err != nil && t.superseded.Load() {
		err = ErrSuperseded
	}

	t.result = result
	t.err = err
	close(t.progress)
	close(t.done)
}

// Runner executes match requests one at a time. Submitting a new
// request cancels whichever request is still in flight, so results
// always correspond to the latest query.
type Runner struct {
	match MatchFunc

	mu      sync.Mutex
	current *Task
}

// New creates a Runner that executes requests with the given MatchFunc.
func New(match MatchFunc) *Runner {
	return &Runner{match: match}
}

// Submit starts a match request and returns its task handle. Empty
// queries are rejected before any task is created. A task still in
// flight from an earlier Submit is canceled first.
func (r *Runner) Submit(ctx context.Context, query string) (*Task, error) {
	if strings.TrimSpace(query) == "" {
		return nil, matcher.ErrEmptyQuery
	}

	taskCtx, cancel := context.WithCancel(ctx)

	task := &Task{
		query:    query,
		progress: make(chan int, 8),
		done:     make(chan struct{}),
		cancel:   cancel,
	}

	r.mu.Lock()
	if prev := r.current; prev != nil {
		select {
		case <-prev.done:
		default:
			prev.superseded.Store(true)
			prev.cancel()
		}
	}
	r.current = task
	r.mu.Unlock()

	go func() {
		defer cancel()

		result, err := r.match(taskCtx, query, task.report)
		if err == nil && taskCtx.Err() != nil {
			// The matcher finished despite cancellation; the result
			// belongs to a replaced request and must not surface.
			result, err = nil, taskCtx.Err()
		}

		task.finish(result, err)
	}()

	return task, nil
}

// Current returns the most recently submitted task, or nil.
func (r *Runner) Current() *Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Shutdown cancels any in-flight task and waits for it to finish.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	task := r.current
	r.mu.Unlock()

	if task != nil {
		task.Cancel()
		<-task.done
	}
}
