package writeback

import (
	"context"
)

// Result is the outcome of a dispatched write-back.
type Result struct {
	Response string
	Err      error
}

// Task is a write-back running in the background. Callers may wait for it,
// cancel it, or ignore it entirely.
type Task struct {
	done   chan struct{}
	result Result
	cancel context.CancelFunc
}

// Dispatch runs fn in its own goroutine with a cancellable child of ctx.
func Dispatch(ctx context.Context, fn func(context.Context) (string, error)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(t.done)
		defer cancel()
		resp, err := fn(ctx)
		t.result = Result{Response: resp, Err: err}
	}()

	return t
}

// Done is closed when the write-back has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the write-back has finished and returns its result.
func (t *Task) Wait() Result {
	<-t.done
	return t.result
}

// Cancel aborts the in-flight request. It is safe to call more than once.
func (t *Task) Cancel() {
	t.cancel()
}
