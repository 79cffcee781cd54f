// Package job adapts closures to the shardqueue Job interface.
package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNilJobFunc is returned when a JobFunc is nil.
var ErrNilJobFunc = errors.New("nil JobFunc")

// jobFunc lets us pass plain closures to the shard executor.
type jobFunc func(context.Context) error

func (f jobFunc) Run(ctx context.Context) error {
	if f == nil {
		return fmt.Errorf("jobfunc: %w", ErrNilJobFunc)
	}
	return f(ctx)
}

// New creates a new job function from a closure.
func New(fn func(context.Context) error) jobFunc {
	return jobFunc(fn)
}

// Tracked wraps a closure so the submitter can wait for its final result.
// The executor may Run it several times (retries); it reports the outcome of
// the last attempt through Complete. Only the first Complete counts.
type Tracked struct {
	fn   jobFunc
	once sync.Once
	done chan struct{}
	err  error
}

// Track creates a Tracked job around fn.
func Track(fn func(context.Context) error) *Tracked {
	return &Tracked{fn: jobFunc(fn), done: make(chan struct{})}
}

// Run executes the closure once.
func (t *Tracked) Run(ctx context.Context) error { return t.fn.Run(ctx) }

// Complete records the final outcome and releases waiters.
func (t *Tracked) Complete(err error) {
	t.once.Do(func() {
		t.err = err
		close(t.done)
	})
}

// Done is closed once the job has completed.
func (t *Tracked) Done() <-chan struct{} { return t.done }

// Err returns the recorded error; nil until Done is closed.
func (t *Tracked) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the job completes or ctx is done.
func (t *Tracked) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
