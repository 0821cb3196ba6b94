// Package shutdownqueue provides LIFO shutdown queues for cleanup tasks.
//
// A process-wide default queue is available through Add and Shutdown;
// components that want their own lifecycle (tests, embedded servers) create
// one with New:
//
//	q := shutdownqueue.New()
//	q.Add(func(ctx context.Context) error { return srv.Shutdown(ctx) })
//	defer q.Shutdown(ctx)
//
// Tasks run once, in reverse order of registration. Panics are recovered.
// Shutdown is idempotent and returns an aggregated error via errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it can't finish (or ctx is canceled).
type Task func(ctx context.Context) error

// Queue collects shutdown tasks. The zero value is ready to use.
type Queue struct {
	mu     sync.Mutex
	tasks  []Task
	closed bool
}

func New() *Queue {
	return &Queue{tasks: make([]Task, 0, 8)}
}

var std = New()

// Add registers t on the default queue.
func Add(t Task) { std.Add(t) }

// Shutdown drains the default queue.
func Shutdown(ctx context.Context) error { return std.Shutdown(ctx) }

// Add registers a task to be run on Shutdown, in LIFO order.
// Safe to call from any goroutine.
// If t is nil or shutdown has already started, Add does nothing.
func (q *Queue) Add(t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.tasks = append(q.tasks, t)
}

// Len reports the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}

// Shutdown drains all registered tasks in LIFO order.
// After the first run, complete or partial, subsequent calls are no-ops.
//
// If ctx is canceled or times out mid-drain, Shutdown stops early and returns
// an error that includes both the context error and any task errors so far,
// joined with errors.Join.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()

		return nil
	}

	q.closed = true
	tasks := q.tasks
	q.tasks = nil

	q.mu.Unlock()

	var errs []error

	for i := len(tasks) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		err := runTask(ctx, tasks[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task: %v", r)
		}
	}()

	return t(ctx)
}
