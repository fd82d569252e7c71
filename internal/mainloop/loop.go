// Package mainloop runs tasks one at a time on a single goroutine. It stands
// in for the host's main thread: every command and notification event of the
// bridge is executed here, so the state they touch needs no locking.
package mainloop

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
)

var ErrStopped = errors.New("mainloop: stopped")

const defaultQueueSize = 256

type Loop struct {
	logger *slog.Logger
	tasks  chan func()

	stopOnce sync.Once
	stopped  chan struct{}
	done     chan struct{}
}

func New(logger *slog.Logger, queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Loop{
		logger:  logger,
		tasks:   make(chan func(), queueSize),
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run executes posted tasks until ctx is cancelled or Stop is called. Tasks
// still queued at that point are discarded.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.stopped:
			return nil
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("mainloop task panicked",
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}

// Post queues fn. It blocks while the queue is full and reports false once
// the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.stopped:
		return false
	}
}

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopped) })
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
