package plugin

import (
	"context"
	"sync"
	"time"
)

// Task is a handle to work scheduled through API.After or API.Every. The
// scheduled function never runs after Cancel returns, unless it was already
// running.
type Task struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func newTask(parent context.Context) *Task {
	ctx, cancel := context.WithCancel(parent)
	return &Task{ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

// Cancel stops the task. It is safe to call Cancel multiple times and from
// within the scheduled function itself.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.cancel()
}

// Done returns a channel that is closed once the task will no longer run,
// either because it was cancelled, it completed, or the plugin was disabled.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Stopped reports if the task has stopped running.
func (t *Task) Stopped() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *Task) finish() {
	t.once.Do(func() {
		t.cancel()
		close(t.done)
	})
}

func (t *Task) runAfter(d time.Duration, fn func()) {
	defer t.finish()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-t.ctx.Done():
		return
	case <-timer.C:
	}
	if t.ctx.Err() != nil {
		return
	}
	fn()
}

func (t *Task) runEvery(delay, interval time.Duration, fn func()) {
	defer t.finish()
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-t.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if t.ctx.Err() != nil {
			return
		}
		fn()
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
