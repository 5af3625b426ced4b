package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrPending = errors.New("task still pending")

// Task is a value that resolves exactly once, some time after it is handed out.
type Task[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

func newTask[T any]() *Task[T] {
	return &Task[T]{done: make(chan struct{})}
}

func (t *Task[T]) resolve(v T, err error) {
	t.once.Do(func() {
		t.val = v
		t.err = err
		close(t.done)
	})
}

// Done is closed once the task resolves.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Result returns the outcome without blocking, or ErrPending.
func (t *Task[T]) Result() (T, error) {
	select {
	case <-t.done:
		return t.val, t.err
	default:
		var zero T
		return zero, ErrPending
	}
}

// Wait blocks until the task resolves or ctx ends.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.val, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Scheduler runs f once after d. Callbacks may run on any goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// TimerScheduler is backed by time.AfterFunc.
var TimerScheduler Scheduler = timerScheduler{}
