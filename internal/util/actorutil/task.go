package actorutil

import (
	"context"
	"errors"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/primetalk/goio/io"
)

var errNilResult = errors.New("background task returned no result")

// SafeBackgroundTask runs a blocking call outside the actor and delivers its
// result, or the recovered error, back as a message.
type SafeBackgroundTask[T any] struct {
	system  *actor.ActorSystem
	call    func() (*T, error)
	timeout time.Duration
	recover func(error) T
}

// NewContextTask wraps fn so that it receives a context expiring after
// timeout. The goio timeout and the context deadline are the same, so an
// HTTP call is aborted together with the task.
func NewContextTask[T any](ctx actor.Context, timeout time.Duration, fn func(context.Context) (*T, error)) *SafeBackgroundTask[T] {
	return &SafeBackgroundTask[T]{
		system: ctx.ActorSystem(),
		call: func() (*T, error) {
			callCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return fn(callCtx)
		},
		timeout: timeout,
	}
}

func (t *SafeBackgroundTask[T]) WithTimeout(timeout time.Duration) *SafeBackgroundTask[T] {
	t.timeout = timeout
	return t
}

// Recover converts a failed call into a regular result. Without it failed
// tasks are dropped.
func (t *SafeBackgroundTask[T]) Recover(fn func(error) T) *SafeBackgroundTask[T] {
	t.recover = fn
	return t
}

// PipeTo starts the task on its own goroutine and sends the outcome to pid
// through the root context.
func (t *SafeBackgroundTask[T]) PipeTo(pid *actor.PID) {
	go func() {
		if value, ok := t.run(); ok {
			t.system.Root.Send(pid, value)
		}
	}()
}

func (t *SafeBackgroundTask[T]) run() (T, bool) {
	task := io.Map(io.Eval(t.call), func(a *T) T {
		if a == nil {
			panic(errNilResult)
		}
		return *a
	})
	if t.timeout > 0 {
		task = io.WithTimeout[T](t.timeout)(task)
	}
	result := io.RunSync(task)
	if result.Error == nil {
		return result.Value, true
	}
	if t.recover == nil {
		var zero T
		return zero, false
	}
	return t.recover(result.Error), true
}

// MapBackgroundTask transforms the result of bgt. The timeout is kept; the
// recover function is not.
func MapBackgroundTask[T, T2 any](bgt *SafeBackgroundTask[T], mapFn func(*T) *T2) *SafeBackgroundTask[T2] {
	return &SafeBackgroundTask[T2]{
		system: bgt.system,
		call: func() (*T2, error) {
			r, err := bgt.call()
			if err != nil {
				return nil, err
			}
			return mapFn(r), nil
		},
		timeout: bgt.timeout,
	}
}
