package transition

import (
	"errors"
	"sync"
)

// Awaitable is an asynchronous signal a renderer reports while the view for
// the current selection is not ready. Done is closed once the signal
// settles; Err reports a rejection afterwards.
type Awaitable interface {
	Done() <-chan struct{}
	Err() error
}

// Future is the stock Awaitable. It settles exactly once; later calls to
// Resolve or Reject are ignored.
type Future struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewFuture returns an unsettled future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve settles the future successfully.
func (f *Future) Resolve() {
	f.settle(nil)
}

// Reject settles the future with err. A nil err is reported as
// ErrRejected so that Err never returns nil for a rejected future.
func (f *Future) Reject(err error) {
	if err == nil {
		err = ErrRejected
	}
	f.settle(err)
}

func (f *Future) settle(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done implements Awaitable.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Err implements Awaitable. It returns nil until the future settles.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Settled reports whether Resolve or Reject has been called.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// ErrRejected is the error of a future rejected without a cause.
var ErrRejected = errors.New("transition: signal rejected")

// Result is what a Renderer returns for a frame: either a view that is ready
// now, or an Awaitable to wait on before the current selection can show.
type Result struct {
	View  any
	Await Awaitable
}

// Ready returns a result carrying view.
func Ready(view any) Result {
	return Result{View: view}
}

// Pending returns a result that holds the transition until aw settles.
func Pending(aw Awaitable) Result {
	return Result{Await: aw}
}

// IsPending reports whether the result carries an awaitable.
func (r Result) IsPending() bool {
	return r.Await != nil
}
