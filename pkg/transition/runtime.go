package transition

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/vango-dev/navrouter/pkg/location"
	"github.com/vango-dev/navrouter/pkg/reactive"
)

// ErrStopped is returned once the runtime's Run loop has exited, or when Run
// is called a second time.
var ErrStopped = errors.New("transition: runtime stopped")

type resolution struct {
	tok *Token
	err error
}

// Runtime owns a Controller on a single goroutine. Location changes are
// coalesced: only the newest location not yet handled is kept, since any
// older one would be superseded anyway. Each pending signal is observed by
// a watcher goroutine that only posts the resolution back to the loop.
type Runtime struct {
	ctrl   *Controller
	logger *slog.Logger
	frames *reactive.Signal[Frame]

	wake     chan struct{}
	resolved chan resolution
	done     chan struct{}

	mu      sync.Mutex
	latest  *location.Location
	running bool
	stopped bool

	// watching is only touched by the loop goroutine.
	watching *Token
	watchers sync.WaitGroup
}

// NewRuntime creates a runtime around a controller built from cfg. Frames
// are delivered to cfg.Sink (if set) and to Subscribe callbacks, on the
// loop goroutine.
func NewRuntime(cfg Config) *Runtime {
	r := &Runtime{
		frames: reactive.NewSignal(Frame{}).WithEquals(func(a, b Frame) bool {
			return a.Seq == b.Seq
		}),
		wake:     make(chan struct{}, 1),
		resolved: make(chan resolution),
		done:     make(chan struct{}),
	}

	sink := cfg.Sink
	cfg.Sink = func(f Frame) {
		if sink != nil {
			sink(f)
		}
		r.frames.Set(f)
	}
	r.ctrl = NewController(cfg)
	r.logger = r.ctrl.logger
	return r
}

// SetLocation queues a location change for the loop.
func (r *Runtime) SetLocation(loc location.Location) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return ErrStopped
	}
	r.latest = &loc
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
	return nil
}

// Follow feeds every location published by store into the runtime, starting
// with the store's current one. The returned function stops following.
func (r *Runtime) Follow(store *location.Store) (stop func()) {
	unsubscribe := store.Subscribe(func(loc location.Location) {
		if err := r.SetLocation(loc); err != nil {
			r.logger.Debug("location dropped", "url", loc.URL, "error", err)
		}
	})
	_ = r.SetLocation(store.Location())
	return unsubscribe
}

// Subscribe calls fn with each new frame. Callbacks run on the loop
// goroutine and must not block.
func (r *Runtime) Subscribe(fn func(Frame)) (unsubscribe func()) {
	return r.frames.Subscribe(fn)
}

// Frame returns the most recent frame.
func (r *Runtime) Frame() Frame {
	return r.frames.Get()
}

// Done is closed when Run returns.
func (r *Runtime) Done() <-chan struct{} {
	return r.done
}

// Run processes location changes and resolutions until ctx is done. It
// returns nil on cancellation and ErrStopped if the runtime already ran.
func (r *Runtime) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running || r.stopped {
		r.mu.Unlock()
		return ErrStopped
	}
	r.running = true
	r.mu.Unlock()

	watchCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		r.watchers.Wait()

		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()
		close(r.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-r.wake:
			r.mu.Lock()
			loc := r.latest
			r.latest = nil
			r.mu.Unlock()
			if loc == nil {
				continue
			}
			r.ctrl.SetLocation(*loc)
			r.watch(watchCtx)

		case res := <-r.resolved:
			r.ctrl.Resolve(res.tok, res.err)
			r.watch(watchCtx)
		}
	}
}

// watch starts a watcher for the controller's pending token if it has none.
func (r *Runtime) watch(ctx context.Context) {
	tok := r.ctrl.Pending()
	if tok == nil || tok == r.watching {
		return
	}
	r.watching = tok

	r.watchers.Add(1)
	go func() {
		defer r.watchers.Done()
		select {
		case <-tok.Await.Done():
		case <-ctx.Done():
			return
		}
		select {
		case r.resolved <- resolution{tok: tok, err: tok.Await.Err()}:
		case <-ctx.Done():
		}
	}()
}
