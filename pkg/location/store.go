package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vango-dev/navrouter/pkg/reactive"
)

// ErrAlreadyStarted is returned by Start when the store is already listening.
var ErrAlreadyStarted = errors.New("location: store already started")

// Store holds the current URL and republishes a Location to subscribers on
// every accepted change. It is safe for concurrent use.
type Store struct {
	url     *reactive.Signal[string]
	origin  string
	history History
	logger  *slog.Logger

	mu     sync.Mutex
	source Source
	cancel func()
	stopCh chan struct{}
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithHistory sets the history sink. Without one, history writes are dropped.
func WithHistory(h History) StoreOption {
	return func(s *Store) {
		s.history = h
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a store for origin holding initialURL.
func NewStore(origin, initialURL string, opts ...StoreOption) *Store {
	if initialURL == "" {
		initialURL = "/"
	}
	s := &Store{
		url:    reactive.NewSignal(initialURL),
		origin: origin,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Origin returns the origin used to resolve and filter URLs.
func (s *Store) Origin() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.origin
}

// URL returns the current URL string.
func (s *Store) URL() string {
	return s.url.Get()
}

// Location returns the current parsed location.
func (s *Store) Location() Location {
	return s.locationFor(s.url.Get())
}

func (s *Store) locationFor(u string) Location {
	loc := Parse(u, s.Origin())
	loc.Navigator = s
	return loc
}

// Subscribe calls fn with the new Location after each accepted change.
func (s *Store) Subscribe(fn func(Location)) (unsubscribe func()) {
	return s.url.Subscribe(func(u string) {
		fn(s.locationFor(u))
	})
}

// HandleClick intercepts a same-origin anchor activation: the default is
// prevented, history is pushed and the URL updated. Clicks without an anchor
// or leading to another origin are left alone and false is returned.
func (s *Store) HandleClick(a Activation) bool {
	href, ok := a.Href()
	if !ok {
		return false
	}
	dest, same := SameOrigin(href, s.Origin())
	if !same {
		s.logger.Debug("click passed through", "href", href)
		return false
	}
	a.PreventDefault()
	s.update(dest, ModePush)
	return true
}

// HandlePop applies a back/forward move. History is not written.
func (s *Store) HandlePop(url string) {
	s.update(url, ModeNone)
}

// Navigate moves to url. It pushes history unless WithReplace or
// WithoutHistory is given. WithParams merges query parameters into url.
func (s *Store) Navigate(url string, opts ...NavigateOption) {
	options := buildOptions(opts)
	target, err := options.BuildURL(url)
	if err != nil {
		s.logger.Warn("navigation rejected", "url", url, "error", err)
		return
	}
	s.update(target, options.Mode)
}

// Resync re-reads the source's current URL without writing history.
// It does nothing before Start.
func (s *Store) Resync() {
	s.mu.Lock()
	src := s.source
	s.mu.Unlock()
	if src == nil {
		return
	}
	s.update(src.CurrentURL(), ModeNone)
}

func (s *Store) update(url string, mode HistoryMode) {
	if s.history != nil {
		switch mode {
		case ModePush:
			s.history.Push(url)
		case ModeReplace:
			s.history.Replace(url)
		}
	}
	if s.url.Set(url) {
		s.logger.Debug("location changed", "url", url, "mode", mode.String())
	}
}

// Dispatch routes a source event to HandleClick or HandlePop.
func (s *Store) Dispatch(ev Event) {
	switch e := ev.(type) {
	case Activation:
		s.HandleClick(e)
	case PopEvent:
		s.HandlePop(e.URL)
	case *PopEvent:
		s.HandlePop(e.URL)
	}
}

// Start attaches the store to src: its origin is adopted when the store has
// none, the current URL is read, and click and pop events are handled until
// Stop is called or ctx is done. A failed Start leaves nothing registered.
func (s *Store) Start(ctx context.Context, src Source) error {
	s.mu.Lock()
	if s.source != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}

	cancel, err := src.Listen(s.Dispatch)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("location: listen: %w", err)
	}

	if s.origin == "" {
		s.origin = src.Origin()
	}
	s.source = src
	s.cancel = cancel
	stopCh := make(chan struct{})
	s.stopCh = stopCh
	s.mu.Unlock()

	if ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				s.Stop()
			case <-stopCh:
			}
		}()
	}

	s.Resync()
	return nil
}

// Stop detaches from the source. It is safe to call more than once and
// before Start.
func (s *Store) Stop() {
	s.mu.Lock()
	cancel, stopCh := s.cancel, s.stopCh
	s.source, s.cancel, s.stopCh = nil, nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stopCh != nil {
		close(stopCh)
	}
}

// Running reports whether the store is attached to a source.
func (s *Store) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source != nil
}
