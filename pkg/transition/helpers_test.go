package transition

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/navrouter/pkg/location"
	"github.com/vango-dev/navrouter/pkg/router"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRoutes() *router.Router {
	r := router.New()
	r.MustAdd("/", "home")
	r.MustAdd("/a", "a")
	r.MustAdd("/b", "b")
	r.MustAdd("/users/:id", "user")
	return r
}

func loc(url string) location.Location {
	return location.Parse(url, "")
}

// lazyRenderer returns Pending for a pattern while its future is unsettled,
// "error:<pattern>" once it was rejected and "view:<pattern>" otherwise.
type lazyRenderer struct {
	mu      sync.Mutex
	futures map[string]*Future
	calls   int
}

func newLazyRenderer() *lazyRenderer {
	return &lazyRenderer{futures: make(map[string]*Future)}
}

// hold makes pattern pending until the returned future settles.
func (l *lazyRenderer) hold(pattern string) *Future {
	l.mu.Lock()
	defer l.mu.Unlock()
	f := NewFuture()
	l.futures[pattern] = f
	return f
}

func (l *lazyRenderer) Render(f Frame) Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++

	pattern := f.Current().Pattern()
	if fut, ok := l.futures[pattern]; ok {
		if !fut.Settled() {
			return Pending(fut)
		}
		if fut.Err() != nil {
			return Ready("error:" + pattern)
		}
	}
	return Ready("view:" + pattern)
}

// recordingObserver is safe for use from the runtime goroutine.
type recordingObserver struct {
	mu        sync.Mutex
	events    []string
	errs      []error
	discarded chan string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{discarded: make(chan string, 16)}
}

func (o *recordingObserver) add(ev string) {
	o.mu.Lock()
	o.events = append(o.events, ev)
	o.mu.Unlock()
}

func (o *recordingObserver) Selected(url string, sel router.Selection) {
	o.add("selected " + url + " " + sel.Pattern())
}

func (o *recordingObserver) LoadStarted(tok *Token) {
	o.add("start " + tok.URL)
}

func (o *recordingObserver) LoadEnded(tok *Token, _ time.Duration, err error) {
	o.mu.Lock()
	o.errs = append(o.errs, err)
	o.mu.Unlock()
	o.add("end " + tok.URL)
}

func (o *recordingObserver) Discarded(tok *Token, reason string) {
	o.add(reason + " " + tok.URL)
	o.discarded <- reason + " " + tok.URL
}

func (o *recordingObserver) snapshot() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.events))
	copy(out, o.events)
	return out
}

// hookLog records hook calls in order.
type hookLog struct {
	calls []string
}

func (h *hookLog) hooks() Hooks {
	return Hooks{
		OnLoadStart: func(url string) { h.calls = append(h.calls, "start "+url) },
		OnLoadEnd:   func(url string) { h.calls = append(h.calls, "end "+url) },
	}
}

func patterns(f Frame) []string {
	out := make([]string, len(f.Selections))
	for i, s := range f.Selections {
		out[i] = s.Pattern()
	}
	return out
}
