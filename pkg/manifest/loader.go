package manifest

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/navrouter/internal/errors"
	"github.com/vango-dev/navrouter/pkg/router"
	"github.com/vango-dev/navrouter/pkg/transition"
)

// ViewData is passed to view templates.
type ViewData struct {
	Route  Route
	Params map[string]string
	Query  map[string]string
	URL    string
}

// view is one cached template fetch.
type view struct {
	future *transition.Future
	tmpl   *template.Template
	err    error
}

// Loader is a transition.Renderer that fetches view templates lazily. The
// first render of a route whose template is not cached starts a fetch and
// returns Pending; once the fetch settles the template is executed.
type Loader struct {
	store  Store
	ctx    context.Context
	logger *slog.Logger

	timeout    time.Duration
	retryCount int
	retryDelay time.Duration

	mu    sync.Mutex
	views map[string]*view
	gen   uint64
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithRetry retries failed fetches count times, waiting delay in between.
func WithRetry(count int, delay time.Duration) LoaderOption {
	return func(l *Loader) {
		l.retryCount = count
		l.retryDelay = delay
	}
}

// WithTimeout bounds each fetch attempt. Zero means no bound.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithContext sets the context fetches run under.
func WithContext(ctx context.Context) LoaderOption {
	return func(l *Loader) {
		l.ctx = ctx
	}
}

// WithLoaderLogger sets the logger. Defaults to slog.Default().
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader reading templates from store.
func NewLoader(store Store, opts ...LoaderOption) *Loader {
	l := &Loader{
		store:  store,
		ctx:    context.Background(),
		logger: slog.Default(),
		views:  make(map[string]*view),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Render implements transition.Renderer.
func (l *Loader) Render(f transition.Frame) transition.Result {
	sel := f.Current()
	route, ok := routeOf(sel)
	if !ok || route.View == "" {
		return transition.Ready("")
	}

	v := l.view(route.View)
	if !v.future.Settled() {
		return transition.Pending(v.future)
	}
	if v.err != nil {
		return transition.Ready(errorView(v.err))
	}

	var buf bytes.Buffer
	err := v.tmpl.Execute(&buf, ViewData{
		Route:  route,
		Params: sel.Params,
		Query:  f.Location.Query,
		URL:    f.Location.URL,
	})
	if err != nil {
		l.logger.Warn("view execution failed", "view", route.View, "error", err)
		return transition.Ready(errorView(errors.New("M004").WithSubject(route.View).Wrap(err)))
	}
	return transition.Ready(buf.String())
}

// Preload fetches keys and waits until each fetch settles or ctx is done.
func (l *Loader) Preload(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		v := l.view(key)
		select {
		case <-v.future.Done():
			if v.err != nil {
				return v.err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Invalidate drops every cached template. Fetches already running still
// settle their futures but their results are not cached.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.gen++
	l.views = make(map[string]*view)
	l.mu.Unlock()
}

// view returns the cache entry for key, starting a fetch when there is none.
func (l *Loader) view(key string) *view {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.views[key]; ok {
		return v
	}
	v := &view{future: transition.NewFuture()}
	l.views[key] = v
	go l.fetch(key, v, l.gen)
	return v
}

func (l *Loader) fetch(key string, v *view, gen uint64) {
	var data []byte
	var err error
	for i := 0; i <= l.retryCount; i++ {
		if i > 0 {
			time.Sleep(l.retryDelay)
		}
		data, err = l.get(key)
		if err == nil || errors.HasCode(err, "M003") {
			break
		}
	}

	var tmpl *template.Template
	if err == nil {
		tmpl, err = template.New(key).Option("missingkey=zero").Parse(string(data))
		if err != nil {
			err = errors.New("M004").WithSubject(key).Wrap(err)
		}
	}

	l.mu.Lock()
	v.tmpl, v.err = tmpl, err
	if l.gen != gen && l.views[key] == v {
		delete(l.views, key)
	}
	l.mu.Unlock()

	if err != nil {
		l.logger.Warn("view fetch failed", "view", key, "error", err)
		v.future.Reject(err)
		return
	}
	l.logger.Debug("view loaded", "view", key)
	v.future.Resolve()
}

func (l *Loader) get(key string) ([]byte, error) {
	ctx := l.ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	return l.store.Get(ctx, key)
}

func routeOf(sel router.Selection) (Route, bool) {
	if sel.Empty() {
		return Route{}, false
	}
	switch p := sel.Entry.Payload.(type) {
	case Route:
		return p, true
	case *Route:
		if p == nil {
			return Route{}, false
		}
		return *p, true
	default:
		return Route{}, false
	}
}

func errorView(err error) string {
	return `<div class="nav-error">` + template.HTMLEscapeString(err.Error()) + `</div>`
}

var _ transition.Renderer = (*Loader)(nil)
