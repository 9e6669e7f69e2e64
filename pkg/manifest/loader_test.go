package manifest

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/vango-dev/navrouter/internal/errors"
	"github.com/vango-dev/navrouter/pkg/location"
	"github.com/vango-dev/navrouter/pkg/router"
	"github.com/vango-dev/navrouter/pkg/transition"
)

// gatedStore blocks every Get until release is closed.
type gatedStore struct {
	inner   Store
	release chan struct{}

	mu    sync.Mutex
	calls int
	fail  int
}

func newGatedStore(inner Store) *gatedStore {
	return &gatedStore{inner: inner, release: make(chan struct{})}
}

func (s *gatedStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	fail := s.fail > 0
	if fail {
		s.fail--
	}
	s.mu.Unlock()

	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if fail {
		return nil, stderrors.New("transient")
	}
	return s.inner.Get(ctx, key)
}

func (s *gatedStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func siteRoutes(t *testing.T) *router.Router {
	t.Helper()
	m := &Manifest{Routes: []Route{
		{Path: "/", View: "home.html"},
		{Path: "/users/:id", View: "user.html", Title: "User"},
		{Path: "/plain"},
		{Path: "/broken", View: "broken.html"},
		{Path: "/gone", View: "gone.html"},
	}}
	r, err := m.Router()
	if err != nil {
		t.Fatal(err)
	}
	return r
}

var siteFS = fstest.MapFS{
	"home.html":   {Data: []byte("<h1>Home</h1>")},
	"user.html":   {Data: []byte(`<h1>{{.Route.Title}} {{.Params.id}}</h1><p>{{.Query.tab}}</p>`)},
	"broken.html": {Data: []byte("{{.Nope")},
}

func frameFor(r *router.Router, url string) transition.Frame {
	loc := location.Parse(url, "")
	return transition.Frame{Location: loc, Selections: []router.Selection{r.Select(loc.Path)}}
}

func waitSettled(t *testing.T, res transition.Result) {
	t.Helper()
	if !res.IsPending() {
		t.Fatal("expected pending result")
	}
	select {
	case <-res.Await.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("fetch never settled")
	}
}

func TestLoaderPendingThenReady(t *testing.T) {
	routes := siteRoutes(t)
	store := newGatedStore(NewFSStore(siteFS))
	l := NewLoader(store)

	f := frameFor(routes, "/users/42?tab=posts")
	first := l.Render(f)
	if !first.IsPending() {
		t.Fatalf("first render = %+v, want pending", first)
	}
	if again := l.Render(f); again.Await != first.Await {
		t.Error("second render while fetching should share the pending signal")
	}

	close(store.release)
	waitSettled(t, first)
	if err := first.Await.Err(); err != nil {
		t.Fatalf("Err = %v", err)
	}

	res := l.Render(f)
	if res.IsPending() {
		t.Fatal("render after fetch still pending")
	}
	if want := "<h1>User 42</h1><p>posts</p>"; res.View != want {
		t.Errorf("View = %q, want %q", res.View, want)
	}
	if store.Calls() != 1 {
		t.Errorf("store calls = %d, want 1", store.Calls())
	}
}

func TestLoaderRouteWithoutView(t *testing.T) {
	l := NewLoader(NewFSStore(siteFS))
	for _, url := range []string{"/plain", "/no/route"} {
		res := l.Render(frameFor(siteRoutes(t), url))
		if res.IsPending() || res.View != "" {
			t.Errorf("Render(%q) = %+v, want empty ready view", url, res)
		}
	}
}

func TestLoaderErrors(t *testing.T) {
	routes := siteRoutes(t)
	l := NewLoader(NewFSStore(siteFS))

	tests := []struct {
		url  string
		code string
	}{
		{"/gone", "M003"},
		{"/broken", "M004"},
	}
	for _, tt := range tests {
		f := frameFor(routes, tt.url)
		first := l.Render(f)
		waitSettled(t, first)
		if !errors.HasCode(first.Await.Err(), tt.code) {
			t.Errorf("%s: Err = %v, want %s", tt.url, first.Await.Err(), tt.code)
		}

		res := l.Render(f)
		view, _ := res.View.(string)
		if res.IsPending() || !strings.Contains(view, "nav-error") || !strings.Contains(view, tt.code) {
			t.Errorf("%s: View = %q, want error view", tt.url, view)
		}
	}
}

func TestLoaderRetry(t *testing.T) {
	store := newGatedStore(NewFSStore(siteFS))
	store.fail = 2
	close(store.release)

	l := NewLoader(store, WithRetry(2, time.Millisecond))
	if err := l.Preload(context.Background(), "home.html"); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	if store.Calls() != 3 {
		t.Errorf("store calls = %d, want 3", store.Calls())
	}
}

func TestLoaderRetryStopsOnMissing(t *testing.T) {
	store := newGatedStore(NewFSStore(siteFS))
	close(store.release)

	l := NewLoader(store, WithRetry(3, time.Millisecond))
	if err := l.Preload(context.Background(), "gone.html"); !errors.HasCode(err, "M003") {
		t.Fatalf("Preload error = %v, want M003", err)
	}
	if store.Calls() != 1 {
		t.Errorf("store calls = %d, want 1", store.Calls())
	}
}

func TestLoaderTimeout(t *testing.T) {
	store := newGatedStore(NewFSStore(siteFS))
	l := NewLoader(store, WithTimeout(10*time.Millisecond))

	err := l.Preload(context.Background(), "home.html")
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Preload error = %v, want deadline exceeded", err)
	}
}

func TestLoaderPreloadContext(t *testing.T) {
	store := newGatedStore(NewFSStore(siteFS))
	l := NewLoader(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Preload(ctx, "home.html"); !stderrors.Is(err, context.Canceled) {
		t.Fatalf("Preload error = %v, want canceled", err)
	}
	close(store.release)
}

func TestLoaderInvalidate(t *testing.T) {
	store := newGatedStore(NewFSStore(siteFS))
	close(store.release)
	l := NewLoader(store)

	if err := l.Preload(context.Background(), "home.html"); err != nil {
		t.Fatal(err)
	}
	if res := l.Render(frameFor(siteRoutes(t), "/")); res.IsPending() {
		t.Fatal("cached view should render immediately")
	}

	l.Invalidate()
	if res := l.Render(frameFor(siteRoutes(t), "/")); !res.IsPending() {
		t.Fatal("render after Invalidate should refetch")
	}
	if err := l.Preload(context.Background(), "home.html"); err != nil {
		t.Fatal(err)
	}
	if store.Calls() != 2 {
		t.Errorf("store calls = %d, want 2", store.Calls())
	}
}

func TestLoaderDrivesController(t *testing.T) {
	routes := siteRoutes(t)
	store := newGatedStore(NewFSStore(siteFS))
	var frames []transition.Frame
	c := transition.NewController(transition.Config{
		Routes:   routes,
		Renderer: NewLoader(store),
		Sink:     func(f transition.Frame) { frames = append(frames, f) },
	})

	c.SetLocation(location.Parse("/users/9", ""))
	tok := c.Pending()
	if tok == nil {
		t.Fatal("expected a pending transition")
	}

	close(store.release)
	<-tok.Await.Done()
	if !c.Resolve(tok, tok.Await.Err()) {
		t.Fatal("resolution did not commit")
	}

	last := c.Frame()
	if last.Pending || last.View != "<h1>User 9</h1><p></p>" {
		t.Errorf("committed frame = %+v", last)
	}
	if len(frames) < 2 {
		t.Errorf("frames = %d, want at least 2", len(frames))
	}
}
