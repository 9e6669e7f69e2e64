package transition

import (
	"log/slog"
	"time"

	"github.com/vango-dev/navrouter/pkg/location"
	"github.com/vango-dev/navrouter/pkg/router"
)

// Hooks are optional notifications around a pendency episode. Each episode
// calls OnLoadStart then OnLoadEnd exactly once, with the URL that started
// it. A transition that commits synchronously calls neither.
type Hooks struct {
	OnLoadStart func(url string)
	OnLoadEnd   func(url string)
}

func (h Hooks) loadStart(url string) {
	if h.OnLoadStart != nil {
		h.OnLoadStart(url)
	}
}

func (h Hooks) loadEnd(url string) {
	if h.OnLoadEnd != nil {
		h.OnLoadEnd(url)
	}
}

// Reasons passed to Observer.Discarded.
const (
	// DiscardSuperseded: the URL changed while the episode was pending.
	DiscardSuperseded = "superseded"

	// DiscardStale: a signal settled after it stopped being the one the
	// controller waits for.
	DiscardStale = "stale"
)

// Observer receives controller events for metrics and tracing.
type Observer interface {
	// Selected is called once per URL change with the chosen route.
	Selected(url string, sel router.Selection)

	// LoadStarted is called when a pendency episode begins. tok identifies
	// the episode in the calls that end it.
	LoadStarted(tok *Token)

	// LoadEnded is called when a pendency episode commits. err is the
	// signal's rejection, if any.
	LoadEnded(tok *Token, elapsed time.Duration, err error)

	// Discarded is called when a pending episode is abandoned or a settled
	// signal is ignored.
	Discarded(tok *Token, reason string)
}

type nopObserver struct{}

func (nopObserver) Selected(string, router.Selection)      {}
func (nopObserver) LoadStarted(*Token)                     {}
func (nopObserver) LoadEnded(*Token, time.Duration, error) {}
func (nopObserver) Discarded(*Token, string)               {}

// Token identifies one pending signal. Tokens are compared by identity: a
// resolution only commits if its token is still the controller's pending
// token and the URL that produced it is still current.
type Token struct {
	Await Awaitable
	URL   string
}

// Config configures a Controller.
type Config struct {
	// Routes selects the route for each location. Required.
	Routes *router.Router

	// Renderer produces views. A nil renderer makes every frame ready with
	// a nil view.
	Renderer Renderer

	Hooks Hooks

	// Observer receives transition events. Optional.
	Observer Observer

	// Sink receives every frame the controller produces. Optional.
	Sink func(Frame)

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Controller is the transition state machine. It is not safe for concurrent
// use; Runtime owns one on a single goroutine. Calls made from inside a
// hook, the renderer or the sink are queued and run after the current
// transition step finishes.
type Controller struct {
	routes   *router.Router
	renderer Renderer
	hooks    Hooks
	observer Observer
	sink     func(Frame)
	logger   *slog.Logger
	now      func() time.Time

	started bool
	loc     location.Location
	sel     router.Selection

	// prev is the selection kept on screen while the current one is
	// pending, and view is the last committed view.
	prev *router.Selection
	view any

	pending   *Token
	loadStart time.Time

	seq   uint64
	last  Frame
	busy  bool
	queue []func()
}

// NewController creates a controller. It renders nothing until the first
// SetLocation.
func NewController(cfg Config) *Controller {
	if cfg.Routes == nil {
		cfg.Routes = router.New()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = RendererFunc(func(Frame) Result { return Ready(nil) })
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Controller{
		routes:   cfg.Routes,
		renderer: cfg.Renderer,
		hooks:    cfg.Hooks,
		observer: cfg.Observer,
		sink:     cfg.Sink,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
}

// SetLocation handles a URL change. A location with the same URL as the
// current one is ignored.
func (c *Controller) SetLocation(loc location.Location) {
	c.do(func() { c.setLocation(loc) })
}

// Resolve reports that tok's signal settled with err. It returns true when
// the resolution committed; stale tokens are discarded and return false, as
// do calls queued from inside a transition step.
func (c *Controller) Resolve(tok *Token, err error) bool {
	committed := false
	c.do(func() { committed = c.resolve(tok, err) })
	return committed
}

// Pending returns the token being waited on, or nil.
func (c *Controller) Pending() *Token {
	return c.pending
}

// Location returns the current location.
func (c *Controller) Location() location.Location {
	return c.loc
}

// Frame returns the most recent frame.
func (c *Controller) Frame() Frame {
	return c.last
}

func (c *Controller) do(step func()) {
	if c.busy {
		c.queue = append(c.queue, step)
		return
	}
	c.busy = true
	defer func() { c.busy = false }()

	step()
	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		next()
	}
}

func (c *Controller) setLocation(loc location.Location) {
	if c.started && loc.URL == c.loc.URL {
		return
	}

	if c.pending != nil {
		// The screen still shows whatever the abandoned episode kept, so
		// prev stays as it is. The episode still ends.
		abandoned := c.pending
		c.pending = nil
		c.logger.Debug("pending transition superseded", "url", abandoned.URL, "next", loc.URL)
		c.hooks.loadEnd(abandoned.URL)
		c.observer.Discarded(abandoned, DiscardSuperseded)
	} else if c.started {
		prev := c.sel
		c.prev = &prev
	}

	c.started = true
	c.loc = loc
	c.sel = c.routes.Select(loc.Path)
	c.observer.Selected(loc.URL, c.sel)
	c.render()
}

func (c *Controller) resolve(tok *Token, err error) bool {
	if tok == nil {
		return false
	}
	if tok != c.pending || tok.URL != c.loc.URL {
		c.logger.Debug("stale signal discarded", "url", tok.URL, "current", c.loc.URL)
		c.observer.Discarded(tok, DiscardStale)
		return false
	}

	c.pending = nil
	c.prev = nil
	elapsed := c.now().Sub(c.loadStart)
	if err != nil {
		c.logger.Warn("pending signal rejected", "url", tok.URL, "error", err)
	} else {
		c.logger.Debug("transition committed", "url", tok.URL, "elapsed", elapsed)
	}
	c.hooks.loadEnd(tok.URL)
	c.observer.LoadEnded(tok, elapsed, err)
	c.render()
	return true
}

// render asks the renderer for the current frame. A ready result commits
// and drops the previous selection after this frame; a pending result opens
// a new episode.
func (c *Controller) render() {
	c.seq++
	frame := Frame{
		Seq:      c.seq,
		Location: c.loc,
	}
	frame.Selections, frame.Retained = c.selections()

	res := c.renderer.Render(frame)
	if res.IsPending() {
		c.pending = &Token{Await: res.Await, URL: c.loc.URL}
		c.loadStart = c.now()
		frame.Pending = true
		if c.prev != nil {
			frame.View = c.view
		}
		c.logger.Debug("transition pending", "url", c.loc.URL, "route", c.sel.Pattern())
		c.hooks.loadStart(c.loc.URL)
		c.observer.LoadStarted(c.pending)
		c.emit(frame)
		return
	}

	c.view = res.View
	c.prev = nil
	frame.View = res.View
	c.emit(frame)
}

// selections lists the current selection, then the retained previous one.
// Empty selections are omitted.
func (c *Controller) selections() ([]router.Selection, bool) {
	out := make([]router.Selection, 0, 2)
	if !c.sel.Empty() {
		out = append(out, c.sel)
	}
	retained := c.prev != nil && !c.prev.Empty()
	if retained {
		out = append(out, *c.prev)
	}
	return out, retained
}

func (c *Controller) emit(f Frame) {
	c.last = f
	if c.sink != nil {
		c.sink(f)
	}
}
