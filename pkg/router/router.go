package router

import (
	"fmt"
	"sync"

	"github.com/vango-dev/navrouter/internal/errors"
	"github.com/vango-dev/navrouter/pkg/routepath"
)

// Router holds the declared routes and selects the best one for a path.
// It is safe for concurrent use; registration normally happens before the
// first Select.
type Router struct {
	mu           sync.RWMutex
	entries      []Entry
	ordered      []Entry // cached OrderRoutes(entries); nil when stale
	allowPartial bool
}

// Option configures a Router.
type Option func(*Router)

// WithPartialMatch lets patterns match paths with extra trailing segments.
func WithPartialMatch() Option {
	return func(r *Router) {
		r.allowPartial = true
	}
}

// New creates an empty router.
func New(opts ...Option) *Router {
	r := &Router{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RouteOption configures a single route registration.
type RouteOption func(*Entry)

// AsDefault marks the route as the fallback route.
func AsDefault() RouteOption {
	return func(e *Entry) {
		e.Default = true
	}
}

// Add registers a route. The pattern is validated; an invalid pattern is
// rejected with error code R001 and nothing is registered.
//
// Example:
//
//	r.Add("/users/new", newUserView)
//	r.Add("/users/:id", userView)
//	r.Add("", notFoundView, router.AsDefault())
func (r *Router) Add(pattern string, payload any, opts ...RouteOption) error {
	e := Entry{Pattern: pattern, Payload: payload}
	for _, opt := range opts {
		opt(&e)
	}

	if pattern == "" && !e.Default {
		return errors.New("R002")
	}
	if err := routepath.ValidatePattern(pattern); err != nil {
		return errors.New("R001").WithSubject(pattern).Wrap(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e.Index = len(r.entries)
	r.entries = append(r.entries, e)
	r.ordered = nil
	return nil
}

// MustAdd is like Add but panics on error. Intended for static route tables.
func (r *Router) MustAdd(pattern string, payload any, opts ...RouteOption) {
	if err := r.Add(pattern, payload, opts...); err != nil {
		panic(fmt.Sprintf("router: %v", err))
	}
}

// Len returns the number of registered routes.
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Entries returns the routes in declaration order.
func (r *Router) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Ordered returns the routes in selection order (most specific first).
func (r *Router) Ordered() []Entry {
	ordered := r.orderedEntries()
	out := make([]Entry, len(ordered))
	copy(out, ordered)
	return out
}

func (r *Router) orderedEntries() []Entry {
	r.mu.RLock()
	ordered := r.ordered
	r.mu.RUnlock()
	if ordered != nil {
		return ordered
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ordered == nil {
		r.ordered = OrderRoutes(r.entries)
	}
	return r.ordered
}

func (r *Router) match(path, pattern string) (routepath.Params, bool) {
	if r.allowPartial {
		return routepath.MatchPartial(path, pattern)
	}
	return routepath.Match(path, pattern)
}

// Select picks the route for path. Routes are tried most specific first and
// the first non-default match wins. When nothing matches, the first default
// route is selected; without one the selection is empty. The selection's
// Entry is a copy owned by the caller.
func (r *Router) Select(path string) Selection {
	ordered := r.orderedEntries()

	var fallback *Entry
	for i := range ordered {
		e := &ordered[i]
		if e.Default {
			if fallback == nil {
				fallback = e
			}
			continue
		}
		if params, ok := r.match(path, e.Pattern); ok {
			return Selection{Entry: clone(e), Params: params}
		}
	}

	if fallback == nil {
		return Selection{}
	}
	params, ok := r.match(path, fallback.Pattern)
	if !ok || fallback.Pattern == "" {
		params = routepath.Params{}
	}
	return Selection{Entry: clone(fallback), Params: params}
}

// MatchAll returns every non-default route matching path, in selection
// order. Only the first is ever rendered; the rest are useful for
// diagnosing shadowed routes.
func (r *Router) MatchAll(path string) []Selection {
	var out []Selection
	ordered := r.orderedEntries()
	for i := range ordered {
		e := &ordered[i]
		if e.Default {
			continue
		}
		if params, ok := r.match(path, e.Pattern); ok {
			out = append(out, Selection{Entry: clone(e), Params: params})
		}
	}
	return out
}

// clone detaches a selected entry from the cached ordering.
func clone(e *Entry) *Entry {
	c := *e
	return &c
}
