package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/vango-dev/navrouter/internal/errors"
	"github.com/vango-dev/navrouter/pkg/router"
)

// Route is one manifest entry. It is the payload of the router entry built
// from it.
type Route struct {
	// Path is the route pattern. Default routes may omit it.
	Path string `json:"path,omitempty"`

	// View is the content key of the view template.
	View string `json:"view,omitempty"`

	// Title is an optional page title.
	Title string `json:"title,omitempty"`

	// Default marks the fallback route.
	Default bool `json:"default,omitempty"`
}

// Manifest declares the routes of a site in order.
//
//	{
//	  "routes": [
//	    {"path": "/", "view": "home.html"},
//	    {"path": "/users/:id", "view": "user.html"},
//	    {"default": true, "view": "404.html"}
//	  ]
//	}
type Manifest struct {
	Routes []Route `json:"routes"`
}

// Decode parses a manifest. Unknown fields are rejected.
func Decode(r io.Reader) (*Manifest, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, errors.New("M002").Wrap(err)
	}
	return &m, nil
}

// Load reads and decodes the manifest stored under key.
func Load(ctx context.Context, store Store, key string) (*Manifest, error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		if errors.HasCode(err, "M003") {
			return nil, err
		}
		return nil, errors.New("M001").WithSubject(key).Wrap(err)
	}
	m, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.FromError(err, "M002").WithSubject(key)
	}
	return m, nil
}

// LoadFile reads and decodes a manifest file.
func LoadFile(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		rerr := errors.New("M001").WithSubject(filename).Wrap(err)
		if stderrors.Is(err, fs.ErrNotExist) {
			rerr.WithSuggestion("Check routes.manifest in navrouter.json.")
		}
		return nil, rerr
	}
	m, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.FromError(err, "M002").WithSubject(filename)
	}
	return m, nil
}

// Router registers every route in declaration order. Each entry's payload
// is its Route.
func (m *Manifest) Router(opts ...router.Option) (*router.Router, error) {
	r := router.New(opts...)
	for i, rt := range m.Routes {
		var ropts []router.RouteOption
		if rt.Default {
			ropts = append(ropts, router.AsDefault())
		}
		if err := r.Add(rt.Path, rt, ropts...); err != nil {
			return nil, fmt.Errorf("routes[%d]: %w", i, err)
		}
	}
	return r, nil
}

// Views returns the distinct view keys in declaration order.
func (m *Manifest) Views() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, rt := range m.Routes {
		if rt.View == "" || seen[rt.View] {
			continue
		}
		seen[rt.View] = true
		keys = append(keys, rt.View)
	}
	return keys
}
