package transition

import (
	"github.com/vango-dev/navrouter/pkg/location"
	"github.com/vango-dev/navrouter/pkg/router"
)

// Frame is one render request. Selections is [current] or, while a
// transition is pending (and for the single frame that commits it),
// [current, previous]. Empty selections are left out, so a location no
// route matches renders an empty list, or [previous] while one is retained.
type Frame struct {
	// Seq increases by one for every frame the controller produces.
	Seq uint64

	// Location is the location the current selection was made for.
	Location location.Location

	Selections []router.Selection

	// Retained is true when the last element of Selections is the previous
	// selection kept on screen.
	Retained bool

	// View is what should be on screen after this frame: the current
	// selection's view once ready, otherwise the last committed view.
	View any

	// Pending is true while the current selection waits on a signal.
	Pending bool
}

// Current returns the current selection.
func (f Frame) Current() router.Selection {
	n := len(f.Selections)
	if f.Retained {
		n--
	}
	if n <= 0 {
		return router.Selection{}
	}
	return f.Selections[0]
}

// Previous returns the retained previous selection, if any.
func (f Frame) Previous() (router.Selection, bool) {
	if !f.Retained || len(f.Selections) == 0 {
		return router.Selection{}, false
	}
	return f.Selections[len(f.Selections)-1], true
}

// Renderer produces a view for a frame.
type Renderer interface {
	Render(Frame) Result
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame) Result

// Render implements Renderer.
func (fn RendererFunc) Render(f Frame) Result {
	return fn(f)
}
