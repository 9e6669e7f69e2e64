package router

import "github.com/vango-dev/navrouter/pkg/routepath"

// Entry is one declared route.
type Entry struct {
	// Pattern is the route pattern (e.g., "/users/:id").
	// Default entries may leave it empty.
	Pattern string

	// Default marks the fallback route, used only when nothing else matches.
	Default bool

	// Index is the declaration order, used to break rank ties.
	Index int

	// Payload is the view the entry selects. The router never inspects it.
	Payload any
}

// Selection is the outcome of choosing a route for one path.
type Selection struct {
	// Entry is a copy of the selected route, or nil when nothing matched
	// and no default route is declared. Changing it does not affect the
	// router.
	Entry *Entry

	// Params are the parameters extracted from the path.
	Params routepath.Params
}

// Empty reports whether no route was selected.
func (s Selection) Empty() bool {
	return s.Entry == nil
}

// Pattern returns the selected route's pattern, or "" for an empty selection.
func (s Selection) Pattern() string {
	if s.Entry == nil {
		return ""
	}
	return s.Entry.Pattern
}

// Bind populates a struct from the selection's params using `param` tags.
//
//	var p struct {
//	    ID int `param:"id"`
//	}
//	if err := sel.Bind(&p); err != nil { ... }
func (s Selection) Bind(target any) error {
	return NewParamParser().Parse(s.Params, target)
}
