// Package router ranks declared routes by specificity and selects the one
// that renders for a path.
//
// # Patterns
//
// Patterns are "/"-separated segments:
//
//	/users/new      literal segments, matched exactly
//	/users/:id      required parameter
//	/archive/:year? optional parameter
//	/files/:path+   one or more remaining segments
//	/files/:path*   zero or more remaining segments
//
// # Ranking
//
// Each segment ranks literal (5) > required (4) > optional (3) > rest+ (2) >
// rest* (1). A route's key is its sequence of segment ranks compared left to
// right, so "/users/new" (55) is tried before "/users/:id" (54). Default routes
// rank last. Ties keep declaration order.
//
// # Usage
//
//	r := router.New()
//	r.MustAdd("/users/:id", userView)
//	r.MustAdd("/users/new", newUserView)
//	r.MustAdd("", notFound, router.AsDefault())
//
//	sel := r.Select("/users/new")
//	// sel.Entry.Payload == newUserView, sel.Params is empty
//
//	sel = r.Select("/users/42")
//	// sel.Params["id"] == "42"
//
// # Typed parameters
//
// Params are strings. Callers that want typed values bind them with
// Selection.Bind, or ParamParser directly, using `param` struct tags:
//
//	var p struct {
//	    ID   int      `param:"id,required"`
//	    Year *int     `param:"year"` // nil when the optional segment is absent
//	    Path []string `param:"path"` // rest capture split on "/"
//	}
//	err := sel.Bind(&p)
//
// The router itself never binds; Bind is for views and handlers.
package router
