// Package transition decides what is on screen while the route for a new
// URL is being prepared.
//
// On every URL change the Controller selects a route and asks the Renderer
// for a view. A renderer that can answer immediately returns Ready and the
// transition commits on the spot. One that needs to wait (lazy content,
// a data fetch) returns Pending with an Awaitable; the controller then keeps
// the previous selection and view in the frame until the signal settles, so
// the screen never blanks.
//
// Only the newest signal may commit. A resolution whose token is no longer
// the pending one, or whose URL is no longer current, is discarded:
//
//	/a pending (f1) -> /b pending (f2) -> f1 settles: discarded
//	                                   -> f2 settles: /b commits
//
// A rejected signal is not fatal: the episode ends, OnLoadEnd fires and the
// current selection is rendered again.
//
// Runtime runs a Controller on one goroutine and turns Awaitables into loop
// messages:
//
//	rt := transition.NewRuntime(transition.Config{Routes: routes, Renderer: r})
//	stop := rt.Follow(store)
//	defer stop()
//	go rt.Run(ctx)
package transition
