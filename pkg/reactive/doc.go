// Package reactive provides the observable value container behind the
// location store.
//
// A Signal holds one value and notifies its subscribers after every change.
// Subscriptions are explicit: Subscribe returns the function that ends them,
// so owners can scope listening to a Start/Stop lifecycle.
//
//	url := reactive.NewSignal("/")
//	stop := url.Subscribe(func(v string) { log.Println("now at", v) })
//	defer stop()
//
//	url.Set("/users/1") // logs "now at /users/1"
package reactive
