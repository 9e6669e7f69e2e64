// Package location parses URLs into router locations and keeps the current
// one in a reactive store.
//
// The store is driven by three inputs: same-origin anchor clicks (pushed to
// history), back/forward pops (no history write) and explicit Navigate
// calls. Subscribers receive a fresh Location after every accepted change.
//
//	src := location.NewMemorySource("https://app.example", "/")
//	store := location.NewStore("", "/", location.WithHistory(src))
//	if err := store.Start(ctx, src); err != nil {
//	    return err
//	}
//	defer store.Stop()
//
//	stop := store.Subscribe(func(loc location.Location) {
//	    fmt.Println(loc.Path, loc.Query)
//	})
//	defer stop()
package location
