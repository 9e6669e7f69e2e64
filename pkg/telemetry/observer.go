package telemetry

import (
	"time"

	"github.com/vango-dev/navrouter/pkg/router"
	"github.com/vango-dev/navrouter/pkg/transition"
)

// Observers fans transition events out to several observers in order.
// Nil entries are skipped.
type Observers []transition.Observer

// Selected implements transition.Observer.
func (o Observers) Selected(url string, sel router.Selection) {
	for _, obs := range o {
		if obs != nil {
			obs.Selected(url, sel)
		}
	}
}

// LoadStarted implements transition.Observer.
func (o Observers) LoadStarted(tok *transition.Token) {
	for _, obs := range o {
		if obs != nil {
			obs.LoadStarted(tok)
		}
	}
}

// LoadEnded implements transition.Observer.
func (o Observers) LoadEnded(tok *transition.Token, elapsed time.Duration, err error) {
	for _, obs := range o {
		if obs != nil {
			obs.LoadEnded(tok, elapsed, err)
		}
	}
}

// Discarded implements transition.Observer.
func (o Observers) Discarded(tok *transition.Token, reason string) {
	for _, obs := range o {
		if obs != nil {
			obs.Discarded(tok, reason)
		}
	}
}
