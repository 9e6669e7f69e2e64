package reactive

import "sync/atomic"

// Listener is anything that can be notified when a signal changes.
type Listener interface {
	// MarkDirty notifies the listener that the signal it watches changed.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used to deduplicate subscriptions.
	ID() uint64
}

// globalIDCounter hands out signal and listener identifiers.
var globalIDCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// funcListener adapts a callback to the Listener interface.
type funcListener struct {
	id uint64
	fn func()
}

func (l *funcListener) MarkDirty() { l.fn() }
func (l *funcListener) ID() uint64 { return l.id }

// ListenerFunc wraps fn as a Listener with a fresh identifier.
func ListenerFunc(fn func()) Listener {
	return &funcListener{id: nextID(), fn: fn}
}
