package location

import (
	"errors"
	"sync"
)

// MemorySource is an in-process Source and History with a linear history
// stack. It backs tests and the command line simulator.
type MemorySource struct {
	mu       sync.Mutex
	origin   string
	entries  []string
	index    int
	handlers map[int]EventHandler
	nextID   int
	closed   bool
}

// ErrSourceClosed is returned by Listen after Close.
var ErrSourceClosed = errors.New("location: source closed")

// NewMemorySource creates a source for origin whose history starts at
// initialURL.
func NewMemorySource(origin, initialURL string) *MemorySource {
	if initialURL == "" {
		initialURL = "/"
	}
	return &MemorySource{
		origin:   origin,
		entries:  []string{initialURL},
		handlers: make(map[int]EventHandler),
	}
}

// Origin implements Source.
func (m *MemorySource) Origin() string {
	return m.origin
}

// CurrentURL implements Source.
func (m *MemorySource) CurrentURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index]
}

// Listen implements Source.
func (m *MemorySource) Listen(handler EventHandler) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrSourceClosed
	}
	id := m.nextID
	m.nextID++
	m.handlers[id] = handler
	return func() {
		m.mu.Lock()
		delete(m.handlers, id)
		m.mu.Unlock()
	}, nil
}

// Listeners returns the number of registered handlers.
func (m *MemorySource) Listeners() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

// Close makes later Listen calls fail.
func (m *MemorySource) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

// Push implements History. Forward entries are discarded.
func (m *MemorySource) Push(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.index+1], url)
	m.index++
}

// Replace implements History.
func (m *MemorySource) Replace(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.index] = url
}

// Entries returns a copy of the history stack and the current index.
func (m *MemorySource) Entries() ([]string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	copy(out, m.entries)
	return out, m.index
}

// Click delivers a click on an anchor with href and reports whether a
// listener prevented the default.
func (m *MemorySource) Click(href string) bool {
	ev := &ClickEvent{Anchor: href}
	m.emit(ev)
	return ev.DefaultPrevented()
}

// Back moves one entry back and emits a PopEvent. It reports false at the
// start of history.
func (m *MemorySource) Back() bool {
	return m.step(-1)
}

// Forward moves one entry forward and emits a PopEvent.
func (m *MemorySource) Forward() bool {
	return m.step(1)
}

func (m *MemorySource) step(delta int) bool {
	m.mu.Lock()
	next := m.index + delta
	if next < 0 || next >= len(m.entries) {
		m.mu.Unlock()
		return false
	}
	m.index = next
	url := m.entries[next]
	m.mu.Unlock()

	m.emit(PopEvent{URL: url})
	return true
}

func (m *MemorySource) emit(ev Event) {
	m.mu.Lock()
	handlers := make([]EventHandler, 0, len(m.handlers))
	for i := 0; i < m.nextID; i++ {
		if h, ok := m.handlers[i]; ok {
			handlers = append(handlers, h)
		}
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
