package location

// Event is a navigation input delivered by a Source.
type Event interface {
	navigationEvent()
}

// Activation is a click-like event. Href reports the destination of the
// anchor the event targets, if any.
type Activation interface {
	Href() (href string, ok bool)

	// PreventDefault suppresses the environment's own navigation.
	PreventDefault()
}

// ClickEvent is the stock Activation.
type ClickEvent struct {
	// Anchor is the href of the enclosing anchor element; empty when the
	// click did not land on one.
	Anchor string

	prevented bool
}

// Href implements Activation.
func (c *ClickEvent) Href() (string, bool) {
	return c.Anchor, c.Anchor != ""
}

// PreventDefault implements Activation.
func (c *ClickEvent) PreventDefault() {
	c.prevented = true
}

// DefaultPrevented reports whether the store took over the click.
func (c *ClickEvent) DefaultPrevented() bool {
	return c.prevented
}

func (*ClickEvent) navigationEvent() {}

// PopEvent reports a back/forward move to URL.
type PopEvent struct {
	URL string
}

func (PopEvent) navigationEvent() {}

// EventHandler receives navigation events.
type EventHandler func(Event)

// Source delivers navigation events and exposes the environment's state.
type Source interface {
	// Origin returns scheme://host of the current document.
	Origin() string

	// CurrentURL returns the current path and query.
	CurrentURL() string

	// Listen registers handler until the returned cancel function is called.
	Listen(handler EventHandler) (cancel func(), err error)
}

// History receives history writes. Both calls are assumed to succeed.
type History interface {
	Push(url string)
	Replace(url string)
}
