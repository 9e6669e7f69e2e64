package wsnav

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/navrouter/internal/errors"
	"github.com/vango-dev/navrouter/pkg/location"
	"github.com/vango-dev/navrouter/pkg/routepath"
	"github.com/vango-dev/navrouter/pkg/transition"
)

// Conn is one thin client. It is the navigation source and history sink of
// the client's location store, and the sink of its frames.
type Conn struct {
	ws       *websocket.Conn
	origin   string
	logger   *slog.Logger
	recorder Recorder

	writeMu sync.Mutex

	mu       sync.Mutex
	current  string
	handlers map[int]location.EventHandler
	nextID   int
}

func newConn(ws *websocket.Conn, origin, initialURL string, logger *slog.Logger, recorder Recorder) *Conn {
	return &Conn{
		ws:       ws,
		origin:   origin,
		current:  initialURL,
		logger:   logger,
		recorder: recorder,
		handlers: make(map[int]location.EventHandler),
	}
}

// Origin implements location.Source.
func (c *Conn) Origin() string {
	return c.origin
}

// CurrentURL implements location.Source.
func (c *Conn) CurrentURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Listen implements location.Source.
func (c *Conn) Listen(handler location.EventHandler) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.handlers[id] = handler
	return func() {
		c.mu.Lock()
		delete(c.handlers, id)
		c.mu.Unlock()
	}, nil
}

// Push implements location.History.
func (c *Conn) Push(url string) {
	c.setCurrent(url)
	c.send(Message{Type: TypePush, URL: url})
}

// Replace implements location.History.
func (c *Conn) Replace(url string) {
	c.setCurrent(url)
	c.send(Message{Type: TypeReplace, URL: url})
}

// SendFrame sends a frame to the client.
func (c *Conn) SendFrame(f transition.Frame) {
	c.send(frameMessage(f))
}

func (c *Conn) hooks() transition.Hooks {
	return transition.Hooks{
		OnLoadStart: func(url string) { c.send(Message{Type: TypeLoadStart, URL: url}) },
		OnLoadEnd:   func(url string) { c.send(Message{Type: TypeLoadEnd, URL: url}) },
	}
}

func (c *Conn) setCurrent(url string) {
	c.mu.Lock()
	c.current = url
	c.mu.Unlock()
}

// send writes msg. Write errors are logged; the read loop notices the
// broken connection and tears it down.
func (c *Conn) send(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("encode message", "type", msg.Type, "error", err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Debug("write failed", "type", msg.Type, "error", err)
	}
}

func (c *Conn) sendError(err *errors.RouterError) {
	c.send(Message{Type: TypeError, Code: err.Code, Error: err.Error()})
}

// readLoop decodes client messages until the connection fails.
func (c *Conn) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		c.handle(data)
	}
}

func (c *Conn) handle(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.protocolError("decode", errors.New("P001").Wrap(err))
		return
	}

	switch msg.Type {
	case TypeClick:
		c.emit(&location.ClickEvent{Anchor: msg.Href})

	case TypePop:
		url, err := routepath.CanonicalizeAndValidateNavPath(msg.URL)
		if err != nil {
			c.protocolError("target", errors.New("P002").WithSubject(msg.URL).Wrap(err))
			return
		}
		c.setCurrent(url)
		c.emit(location.PopEvent{URL: url})

	default:
		c.protocolError("unknown", errors.New("P001").WithSubject(string(msg.Type)))
	}
}

func (c *Conn) protocolError(kind string, err *errors.RouterError) {
	c.logger.Warn("protocol error", "kind", kind, "error", err)
	if c.recorder != nil {
		c.recorder.ProtocolError(kind)
	}
	c.sendError(err)
}

func (c *Conn) emit(ev location.Event) {
	c.mu.Lock()
	handlers := make([]location.EventHandler, 0, len(c.handlers))
	for i := 0; i < c.nextID; i++ {
		if h, ok := c.handlers[i]; ok {
			handlers = append(handlers, h)
		}
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
