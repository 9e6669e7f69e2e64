package wsnav

import (
	"fmt"

	"github.com/vango-dev/navrouter/pkg/transition"
)

// MessageType names a bridge message.
type MessageType string

// Client to server.
const (
	// TypeClick reports an anchor activation. Href is the anchor's href.
	TypeClick MessageType = "click"

	// TypePop reports a back/forward move to URL.
	TypePop MessageType = "popstate"
)

// Server to client.
const (
	TypePush      MessageType = "push"
	TypeReplace   MessageType = "replace"
	TypeFrame     MessageType = "frame"
	TypeLoadStart MessageType = "loadstart"
	TypeLoadEnd   MessageType = "loadend"
	TypeError     MessageType = "error"
)

// Message is the JSON envelope for both directions.
type Message struct {
	Type MessageType `json:"type"`

	URL  string `json:"url,omitempty"`
	Href string `json:"href,omitempty"`

	// Frame fields.
	Seq      uint64            `json:"seq,omitempty"`
	Route    string            `json:"route,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	Previous string            `json:"previous,omitempty"`
	Pending  bool              `json:"pending,omitempty"`
	View     string            `json:"view,omitempty"`

	// Error fields.
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// frameMessage converts a frame for the wire.
func frameMessage(f transition.Frame) Message {
	cur := f.Current()
	msg := Message{
		Type:    TypeFrame,
		URL:     f.Location.URL,
		Seq:     f.Seq,
		Route:   cur.Pattern(),
		Params:  cur.Params,
		Pending: f.Pending,
		View:    viewString(f.View),
	}
	if prev, ok := f.Previous(); ok {
		msg.Previous = prev.Pattern()
	}
	return msg
}

func viewString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
