package wsnav

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/navrouter/pkg/router"
	"github.com/vango-dev/navrouter/pkg/transition"
)

const readTimeout = 2 * time.Second

type countingRecorder struct {
	mu     sync.Mutex
	open   int
	errors map[string]int
}

func (r *countingRecorder) ConnectionOpened() { r.mu.Lock(); r.open++; r.mu.Unlock() }
func (r *countingRecorder) ConnectionClosed() { r.mu.Lock(); r.open--; r.mu.Unlock() }

func (r *countingRecorder) ProtocolError(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errors == nil {
		r.errors = make(map[string]int)
	}
	r.errors[kind]++
}

func (r *countingRecorder) errorCount(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors[kind]
}

func testRoutes() *router.Router {
	r := router.New()
	r.MustAdd("/", "home")
	r.MustAdd("/users/:id", "user")
	r.MustAdd("/slow", "slow")
	r.MustAdd("", "not found", router.AsDefault())
	return r
}

type testEnv struct {
	srv      *Server
	http     *httptest.Server
	recorder *countingRecorder
	slow     *transition.Future
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{recorder: &countingRecorder{}, slow: transition.NewFuture()}

	renderer := transition.RendererFunc(func(f transition.Frame) transition.Result {
		sel := f.Current()
		if sel.Pattern() == "/slow" && !env.slow.Settled() {
			return transition.Pending(env.slow)
		}
		return transition.Ready("<p>" + sel.Entry.Payload.(string) + "</p>")
	})

	env.srv = NewServer(Config{
		Routes:   testRoutes(),
		Renderer: renderer,
		Recorder: env.recorder,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	env.http = httptest.NewServer(env.srv)
	t.Cleanup(func() {
		env.srv.Close()
		env.http.Close()
	})
	return env
}

func (e *testEnv) dial(t *testing.T, initial string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(e.http.URL, "http") + "/?url=" + url.QueryEscape(initial)
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func read(t *testing.T, ws *websocket.Conn) Message {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(readTimeout))
	var msg Message
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func write(t *testing.T, ws *websocket.Conn, msg any) {
	t.Helper()
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestInitialFrame(t *testing.T) {
	env := newTestEnv(t)
	ws := env.dial(t, "/users/7")

	msg := read(t, ws)
	if msg.Type != TypeFrame || msg.Route != "/users/:id" || msg.Params["id"] != "7" {
		t.Fatalf("initial message = %+v", msg)
	}
	if msg.View != "<p>user</p>" {
		t.Errorf("view = %q", msg.View)
	}
}

func TestClickPushesAndRenders(t *testing.T) {
	env := newTestEnv(t)
	ws := env.dial(t, "/")
	read(t, ws)

	write(t, ws, Message{Type: TypeClick, Href: "/users/1?tab=a"})

	push := read(t, ws)
	if push.Type != TypePush || push.URL != "/users/1?tab=a" {
		t.Fatalf("expected push, got %+v", push)
	}
	frame := read(t, ws)
	if frame.Type != TypeFrame || frame.Params["id"] != "1" || frame.Previous != "/" {
		t.Fatalf("frame = %+v", frame)
	}
}

func TestCrossOriginClickIgnored(t *testing.T) {
	env := newTestEnv(t)
	ws := env.dial(t, "/")
	read(t, ws)

	write(t, ws, Message{Type: TypeClick, Href: "https://elsewhere.example/x"})
	write(t, ws, Message{Type: TypePop, URL: "/users/2"})

	// The pop is answered first: the cross-origin click produced nothing.
	msg := read(t, ws)
	if msg.Type != TypeFrame || msg.Params["id"] != "2" {
		t.Fatalf("expected frame for pop, got %+v", msg)
	}
}

func TestPopDoesNotPush(t *testing.T) {
	env := newTestEnv(t)
	ws := env.dial(t, "/")
	read(t, ws)

	write(t, ws, Message{Type: TypePop, URL: "/users/3/"})
	msg := read(t, ws)
	if msg.Type != TypeFrame {
		t.Fatalf("pop answered with %+v, want a frame only", msg)
	}
	if msg.URL != "/users/3" {
		t.Errorf("frame URL = %q, want /users/3", msg.URL)
	}
}

func TestPendingTransition(t *testing.T) {
	env := newTestEnv(t)
	ws := env.dial(t, "/")
	read(t, ws)

	write(t, ws, Message{Type: TypeClick, Href: "/slow"})
	if msg := read(t, ws); msg.Type != TypePush {
		t.Fatalf("expected push, got %+v", msg)
	}
	if msg := read(t, ws); msg.Type != TypeLoadStart || msg.URL != "/slow" {
		t.Fatalf("expected loadstart, got %+v", msg)
	}
	pending := read(t, ws)
	if pending.Type != TypeFrame || !pending.Pending || pending.View != "<p>home</p>" || pending.Previous != "/" {
		t.Fatalf("pending frame = %+v", pending)
	}

	env.slow.Resolve()
	if msg := read(t, ws); msg.Type != TypeLoadEnd {
		t.Fatalf("expected loadend, got %+v", msg)
	}
	done := read(t, ws)
	if done.Pending || done.View != "<p>slow</p>" || done.Previous != "" {
		t.Fatalf("committed frame = %+v", done)
	}
}

func TestProtocolErrors(t *testing.T) {
	env := newTestEnv(t)
	ws := env.dial(t, "/")
	read(t, ws)

	if err := ws.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if msg := read(t, ws); msg.Type != TypeError || msg.Code != "P001" {
		t.Fatalf("expected P001, got %+v", msg)
	}

	write(t, ws, Message{Type: "teleport"})
	if msg := read(t, ws); msg.Type != TypeError || msg.Code != "P001" {
		t.Fatalf("expected P001 for unknown type, got %+v", msg)
	}

	write(t, ws, Message{Type: TypePop, URL: "https://evil.example/"})
	if msg := read(t, ws); msg.Type != TypeError || msg.Code != "P002" {
		t.Fatalf("expected P002, got %+v", msg)
	}

	if env.recorder.errorCount("decode") != 1 || env.recorder.errorCount("unknown") != 1 || env.recorder.errorCount("target") != 1 {
		t.Errorf("recorded errors = %v", env.recorder.errors)
	}

	// The connection survives protocol errors.
	write(t, ws, Message{Type: TypePop, URL: "/users/9"})
	if msg := read(t, ws); msg.Type != TypeFrame {
		t.Fatalf("expected frame after errors, got %+v", msg)
	}
}

func TestDefaultRouteFallback(t *testing.T) {
	env := newTestEnv(t)
	ws := env.dial(t, "/no/such/page")

	msg := read(t, ws)
	if msg.View != "<p>not found</p>" {
		t.Errorf("view = %q, want the default route", msg.View)
	}
}

func TestRejectsBadInitialURL(t *testing.T) {
	env := newTestEnv(t)
	u := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/?url=" + url.QueryEscape("//evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("response = %v, want 400", resp)
	}
}

func TestConnectionCount(t *testing.T) {
	env := newTestEnv(t)
	ws := env.dial(t, "/")
	read(t, ws)

	if n := env.srv.Count(); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}

	ws.Close()
	deadline := time.Now().Add(readTimeout)
	for env.srv.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection not removed after client close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCheckOrigin(t *testing.T) {
	s := NewServer(Config{Origin: "https://app.example"})

	req := httptest.NewRequest("GET", "/", nil)
	if !s.checkOrigin(req) {
		t.Error("request without Origin header should pass")
	}
	req.Header.Set("Origin", "https://app.example")
	if !s.checkOrigin(req) {
		t.Error("same origin should pass")
	}
	req.Header.Set("Origin", "https://evil.example")
	if s.checkOrigin(req) {
		t.Error("foreign origin should fail")
	}

	s = NewServer(Config{AllowAnyOrigin: true})
	if !s.checkOrigin(req) {
		t.Error("AllowAnyOrigin should pass every origin")
	}
}

func TestWriteShell(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteShell(&buf, ShellData{Title: "Demo <app>"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Demo &lt;app&gt;") {
		t.Error("title not escaped")
	}
	if !strings.Contains(out, "_nav") || !strings.Contains(out, "popstate") {
		t.Error("shell missing websocket path or client script")
	}
}

func TestViewString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{[]byte("y"), "y"},
		{42, "42"},
	}
	for _, tt := range tests {
		if got := viewString(tt.in); got != tt.want {
			t.Errorf("viewString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
