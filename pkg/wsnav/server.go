package wsnav

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/navrouter/internal/errors"
	"github.com/vango-dev/navrouter/pkg/location"
	"github.com/vango-dev/navrouter/pkg/routepath"
	"github.com/vango-dev/navrouter/pkg/router"
	"github.com/vango-dev/navrouter/pkg/transition"
)

// Recorder receives connection metrics. *telemetry.Metrics implements it.
type Recorder interface {
	ConnectionOpened()
	ConnectionClosed()
	ProtocolError(kind string)
}

// Config configures a Server.
type Config struct {
	// Routes are shared by every connection. Required.
	Routes *router.Router

	// Renderer produces views for every connection.
	Renderer transition.Renderer

	// Origin is the site origin (scheme://host). When empty it is derived
	// from each upgrade request.
	Origin string

	// Observer receives transition events from every connection.
	Observer transition.Observer

	// Recorder receives connection metrics. Optional.
	Recorder Recorder

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// AllowAnyOrigin disables the websocket Origin header check.
	AllowAnyOrigin bool
}

// Server upgrades thin-client connections and runs one location store and
// transition runtime per connection.
type Server struct {
	config   Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[*Conn]context.CancelFunc
	wg    sync.WaitGroup
}

// NewServer creates a bridge server.
func NewServer(cfg Config) *Server {
	if cfg.Routes == nil {
		cfg.Routes = router.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{
		config: cfg,
		logger: cfg.Logger,
		conns:  make(map[*Conn]context.CancelFunc),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// ServeHTTP upgrades the request. The client passes its current URL in the
// "url" query parameter; it defaults to "/".
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	initial := r.URL.Query().Get("url")
	if initial == "" {
		initial = "/"
	}
	initial, err := routepath.CanonicalizeAndValidateNavPath(initial)
	if err != nil {
		rerr := errors.New("P002").WithSubject(r.URL.Query().Get("url")).Wrap(err)
		http.Error(w, rerr.Error(), http.StatusBadRequest)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", "error", err)
		return
	}

	origin := s.config.Origin
	if origin == "" {
		origin = requestOrigin(r)
	}
	conn := newConn(ws, origin, initial, s.logger, s.config.Recorder)

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.conns[conn] = cancel
	s.mu.Unlock()
	s.wg.Add(1)
	defer s.wg.Done()

	if s.config.Recorder != nil {
		s.config.Recorder.ConnectionOpened()
	}
	s.logger.Info("client connected", "remote", r.RemoteAddr, "url", initial)

	s.serve(ctx, cancel, conn)

	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	ws.Close()

	if s.config.Recorder != nil {
		s.config.Recorder.ConnectionClosed()
	}
	s.logger.Info("client disconnected", "remote", r.RemoteAddr)
}

func (s *Server) serve(ctx context.Context, cancel context.CancelFunc, conn *Conn) {
	store := location.NewStore(conn.Origin(), conn.CurrentURL(),
		location.WithHistory(conn),
		location.WithLogger(s.logger),
	)
	rt := transition.NewRuntime(transition.Config{
		Routes:   s.config.Routes,
		Renderer: s.config.Renderer,
		Hooks:    conn.hooks(),
		Observer: s.config.Observer,
		Sink:     conn.SendFrame,
		Logger:   s.logger,
	})

	go rt.Run(ctx)
	defer func() { <-rt.Done() }()
	defer cancel()

	if err := store.Start(ctx, conn); err != nil {
		s.logger.Error("store start failed", "error", err)
		return
	}
	defer store.Stop()

	stop := rt.Follow(store)
	defer stop()

	readDone := make(chan struct{})
	go func() {
		conn.readLoop()
		close(readDone)
	}()

	select {
	case <-readDone:
	case <-ctx.Done():
		conn.ws.Close()
		<-readDone
	}
}

// Count returns the number of connected clients.
func (s *Server) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// Close disconnects every client and waits for their handlers to return.
func (s *Server) Close() {
	s.mu.Lock()
	for _, cancel := range s.conns {
		cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.config.AllowAnyOrigin {
		return true
	}
	header := r.Header.Get("Origin")
	if header == "" {
		return true
	}
	want := s.config.Origin
	if want == "" {
		want = requestOrigin(r)
	}
	return strings.EqualFold(strings.TrimSuffix(header, "/"), strings.TrimSuffix(want, "/"))
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host
}
