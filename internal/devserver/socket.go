package devserver

import (
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shaderbox/shaderbox/internal/watch"
)

// Signal is a message sent to browser tabs over the dev socket.
type Signal string

const (
	// SignalReload asks the page to reload itself.
	SignalReload Signal = "RELOAD"
	// SignalRedraw asks the page to refetch and recompile the shader.
	SignalRedraw Signal = "REDRAW"
)

// readyMessage is sent by a page once it is listening for signals.
const readyMessage = "READY"

const (
	writeWait   = 10 * time.Second
	sendBacklog = 16
)

// SignalFor classifies a changed file. Markup, scripts and styles reload
// the page; shader sources only redraw it.
func SignalFor(changed string) (Signal, bool) {
	switch strings.ToLower(path.Ext(changed)) {
	case ".html", ".js", ".jsx", ".ts", ".tsx", ".css":
		return SignalReload, true
	case ".glsl":
		return SignalRedraw, true
	}
	return "", false
}

// client is one dev socket connection.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan Signal
	logger *zap.Logger

	once sync.Once
	done chan struct{}

	mu     sync.Mutex
	closed bool
	remove func()
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.closed = true
		remove := c.remove
		c.mu.Unlock()
		if remove != nil {
			remove()
		}
		c.conn.Close()
	})
}

// subscribe registers the client on b the first time it is called.
func (c *client) subscribe(b *watch.Broadcaster, l watch.Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.remove != nil {
		return
	}
	c.remove = b.Add(l)
}

// enqueue never blocks the broadcaster; a tab that stops reading loses
// signals instead of stalling every other tab.
func (c *client) enqueue(sig Signal) bool {
	select {
	case c.send <- sig:
		return true
	case <-c.done:
		return false
	default:
		c.logger.Warn("Dropping signal for slow client", zap.String("signal", string(sig)))
		return false
	}
}

func (c *client) writeLoop() {
	for {
		select {
		case sig := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(sig)); err != nil {
				c.logger.Debug("Write failed", zap.Error(err))
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (s *Server) serveSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.logger.Debug("Socket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan Signal, sendBacklog),
		done: make(chan struct{}),
	}
	c.logger = s.logger.With(zap.String("client_id", c.id))

	s.track(c)
	defer s.untrack(c)
	defer c.close()

	go c.writeLoop()
	c.logger.Debug("Dev socket connected", zap.String("remote", r.RemoteAddr))

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.logger.Debug("Dev socket closed", zap.Error(err))
			return
		}
		if string(msg) != readyMessage {
			continue
		}
		c.subscribe(s.changes, func(changed string) {
			sig, ok := SignalFor(changed)
			if !ok {
				return
			}
			if c.enqueue(sig) {
				s.metrics.signals.WithLabelValues(string(sig)).Inc()
			}
		})
	}
}

func (s *Server) track(c *client) {
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	s.metrics.clients.Inc()
}

func (s *Server) untrack(c *client) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	s.metrics.clients.Dec()
}

// closeClients drops every dev socket; http.Server.Shutdown does not
// touch hijacked connections.
func (s *Server) closeClients() {
	s.mu.Lock()
	cs := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		cs = append(cs, c)
	}
	s.mu.Unlock()
	for _, c := range cs {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
		c.close()
	}
}
