package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/seenimoa/chartfolio/internal/chart"
	"github.com/seenimoa/chartfolio/internal/infra"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Burst of move events a session may send before throttling applies.
	hoverBurst = 4
)

// HoverEvent is a pointer event sent by the page script.
type HoverEvent struct {
	Type  string     `json:"type"` // "enter", "move" or "leave"
	Shape string     `json:"shape"`
	X     float64    `json:"x"`
	Y     float64    `json:"y"`
	Mount chart.Rect `json:"mount"`
}

// ════════════════════════════════════════════════════════════════════
// Sessions
// ════════════════════════════════════════════════════════════════════

// hoverSession is one live hover connection. All state is owned by the
// read pump, which closes done when it exits; the write pump only drains send.
type hoverSession struct {
	id       string
	chart    string
	send     chan chart.Update
	done     chan struct{}
	ctrl     *chart.HoverController
	throttle *infra.Throttle
	mount    chart.Rect
}

func newHoverSession(name string, bindings map[string]chart.Binding, interval time.Duration) *hoverSession {
	sess := &hoverSession{
		id:    uuid.NewString(),
		chart: name,
		send:  make(chan chart.Update, 64),
		done:  make(chan struct{}),
	}
	if interval > 0 {
		sess.throttle = infra.NewThrottle(hoverBurst, interval)
	}
	tip := chart.NewTooltip(func() chart.Rect { return sess.mount })
	sess.ctrl = chart.NewHoverController(chart.BindingMap(bindings), tip)
	return sess
}

// handle applies one event. It reports false when the event produced no
// visible change or was throttled.
func (sess *hoverSession) handle(ev HoverEvent) (chart.Update, bool) {
	sess.mount = ev.Mount
	p := chart.Point{X: ev.X, Y: ev.Y}
	switch ev.Type {
	case "enter":
		return sess.ctrl.OnEnter(ev.Shape, p)
	case "move":
		if !sess.throttle.Allow() {
			return chart.Update{}, false
		}
		return sess.ctrl.OnMove(ev.Shape, p)
	case "leave":
		return sess.ctrl.OnLeave(ev.Shape)
	}
	return chart.Update{}, false
}

// ════════════════════════════════════════════════════════════════════
// Hub
// ════════════════════════════════════════════════════════════════════

// HoverHub tracks open hover sessions.
type HoverHub struct {
	mu         sync.RWMutex
	sessions   map[*hoverSession]bool
	register   chan *hoverSession
	unregister chan *hoverSession
	quit       chan struct{}
	closeOnce  sync.Once
}

// NewHoverHub creates an empty hub. Run must be started before sessions
// register.
func NewHoverHub() *HoverHub {
	return &HoverHub{
		sessions:   make(map[*hoverSession]bool),
		register:   make(chan *hoverSession),
		unregister: make(chan *hoverSession),
		quit:       make(chan struct{}),
	}
}

// Run starts the hub event loop. It returns after Close.
func (h *HoverHub) Run() {
	for {
		select {
		case sess := <-h.register:
			h.mu.Lock()
			h.sessions[sess] = true
			h.mu.Unlock()
		case sess := <-h.unregister:
			h.mu.Lock()
			delete(h.sessions, sess)
			h.mu.Unlock()
		case <-h.quit:
			h.mu.Lock()
			h.sessions = make(map[*hoverSession]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Close stops Run. Open sessions see the hub closing and disconnect.
func (h *HoverHub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}

// ClientCount returns the number of open sessions.
func (h *HoverHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Register adds a session. It reports false once the hub is closed.
func (h *HoverHub) Register(sess *hoverSession) bool {
	select {
	case <-h.quit:
		return false
	default:
	}
	select {
	case h.register <- sess:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a session.
func (h *HoverHub) Unregister(sess *hoverSession) {
	select {
	case h.unregister <- sess:
	case <-h.quit:
	}
}

// ════════════════════════════════════════════════════════════════════
// Handler
// ════════════════════════════════════════════════════════════════════

// handleHover upgrades to a WebSocket and runs a hover session for the
// chart named by the chart query parameter.
func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("chart")
	bindings, err := s.site.Bindings(name)
	if err != nil {
		writeChartError(w, err)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := newHoverSession(name, bindings, s.cfg.Server.HoverInterval())
	if !s.hub.Register(sess) {
		conn.Close()
		return
	}
	logger := s.logger.With(zap.String("session", sess.id), zap.String("chart", name))
	logger.Debug("hover session opened")

	go hoverWritePump(conn, sess, s.hub, logger)
	go hoverReadPump(conn, sess, s.hub, logger)
}

// checkOrigin accepts any origin when CORS allows "*", otherwise only the
// configured ones. Requests without an Origin header are accepted.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.cfg.Server.CORSOrigins) == 0 {
		return true
	}
	for _, o := range s.cfg.Server.CORSOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// hoverReadPump applies incoming events and queues the resulting updates.
func hoverReadPump(conn *websocket.Conn, sess *hoverSession, hub *HoverHub, logger *zap.Logger) {
	defer func() {
		close(sess.done)
		hub.Unregister(sess)
		conn.Close()
		logger.Debug("hover session closed")
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var ev HoverEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			logger.Debug("ignoring malformed hover event", zap.Error(err))
			continue
		}
		u, ok := sess.handle(ev)
		if !ok {
			continue
		}
		select {
		case sess.send <- u:
		default:
			// Slow client; drop the update
		}
	}
}

// hoverWritePump writes queued updates and keeps the connection alive.
func hoverWritePump(conn *websocket.Conn, sess *hoverSession, hub *HoverHub, logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-sess.done:
			return

		case <-hub.quit:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return

		case u := <-sess.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(u)
			if err != nil {
				logger.Error("hover update marshal failed", zap.Error(err))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
