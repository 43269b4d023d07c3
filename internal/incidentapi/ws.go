package incidentapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Sidzzzzzzzzzzzz/intelligent-incident-triage/internal/triage"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsReadLimit  = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards connect from any origin; the endpoint only emits data.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsSubscriber adapts one WebSocket connection to triage.Subscriber. The
// mutex serializes writes; gorilla permits a single concurrent writer.
type wsSubscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSubscriber) Deliver(ctx context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(wsWriteWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *wsSubscriber) Close() error {
	return s.conn.Close()
}

func (s *wsSubscriber) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

// handleSubscribe upgrades the connection and registers it for incident
// broadcasts. Inbound frames are read and discarded; the read loop exists to
// notice disconnects and answer pings.
func (a *API) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		a.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	sub := &wsSubscriber{conn: conn}
	handle := a.subs.Register(sub)
	a.logger.Info(r.Context(), "subscriber connected", "subscriber", string(handle), "remote", r.RemoteAddr)

	go a.pingLoop(sub)
	go a.readLoop(context.WithoutCancel(r.Context()), sub, handle)
}

func (a *API) readLoop(ctx context.Context, sub *wsSubscriber, handle triage.Handle) {
	defer func() {
		a.subs.Unregister(handle)
		_ = sub.conn.Close()
	}()

	sub.conn.SetReadLimit(wsReadLimit)
	_ = sub.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				a.logger.Info(ctx, "subscriber connection lost", "subscriber", string(handle), "error", err)
			}
			return
		}
	}
}

func (a *API) pingLoop(sub *wsSubscriber) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := sub.ping(); err != nil {
			return
		}
	}
}
