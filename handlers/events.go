package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"querydraft/session"
)

const (
	clientBuffer = 64
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
}

// streamMessage is what event stream clients receive. The first message on a
// connection is a snapshot; every later one carries an event.
type streamMessage struct {
	Type    string            `json:"type"`
	Event   *session.Event    `json:"event,omitempty"`
	Session *session.Snapshot `json:"session,omitempty"`
}

type subscriber struct {
	send chan session.Event
	done chan struct{}
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// Hub fans session events out to websocket subscribers. It is registered as a
// session observer and never blocks the producer: a subscriber whose buffer
// is full misses the event.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// OnEvent implements session.Observer.
func (h *Hub) OnEvent(_ context.Context, ev session.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[ev.SessionID] {
		select {
		case s.send <- ev:
		default:
			log.Warn().Str("component", "event_hub").Str("session_id", ev.SessionID).
				Str("event", string(ev.Type)).Msg("subscriber buffer full, dropping event")
		}
	}
}

func (h *Hub) subscribe(sessionID string) *subscriber {
	s := &subscriber{send: make(chan session.Event, clientBuffer), done: make(chan struct{})}
	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[*subscriber]struct{})
	}
	h.subs[sessionID][s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) unsubscribe(sessionID string, s *subscriber) {
	h.mu.Lock()
	delete(h.subs[sessionID], s)
	if len(h.subs[sessionID]) == 0 {
		delete(h.subs, sessionID)
	}
	h.mu.Unlock()
	s.close()
}

// CloseSession disconnects every subscriber of sessionID.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.RLock()
	for s := range h.subs[sessionID] {
		s.close()
	}
	h.mu.RUnlock()
}

// Subscribers returns the number of open streams for sessionID.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

// EventsHandler streams session events over a websocket
// @Summary      Session event stream
// @Description  Upgrade to a websocket that first sends a snapshot and then every event of the session
// @Tags         Sessions
// @Param        id   path  string  true  "Session ID"
// @Success      101
// @Failure      404  {object}  map[string]string  "Session not found"
// @Router       /api/sessions/{id}/events [get]
func (h *Handlers) EventsHandler(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("component", "event_hub").Msg("failed to upgrade the websocket")
		return
	}
	defer ws.Close()

	sub := h.hub.subscribe(sess.ID())
	defer h.hub.unsubscribe(sess.ID(), sub)
	log.Info().Str("component", "event_hub").Str("session_id", sess.ID()).Msg("websocket client connected")

	// Reads only detect the peer going away.
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				sub.close()
				return
			}
		}
	}()

	snap := sess.Snapshot()
	if err := writeMessage(ws, streamMessage{Type: "snapshot", Session: &snap}); err != nil {
		return
	}

	for {
		select {
		case ev := <-sub.send:
			if err := writeMessage(ws, streamMessage{Type: "event", Event: &ev}); err != nil {
				return
			}
		case <-sub.done:
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			log.Info().Str("component", "event_hub").Str("session_id", sess.ID()).Msg("websocket client disconnected")
			return
		}
	}
}

func writeMessage(ws *websocket.Conn, msg streamMessage) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := ws.WriteJSON(msg); err != nil {
		log.Warn().Err(err).Str("component", "event_hub").Msg("failed to write websocket message")
		return err
	}
	return nil
}
