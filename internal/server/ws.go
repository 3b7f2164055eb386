package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sarathi-app/sarathi/internal/events"
)

const wsReadDeadline = 120 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The daemon binds to loopback; page scripts connect cross-origin.
		return true
	},
}

// ClientMessage is one inbound WebSocket frame from a page client.
type ClientMessage struct {
	Type    string          `json:"type"` // "transcript", "path", "document", "ping"
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TranscriptPayload carries one recognized utterance.
type TranscriptPayload struct {
	Text string `json:"text"`
}

// PathPayload reports the page's current location.
type PathPayload struct {
	Path string `json:"path"`
}

// DocumentPayload reports which document the page is working with.
type DocumentPayload struct {
	DocumentID string `json:"document_id"`
}

// ServerMessage is one outbound frame to a page client.
type ServerMessage struct {
	Type    string            `json:"type"` // "event", "pong", "error"
	Name    string            `json:"name,omitempty"`
	Payload map[string]string `json:"payload,omitempty"`
}

// Hub tracks connected WebSocket clients and the last page location any of
// them reported. The location feeds navigation arrival checks.
type Hub struct {
	logger *slog.Logger

	mu       sync.RWMutex
	clients  map[*wsClient]struct{}
	path     string
	document string
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{logger: logger, clients: make(map[*wsClient]struct{})}
}

// CurrentPath returns the most recently reported page path.
func (h *Hub) CurrentPath() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.path
}

// CurrentDocument returns the document id the page last reported, empty when
// no document is in play.
func (h *Hub) CurrentDocument() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.document
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an assistant event to every connected client.
func (h *Hub) Broadcast(event events.Event) {
	msg := ServerMessage{Type: "event", Name: event.Name, Payload: event.Payload}

	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(msg); err != nil && h.logger != nil {
			h.logger.Debug("websocket write failed", "error", err.Error())
		}
	}
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*wsClient]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *Hub) setPath(path string) {
	h.mu.Lock()
	h.path = path
	h.mu.Unlock()
}

func (h *Hub) setDocument(id string) {
	h.mu.Lock()
	h.document = id
	h.mu.Unlock()
}

// wsClient serializes writes to one connection. gorilla/websocket permits
// only one concurrent writer per conn.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(msg ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("websocket upgrade failed", "error", err.Error())
		}
		return
	}

	client := &wsClient{conn: conn}
	s.hub.add(client)
	defer func() {
		s.hub.remove(client)
		conn.Close()
	}()

	if s.logger != nil {
		s.logger.Info("websocket client connected", "remote", conn.RemoteAddr().String())
	}

	conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				if s.logger != nil {
					s.logger.Error("websocket read error", "error", err.Error())
				}
			} else if s.logger != nil {
				s.logger.Info("websocket client disconnected")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))

		switch msg.Type {
		case "ping":
			_ = client.write(ServerMessage{Type: "pong"})

		case "transcript":
			var payload TranscriptPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Text == "" {
				_ = client.write(ServerMessage{Type: "error", Payload: map[string]string{
					"code": "invalid_payload", "message": "transcript payload requires text",
				}})
				continue
			}
			s.controller.Submit(payload.Text)

		case "path":
			var payload PathPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				continue
			}
			s.hub.setPath(payload.Path)

		case "document":
			var payload DocumentPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				continue
			}
			s.hub.setDocument(payload.DocumentID)

		default:
			_ = client.write(ServerMessage{Type: "error", Payload: map[string]string{
				"code": "unknown_type", "message": "unknown message type: " + msg.Type,
			}})
		}
	}
}
