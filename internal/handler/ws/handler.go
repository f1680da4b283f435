package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatService "github.com/shirokuma-ai/companion/internal/service/chat"
	"github.com/shirokuma-ai/companion/internal/service/conversation"
)

// Handler pushes companion events to a connected avatar front-end over a
// websocket: one event per emotion change and one per spoken reply, mirroring
// the animation and speech channels. Clients may also submit turns.
type Handler struct {
	chatSvc  *chatService.Service
	upgrader websocket.Upgrader
}

// New creates a websocket handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type string `json:"type"`
	Data struct {
		Text string `json:"text"`
	} `json:"data"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// conn serializes writes; gorilla/websocket allows one concurrent writer.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) send(msg outgoingMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg.Timestamp = time.Now().UnixMilli()
	return c.ws.WriteJSON(msg)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	orchestrator, ok := h.chatSvc.Orchestrator(sessionID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer socket.Close()

	c := &conn{ws: socket}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Forward the consumer channels as events for the avatar.
	go h.forwardEvents(ctx, c, sessionID, orchestrator)

	_ = c.send(outgoingMessage{Type: "connected", SessionID: sessionID})

	for {
		_, payload, err := socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] session %s read error: %v", sessionID, err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			_ = c.send(outgoingMessage{Type: "error", SessionID: sessionID, Data: "invalid message"})
			continue
		}

		switch msg.Type {
		case "message":
			if msg.Data.Text == "" {
				_ = c.send(outgoingMessage{Type: "error", SessionID: sessionID, Data: "text is required"})
				continue
			}
			result, err := h.chatSvc.Turn(ctx, sessionID, msg.Data.Text)
			if err != nil {
				_ = c.send(outgoingMessage{Type: "error", SessionID: sessionID, Data: err.Error()})
				continue
			}
			_ = c.send(outgoingMessage{Type: "reply", SessionID: sessionID, Data: result})
		case "ping":
			_ = c.send(outgoingMessage{Type: "pong", SessionID: sessionID})
		default:
			_ = c.send(outgoingMessage{Type: "error", SessionID: sessionID, Data: "unknown message type"})
		}
	}
}

// forwardEvents relays the session's emotion and speech channels until the
// connection closes. The channels are best-effort on the producer side; this
// is their single consumer in API mode.
func (h *Handler) forwardEvents(ctx context.Context, c *conn, sessionID string, orchestrator *conversation.Service) {
	for {
		select {
		case <-ctx.Done():
			return
		case emo, ok := <-orchestrator.Emotions():
			if !ok {
				return
			}
			if err := c.send(outgoingMessage{Type: "emotion", SessionID: sessionID, Data: string(emo)}); err != nil {
				return
			}
		case text, ok := <-orchestrator.Speech():
			if !ok {
				return
			}
			if err := c.send(outgoingMessage{Type: "speech", SessionID: sessionID, Data: text}); err != nil {
				return
			}
		}
	}
}
