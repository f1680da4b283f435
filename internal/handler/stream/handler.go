package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	chatService "github.com/shirokuma-ai/companion/internal/service/chat"
	"github.com/shirokuma-ai/companion/pkg/utils"
)

// Handler serves conversation turns over Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a stream handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// replyEvent is the SSE payload for a completed turn.
type replyEvent struct {
	SessionID  string `json:"sessionId"`
	Text       string `json:"text"`
	Emotion    string `json:"emotion"`
	TokenCount int    `json:"tokenCount"`
}

// HandleStreamRequest runs one turn and streams its lifecycle: a status event
// when the turn is accepted, then the reply event once generation completes.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	if _, err := h.chatSvc.GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, chatService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return err
		}
		return err
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "status", map[string]string{
		"sessionId": sessionID,
		"message":   "thinking",
	})

	result, err := h.chatSvc.Turn(ctx, sessionID, userMessage)
	if err != nil {
		utils.SendSSEEvent(w, flusher, "error", map[string]string{"error": err.Error()})
		return err
	}

	utils.SendSSEEvent(w, flusher, "reply", replyEvent{
		SessionID:  sessionID,
		Text:       result.Text,
		Emotion:    string(result.Emotion),
		TokenCount: result.TokenCount,
	})
	return nil
}
