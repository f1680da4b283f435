package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/shirokuma-ai/companion/internal/handler/chat"
	personaHandler "github.com/shirokuma-ai/companion/internal/handler/persona"
	"github.com/shirokuma-ai/companion/internal/handler/stream"
	"github.com/shirokuma-ai/companion/internal/handler/ws"
	middlewarePkg "github.com/shirokuma-ai/companion/internal/middleware"
	personaModel "github.com/shirokuma-ai/companion/internal/model/persona"
	chatService "github.com/shirokuma-ai/companion/internal/service/chat"
	"github.com/shirokuma-ai/companion/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, chatSvc *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	streamHandler := stream.New(chatSvc)

	r.Route("/api", func(api chi.Router) {
		personaHandler.New(personas).RegisterRoutes(api)
		chatHandler.New(chatSvc).RegisterRoutes(api)
		ws.New(chatSvc).RegisterRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")

			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				log.Printf("[stream] error handling request: %v", err)
			}
		})
	})

	return r
}
