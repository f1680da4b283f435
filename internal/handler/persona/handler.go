package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shirokuma-ai/companion/internal/model/persona"
	"github.com/shirokuma-ai/companion/pkg/utils"
)

// Handler exposes the persona catalog.
type Handler struct {
	store persona.Store
}

// New creates a persona handler.
func New(store persona.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleList)
	r.Get("/personas/{personaID}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.List())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "personaID")
	p, ok := h.store.FindByID(id)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "persona not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}
