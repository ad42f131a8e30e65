package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/cs-buddy/internal/model/persona"
	"github.com/zhouzirui/cs-buddy/pkg/utils"
)

// Handler serves persona metadata.
type Handler struct {
	personas persona.Store
	active   persona.Persona
}

// New creates a persona handler.
func New(personas persona.Store, active persona.Persona) *Handler {
	return &Handler{
		personas: personas,
		active:   active,
	}
}

// RegisterRoutes mounts the persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/persona", h.handleActivePersona)
	r.Get("/personas", h.handleListPersonas)
}

// handleActivePersona returns the persona the page plays.
func (h *Handler) handleActivePersona(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.active)
}

// handleListPersonas lists every persona.
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}
