package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/zhouzirui/cs-buddy/internal/model/chat"
	chatservice "github.com/zhouzirui/cs-buddy/internal/service/chat"
	"github.com/zhouzirui/cs-buddy/pkg/utils"
)

// Handler serves session transcripts and resets.
type Handler struct {
	store *chatservice.Store
}

// New creates a session handler.
func New(store *chatservice.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/transcript", h.handleTranscript)
	r.Post("/session/reset", h.handleReset)
}

type transcriptResponse struct {
	SessionID string      `json:"sessionId"`
	Primed    bool        `json:"primed"`
	Turns     []chat.Turn `json:"turns"`
}

// handleTranscript returns the current session transcript.
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	id := IDFromRequest(r)
	if _, err := h.store.Get(id); err != nil {
		h.respondStoreError(w, err)
		return
	}

	sess, release := h.store.Acquire(id)
	defer release()

	turns := sess.Transcript()
	if turns == nil {
		turns = []chat.Turn{}
	}
	utils.RespondJSON(w, http.StatusOK, transcriptResponse{
		SessionID: sess.ID,
		Primed:    sess.Primed(),
		Turns:     turns,
	})
}

// handleReset discards the current session.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Discard(IDFromRequest(r)); err != nil {
		h.respondStoreError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, chatservice.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
