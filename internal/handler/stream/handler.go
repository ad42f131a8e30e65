package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/cs-buddy/internal/handler/session"
	chatservice "github.com/zhouzirui/cs-buddy/internal/service/chat"
	"github.com/zhouzirui/cs-buddy/internal/ui"
	"github.com/zhouzirui/cs-buddy/pkg/utils"
)

// maxBodyBytes bounds a chat request body.
const maxBodyBytes = 16 << 10

// Handler streams replies to the page via Server-Sent Events
type Handler struct {
	ctrl  *chatservice.Controller
	store *chatservice.Store
	md    *ui.Markdown
}

// New creates a new stream handler
func New(ctrl *chatservice.Controller, store *chatservice.Store, md *ui.Markdown) *Handler {
	return &Handler{ctrl: ctrl, store: store, md: md}
}

// RegisterRoutes mounts the streaming chat route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	message := payload.Message
	if strings.TrimSpace(message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sess, release := session.Acquire(w, r, h.store)
	defer release()

	utils.SetupSSEHeaders(w)
	host := ui.NewEventHost(sess.ID, h.md, func(evt ui.Event) {
		utils.SendSSEChunk(w, flusher, evt)
	})

	if err := h.HandleStreamRequest(r.Context(), host, sess, message); err != nil {
		log.Error().Err(err).Str("component", "stream").Str("session_id", sess.ID).Msg("stream request failed")
	}
}

// HandleStreamRequest runs one interaction for a message and reports it as
// events. When the session had to be (re)primed, the page is told to reset
// and the transcript is replayed before the message is handled.
func (h *Handler) HandleStreamRequest(ctx context.Context, host *ui.EventHost, sess *chatservice.Session, message string) error {
	host.Emit(ui.EventStart)
	defer host.Emit(ui.EventEnd)

	reset, err := h.ctrl.EnsureSession(ctx, sess)
	if err != nil {
		host.ErrorBanner(fmt.Sprintf("An error occurred while starting the conversation: %v", err))
		return err
	}
	if reset {
		host.Emit(ui.EventReset)
		h.ctrl.RenderTranscript(host, sess)
	}

	turn := h.ctrl.HandleUserInput(ctx, host, sess, message)
	log.Info().
		Str("component", "stream").
		Str("session_id", sess.ID).
		Int("reply_length", len(turn.Text)).
		Msg("completed response")
	return nil
}
