package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/cs-buddy/internal/handler/session"
	"github.com/zhouzirui/cs-buddy/internal/handler/stream"
	chatservice "github.com/zhouzirui/cs-buddy/internal/service/chat"
	"github.com/zhouzirui/cs-buddy/internal/ui"
)

const (
	writeTimeout  = 10 * time.Second
	maxFrameBytes = 16 << 10
	inboundInput  = "input"
	inboundReplay = "replay"
	inboundReset  = "reset"
)

// Handler serves the chat over a websocket. Every inbound input frame is
// one interaction, answered with the same events the SSE endpoint sends.
type Handler struct {
	ctrl     *chatservice.Controller
	store    *chatservice.Store
	streamer *stream.Handler
	md       *ui.Markdown
	upgrader websocket.Upgrader
}

// New creates a websocket handler.
func New(ctrl *chatservice.Controller, store *chatservice.Store, md *ui.Markdown) *Handler {
	return &Handler{
		ctrl:     ctrl,
		store:    store,
		streamer: stream.New(ctrl, store, md),
		md:       md,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Resolve the session before upgrading so the cookie rides on the
	// handshake response.
	sess, release := h.store.Acquire(session.IDFromRequest(r))
	release()
	sessionID := sess.ID

	header := http.Header{}
	header.Add("Set-Cookie", (&http.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}).String())

	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		log.Warn().Err(err).Str("component", "ws").Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameBytes)

	log.Info().Str("component", "ws").Str("session_id", sessionID).Msg("websocket opened")
	ctx := r.Context()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("component", "ws").Str("session_id", sessionID).Msg("websocket read failed")
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.write(conn, ui.Event{Event: ui.EventError, SessionID: sessionID, Error: "invalid message"})
			continue
		}

		host := ui.NewEventHost(sessionID, h.md, func(evt ui.Event) { h.write(conn, evt) })

		switch msg.Type {
		case inboundInput:
			text := msg.Text
			if strings.TrimSpace(text) == "" {
				host.ErrorBanner("text is required")
				continue
			}
			sess, release := h.store.Acquire(sessionID)
			if err := h.streamer.HandleStreamRequest(ctx, host, sess, text); err != nil {
				log.Error().Err(err).Str("component", "ws").Str("session_id", sessionID).Msg("interaction failed")
			}
			release()
		case inboundReplay:
			sess, release := h.store.Acquire(sessionID)
			host.Emit(ui.EventReset)
			if err := h.ctrl.Interact(ctx, host, sess, ""); err != nil {
				log.Error().Err(err).Str("component", "ws").Str("session_id", sessionID).Msg("replay failed")
			}
			host.Emit(ui.EventEnd)
			release()
		case inboundReset:
			_ = h.store.Discard(sessionID)
			host.Emit(ui.EventReset)
			host.Emit(ui.EventEnd)
		default:
			host.ErrorBanner("unknown message type: " + msg.Type)
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, evt ui.Event) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(evt); err != nil {
		log.Debug().Err(err).Str("component", "ws").Msg("websocket write failed")
	}
}
