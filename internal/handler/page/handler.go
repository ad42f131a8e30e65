// Package page serves the chat page. Every request is one interaction: the
// controller replays the transcript and handles the submitted message into a
// recorder, and the recorded blocks become the page.
package page

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/cs-buddy/internal/handler/session"
	"github.com/zhouzirui/cs-buddy/internal/model/chat"
	"github.com/zhouzirui/cs-buddy/internal/model/persona"
	chatservice "github.com/zhouzirui/cs-buddy/internal/service/chat"
	"github.com/zhouzirui/cs-buddy/internal/ui"
)

//go:embed templates/*.html
var templates embed.FS

// maxMessageBytes bounds a submitted form.
const maxMessageBytes = 16 << 10

// Handler renders the chat page.
type Handler struct {
	ctrl      *chatservice.Controller
	store     *chatservice.Store
	persona   persona.Persona
	configErr error
	md        *ui.Markdown
	tmpl      *template.Template
}

// New creates a page handler. When configErr is set the page only shows the
// configuration error and ctrl may be nil.
func New(ctrl *chatservice.Controller, store *chatservice.Store, p persona.Persona, configErr error, md *ui.Markdown) *Handler {
	if md == nil {
		md = ui.NewMarkdown()
	}
	return &Handler{
		ctrl:      ctrl,
		store:     store,
		persona:   p,
		configErr: configErr,
		md:        md,
		tmpl:      template.Must(template.ParseFS(templates, "templates/*.html")),
	}
}

// RegisterRoutes mounts the page routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handlePage)
	r.Post("/", h.handlePage)
}

type blockView struct {
	Error bool
	Role  chat.Role
	Label string
	HTML  template.HTML
}

type pageView struct {
	Persona persona.Persona
	Blocks  []blockView
	Ready   bool
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	rec := ui.NewRecorder()

	if h.configErr != nil {
		rec.ErrorBanner(fmt.Sprintf("Configuration Error: %v. Please ensure your API key is set in your .env file.", h.configErr))
		h.render(w, http.StatusServiceUnavailable, rec, false)
		return
	}

	input := ""
	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxMessageBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		input = r.PostForm.Get("message")
	}

	sess, release := session.Acquire(w, r, h.store)
	err := h.ctrl.Interact(r.Context(), rec, sess, input)
	release()
	if err != nil {
		log.Error().Err(err).Str("component", "page").Str("session_id", sess.ID).Msg("interaction failed")
	}

	h.render(w, http.StatusOK, rec, err == nil)
}

func (h *Handler) render(w http.ResponseWriter, status int, rec *ui.Recorder, ready bool) {
	view := pageView{Persona: h.persona, Ready: ready}
	for _, block := range rec.Blocks() {
		if block.Kind == ui.BlockError {
			view.Blocks = append(view.Blocks, blockView{Error: true, HTML: template.HTML(template.HTMLEscapeString(block.Text))})
			continue
		}
		view.Blocks = append(view.Blocks, blockView{
			Role:  block.Role,
			Label: roleLabel(block.Role),
			HTML:  h.md.Render(block.Text),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.ExecuteTemplate(w, "page.html", view); err != nil {
		log.Error().Err(err).Str("component", "page").Msg("failed to render page")
	}
}

func roleLabel(role chat.Role) string {
	if role == chat.RoleUser {
		return "You"
	}
	return "Teacher"
}
