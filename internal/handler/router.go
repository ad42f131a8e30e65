package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/cs-buddy/internal/handler/page"
	"github.com/zhouzirui/cs-buddy/internal/handler/persona"
	"github.com/zhouzirui/cs-buddy/internal/handler/session"
	"github.com/zhouzirui/cs-buddy/internal/handler/stream"
	"github.com/zhouzirui/cs-buddy/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/cs-buddy/internal/middleware"
	personaModel "github.com/zhouzirui/cs-buddy/internal/model/persona"
	chatService "github.com/zhouzirui/cs-buddy/internal/service/chat"
	"github.com/zhouzirui/cs-buddy/internal/ui"
	"github.com/zhouzirui/cs-buddy/pkg/utils"
)

// Deps are the services the router wires to routes. Controller is nil when
// the backend could not be configured; ConfigErr then says why.
type Deps struct {
	Personas   personaModel.Store
	Persona    personaModel.Persona
	Store      *chatService.Store
	Controller *chatService.Controller
	ConfigErr  error
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	md := ui.NewMarkdown()
	ready := deps.Controller != nil && deps.ConfigErr == nil

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if !ready {
			status = "unconfigured"
		}
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": status})
	})

	configErr := deps.ConfigErr
	if !ready && configErr == nil {
		configErr = errUnavailable
	}
	page.New(deps.Controller, deps.Store, deps.Persona, configErr, md).RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		persona.New(deps.Personas, deps.Persona).RegisterRoutes(api)
		session.New(deps.Store).RegisterRoutes(api)

		if !ready {
			unavailable := func(w http.ResponseWriter, r *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "chat backend unavailable: "+configErr.Error())
			}
			api.Post("/chat", unavailable)
			api.Get("/ws", unavailable)
			return
		}

		stream.New(deps.Controller, deps.Store, md).RegisterRoutes(api)
		ws.New(deps.Controller, deps.Store, md).RegisterRoutes(api)
	})

	return r
}
