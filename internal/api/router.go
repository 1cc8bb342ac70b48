package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/relyaml/internal/noteservice"
	"github.com/starford/relyaml/internal/panel"
	"github.com/starford/relyaml/internal/settings"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, pnl *panel.Panel, st *settings.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, pnl, st)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Delete("/notes/*", h.DeleteNote)

	// On-demand correlation for any note.
	r.Get("/related/*", h.Related)

	// Panel state and host events.
	r.Route("/panel", func(r chi.Router) {
		r.Get("/", h.Panel)
		r.Post("/show", h.PanelShow)
		r.Post("/open", h.PanelOpen)
		r.Post("/layout", h.PanelLayout)
	})

	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
