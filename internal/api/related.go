package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/relyaml/internal/apperr"
	"github.com/starford/relyaml/internal/panel"
	"github.com/starford/relyaml/internal/settings"
)

// Related handles GET /api/related/*.
//
//	@Summary		Related notes grouped by shared front-matter values
//	@Tags			related
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Param			other	query		bool	false	"Include non-matching comparisons"
//	@Success		200		{object}	RelatedResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/related/{path} [get]
func (h *Handler) Related(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	res, err := h.svc.Related(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("related failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	if r.URL.Query().Get("other") != "true" {
		res.Other = nil
	}
	writeJSON(w, http.StatusOK, res)
}

// Panel handles GET /api/panel.
//
//	@Summary		Current panel state and result
//	@Tags			panel
//	@Produce		json
//	@Success		200	{object}	PanelResponse
//	@Security		BearerAuth
//	@Router			/panel [get]
func (h *Handler) Panel(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.panel.Snapshot())
}

// PanelShow handles POST /api/panel/show.
//
//	@Summary		Report the panel as shown with the given height
//	@Tags			panel
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PanelHeightRequest	true	"Panel height"
//	@Success		200		{object}	PanelResponse
//	@Security		BearerAuth
//	@Router			/panel/show [post]
func (h *Handler) PanelShow(w http.ResponseWriter, r *http.Request) {
	var req PanelHeightRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.handlePanelEvent(w, r, panel.Event{Kind: panel.KindShown, Height: req.Height})
}

// PanelOpen handles POST /api/panel/open.
//
//	@Summary		Make a note the active one
//	@Tags			panel
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PanelOpenRequest	true	"Note to activate"
//	@Success		200		{object}	PanelResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/panel/open [post]
func (h *Handler) PanelOpen(w http.ResponseWriter, r *http.Request) {
	var req PanelOpenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	h.handlePanelEvent(w, r, panel.Event{Kind: panel.KindOpened, Path: req.Path})
}

// PanelLayout handles POST /api/panel/layout.
//
//	@Summary		Report a panel resize
//	@Tags			panel
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PanelHeightRequest	true	"Panel height"
//	@Success		200		{object}	PanelResponse
//	@Security		BearerAuth
//	@Router			/panel/layout [post]
func (h *Handler) PanelLayout(w http.ResponseWriter, r *http.Request) {
	var req PanelHeightRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.handlePanelEvent(w, r, panel.Event{Kind: panel.KindLayoutChanged, Height: req.Height})
}

func (h *Handler) handlePanelEvent(w http.ResponseWriter, r *http.Request, ev panel.Event) {
	if ev.Height < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("height must not be negative"))
		return
	}
	if err := h.panel.Handle(r.Context(), ev); err != nil {
		slog.Error("panel event failed",
			slog.String("event", string(ev.Kind)),
			slog.String("path", ev.Path),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, h.panel.Snapshot())
}

// GetSettings handles GET /api/settings.
//
//	@Summary		Persisted panel settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	Settings
//	@Security		BearerAuth
//	@Router			/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Get())
}

// UpdateSettings handles PUT /api/settings.
//
//	@Summary		Update panel settings; omitted fields keep their value
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SettingsPatch	true	"Fields to change"
//	@Success		200		{object}	Settings
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch settings.Patch
	if !decodeBody(w, r, &patch) {
		return
	}
	v, err := h.settings.Apply(patch)
	if err != nil {
		slog.Error("save settings failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}
