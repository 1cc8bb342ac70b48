package api

import (
	"github.com/starford/relyaml/internal/noteservice"
	"github.com/starford/relyaml/internal/panel"
	"github.com/starford/relyaml/internal/related"
	"github.com/starford/relyaml/internal/settings"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Path    string `json:"path" example:"notes/hello.md" validate:"required"`
	Content string `json:"content" example:"---\ntags: [go]\n---\nWorld"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content string `json:"content" example:"---\ntags: [go, yaml]\n---\nWorld"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// RelatedResponse is the result of a correlation pass.
type RelatedResponse = related.Result

// PanelResponse is the panel state.
type PanelResponse = panel.Snapshot

// PanelHeightRequest reports the panel height in pixels; 0 means hidden.
type PanelHeightRequest struct {
	Height int `json:"height" example:"320"`
}

// PanelOpenRequest names the note that became active.
type PanelOpenRequest struct {
	Path string `json:"path" example:"notes/hello.md" validate:"required"`
}

// Settings is the persisted settings payload.
type Settings = settings.Settings

// SettingsPatch is a partial settings update.
type SettingsPatch = settings.Patch
