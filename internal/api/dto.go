package api

import (
	"github.com/lifeos-dev/lifeos/internal/note"
	"github.com/lifeos-dev/lifeos/internal/noteservice"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Path        string           `json:"path"`
	Frontmatter note.Frontmatter `json:"frontmatter,omitempty"`
	Content     string           `json:"content"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Frontmatter note.Frontmatter `json:"frontmatter,omitempty"`
	Content     string           `json:"content"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// VaultStatus reports whether a vault root is configured and where.
type VaultStatus struct {
	Selected bool   `json:"selected"`
	Path     string `json:"path,omitempty"`
}

// VaultPathRequest carries a vault root for init/select.
type VaultPathRequest struct {
	Path string `json:"path"`
}

// UpdateDayRequest is the request body for replacing a day note's state.
type UpdateDayRequest struct {
	Tasks  []note.TaskItem `json:"tasks"`
	Notes  string          `json:"notes"`
	Energy string          `json:"energy,omitempty"`
	Mood   string          `json:"mood,omitempty"`
}
