// Package note implements the Markdown note codec: frontmatter
// parsing/serialization, the checkbox-task grammar, day-note splitting,
// and the typed record shapes built on top of them.
package note

import "time"

// File is a parsed Markdown note. It is a transient value object created
// on every read; the file on disk remains the source of truth.
type File struct {
	Path        string      `json:"path"`
	Filename    string      `json:"filename"`
	Frontmatter Frontmatter `json:"frontmatter"`
	Content     string      `json:"content"`
	Modified    time.Time   `json:"modified"`
}

// DirEntry describes one entry produced by a directory listing.
type DirEntry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	IsDir    bool      `json:"is_dir"`
	Modified time.Time `json:"modified,omitzero"`
	Size     int64     `json:"size,omitempty"`
}
