// Package noteservice is the service layer the API uses: note CRUD with
// optimistic concurrency and the typed day-note operations, all over the
// backend contract so every adapter gets the same behavior.
package noteservice

import (
	"context"
	"strings"
	"time"

	"github.com/lifeos-dev/lifeos/internal/apperr"
	"github.com/lifeos-dev/lifeos/internal/checksum"
	"github.com/lifeos-dev/lifeos/internal/note"
	"github.com/lifeos-dev/lifeos/internal/vault"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path        string           `json:"path"`
	Frontmatter note.Frontmatter `json:"frontmatter,omitempty"`
	Content     string           `json:"content"`
	Checksum    string           `json:"checksum"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	Path      string    `json:"path"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates note operations over a vault backend.
type Service struct {
	backend vault.Backend
}

// NewService creates a new note service.
func NewService(b vault.Backend) *Service {
	return &Service{backend: b}
}

// GetNote reads a note and returns it with its checksum.
func (s *Service) GetNote(ctx context.Context, path string) (*NoteDetail, error) {
	raw, err := s.readExisting(ctx, path)
	if err != nil {
		return nil, err
	}
	return buildNoteDetail(path, raw), nil
}

// CreateNote writes a new note composed from frontmatter and content.
func (s *Service) CreateNote(ctx context.Context, path string, fm note.Frontmatter, content string) (*NoteDetail, error) {
	exists, err := s.backend.FileExists(ctx, path)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ErrAlreadyExists
	}
	raw := note.Compose(fm, content)
	if err := s.backend.WriteFile(ctx, path, raw); err != nil {
		return nil, err
	}
	return buildNoteDetail(path, raw), nil
}

// UpdateNote writes updated content with optimistic concurrency. A
// non-empty ifMatch must equal the checksum of the stored note.
func (s *Service) UpdateNote(ctx context.Context, path string, fm note.Frontmatter, content, ifMatch string) (*NoteDetail, error) {
	existing, err := s.readExisting(ctx, path)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum([]byte(existing)) {
		return nil, apperr.ErrConflict
	}
	raw := note.Compose(fm, content)
	if err := s.backend.WriteFile(ctx, path, raw); err != nil {
		return nil, err
	}
	return buildNoteDetail(path, raw), nil
}

// DeleteNote removes a note.
func (s *Service) DeleteNote(ctx context.Context, path string) error {
	exists, err := s.backend.FileExists(ctx, path)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.ErrNotFound
	}
	return s.backend.DeleteFile(ctx, path)
}

// ListNotes lists the notes under dir, newest first.
func (s *Service) ListNotes(ctx context.Context, dir string, recursive bool) ([]NoteListItem, error) {
	files, err := s.backend.ListNotes(ctx, dir, recursive)
	if err != nil {
		return nil, err
	}
	items := make([]NoteListItem, len(files))
	for i, f := range files {
		title := f.Frontmatter["title"]
		if title == "" {
			title = f.Filename
		}
		items[i] = NoteListItem{
			Path:      f.Path,
			Filename:  f.Filename,
			Title:     title,
			Checksum:  checksum.Sum([]byte(note.Compose(f.Frontmatter, f.Content))),
			UpdatedAt: f.Modified,
		}
	}
	return items, nil
}

// DayPath returns the vault-relative path of the day note for date
// (YYYY-MM-DD).
func DayPath(date string) string {
	return "daily/tasks/" + date + ".md"
}

// GetDay reads the day note for date. A missing note yields an empty
// DayNote for that date rather than an error.
func (s *Service) GetDay(ctx context.Context, date string) (note.DayNote, error) {
	path := DayPath(date)
	exists, err := s.backend.FileExists(ctx, path)
	if err != nil {
		return note.DayNote{}, err
	}
	if !exists {
		return note.DayNote{Date: date}, nil
	}
	f, err := s.backend.ReadNote(ctx, path)
	if err != nil {
		return note.DayNote{}, err
	}
	d := note.ParseDayNote(f)
	if d.Date == "" {
		d.Date = date
	}
	return d, nil
}

// SaveDay writes the day note back, creating it if absent.
func (s *Service) SaveDay(ctx context.Context, date string, d note.DayNote) error {
	d.Date = date
	fm, body, err := d.Compose()
	if err != nil {
		return err
	}
	return s.backend.WriteNote(ctx, DayPath(date), fm, body)
}

// ToggleTask flips the done state of the idx-th task in the day note.
func (s *Service) ToggleTask(ctx context.Context, date string, idx int) (note.DayNote, error) {
	d, err := s.GetDay(ctx, date)
	if err != nil {
		return note.DayNote{}, err
	}
	if idx < 0 || idx >= len(d.Tasks) {
		return note.DayNote{}, apperr.ErrNotFound
	}
	d.Tasks[idx].Done = !d.Tasks[idx].Done
	if err := s.SaveDay(ctx, date, d); err != nil {
		return note.DayNote{}, err
	}
	return d, nil
}

// AddTask appends a task to the day note.
func (s *Service) AddTask(ctx context.Context, date string, task note.TaskItem) (note.DayNote, error) {
	d, err := s.GetDay(ctx, date)
	if err != nil {
		return note.DayNote{}, err
	}
	d.Tasks = append(d.Tasks, task)

	// The stored task region has one checkbox line fewer than the new
	// list, so rebuild the section instead of substituting in place.
	f, readErr := s.backend.ReadNote(ctx, DayPath(date))
	body := ""
	fm := note.Frontmatter{"date": date}
	if readErr == nil {
		body = f.Content
		fm = f.Frontmatter
		if fm["date"] == "" {
			fm["date"] = date
		}
	}
	body = note.RewriteTaskSection(body, note.TaskHeading, d.Tasks)
	if err := s.backend.WriteNote(ctx, DayPath(date), fm, body); err != nil {
		return note.DayNote{}, err
	}
	return d, nil
}

// SetDay replaces the day note's tasks, notes, and frontmatter extras
// wholesale. Unlike SaveDay it rebuilds the task section, so the task
// list may grow or shrink.
func (s *Service) SetDay(ctx context.Context, date string, tasks []note.TaskItem, notes, energy, mood string) (note.DayNote, error) {
	path := DayPath(date)
	fm := note.Frontmatter{"date": date}
	body := ""

	exists, err := s.backend.FileExists(ctx, path)
	if err != nil {
		return note.DayNote{}, err
	}
	if exists {
		f, err := s.backend.ReadNote(ctx, path)
		if err != nil {
			return note.DayNote{}, err
		}
		fm = f.Frontmatter
		fm["date"] = date
		taskRegion, _ := note.SplitDayNote(f.Content)
		body = taskRegion
	}
	if energy != "" {
		fm["energy"] = energy
	}
	if mood != "" {
		fm["mood"] = mood
	}

	body = note.RewriteTaskSection(body, note.TaskHeading, tasks)
	if notes != "" {
		body = strings.TrimRight(body, "\n") + "\n\n## " + note.NotesHeading + "\n\n" + notes
	}
	if err := s.backend.WriteNote(ctx, path, fm, body); err != nil {
		return note.DayNote{}, err
	}
	return s.GetDay(ctx, date)
}

// ListProjects parses every note under projects/ into kanban cards.
func (s *Service) ListProjects(ctx context.Context) ([]note.Project, error) {
	files, err := s.backend.ListNotes(ctx, "projects", true)
	if err != nil {
		return nil, err
	}
	out := make([]note.Project, len(files))
	for i, f := range files {
		out[i] = note.ParseProject(f)
	}
	return out, nil
}

// ListDiary parses the diary entries for a year, newest first.
func (s *Service) ListDiary(ctx context.Context, year string) ([]note.DiaryEntry, error) {
	files, err := s.backend.ListNotes(ctx, "diary/"+year, false)
	if err != nil {
		return nil, err
	}
	out := make([]note.DiaryEntry, len(files))
	for i, f := range files {
		out[i] = note.ParseDiaryEntry(f)
	}
	return out, nil
}

// ListDecisions parses every decision record.
func (s *Service) ListDecisions(ctx context.Context) ([]note.Decision, error) {
	files, err := s.backend.ListNotes(ctx, "decisions", true)
	if err != nil {
		return nil, err
	}
	out := make([]note.Decision, len(files))
	for i, f := range files {
		out[i] = note.ParseDecision(f)
	}
	return out, nil
}

// readExisting reads a note's raw text, mapping absence to ErrNotFound.
// Existence is probed first because remote read errors arrive as opaque
// strings.
func (s *Service) readExisting(ctx context.Context, path string) (string, error) {
	exists, err := s.backend.FileExists(ctx, path)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", apperr.ErrNotFound
	}
	return s.backend.ReadFile(ctx, path)
}

func buildNoteDetail(path, raw string) *NoteDetail {
	fm, body := note.Parse(raw)
	return &NoteDetail{
		Path:        path,
		Frontmatter: fm,
		Content:     body,
		Checksum:    checksum.Sum([]byte(raw)),
		UpdatedAt:   time.Now(),
	}
}
