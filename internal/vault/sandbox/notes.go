package sandbox

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/lifeos-dev/lifeos/internal/note"
)

// ReadNote reads and parses one Markdown note.
func (a *Adapter) ReadNote(ctx context.Context, p string) (note.File, error) {
	raw, err := a.ReadFile(ctx, p)
	if err != nil {
		return note.File{}, err
	}
	fm, body := note.Parse(raw)
	f := note.File{
		Path:        strings.Trim(path.Clean("/"+p), "/"),
		Filename:    path.Base(p),
		Frontmatter: fm,
		Content:     body,
	}

	s, serr := a.current()
	if serr == nil {
		if dir, base, err := splitPath(p); err == nil {
			if h, err := s.resolveDir(dir, false); err == nil {
				if info, err := h.Stat(base); err == nil {
					f.Modified = info.ModTime()
				}
			}
		}
	}
	return f, nil
}

// WriteNote serializes frontmatter plus body and writes the note.
func (a *Adapter) WriteNote(ctx context.Context, p string, fm note.Frontmatter, content string) error {
	return a.WriteFile(ctx, p, note.Compose(fm, content))
}

// ListNotes returns every parseable .md file under dir, newest first.
// A missing directory yields an empty slice; unreadable files are
// skipped.
func (a *Adapter) ListNotes(ctx context.Context, dir string, recursive bool) ([]note.File, error) {
	s, err := a.current()
	if err != nil {
		return nil, err
	}
	cleaned := strings.Trim(dir, "/")
	if cleaned != "" {
		if _, _, err := splitPath(cleaned); err != nil {
			return nil, err
		}
	}

	entries, err := s.listDir(cleaned, recursive)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []note.File{}, nil
		}
		return nil, err
	}

	out := []note.File{}
	for _, e := range entries {
		if e.IsDir || !strings.HasSuffix(e.Name, ".md") {
			continue
		}
		raw, err := a.ReadFile(ctx, e.Path)
		if err != nil {
			continue
		}
		fm, body := note.Parse(raw)
		out = append(out, note.File{
			Path:        e.Path,
			Filename:    e.Name,
			Frontmatter: fm,
			Content:     body,
			Modified:    e.Modified,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Modified.After(out[j].Modified) })
	return out, nil
}
