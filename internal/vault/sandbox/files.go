package sandbox

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/lifeos-dev/lifeos/internal/note"
)

// ReadFile returns the file content as a string.
func (a *Adapter) ReadFile(ctx context.Context, p string) (string, error) {
	s, err := a.current()
	if err != nil {
		return "", err
	}
	dir, base, err := splitPath(p)
	if err != nil {
		return "", err
	}
	h, err := s.resolveDir(dir, false)
	if err != nil {
		return "", fmt.Errorf("sandbox: read %s: %w", p, err)
	}
	f, err := h.Open(base)
	if err != nil {
		return "", fmt.Errorf("sandbox: read %s: %w", p, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("sandbox: read %s: %w", p, err)
	}
	return string(data), nil
}

// WriteFile writes content, creating missing parent directories.
func (a *Adapter) WriteFile(ctx context.Context, p, content string) error {
	s, err := a.current()
	if err != nil {
		return err
	}
	dir, base, err := splitPath(p)
	if err != nil {
		return err
	}
	h, err := s.resolveDir(dir, true)
	if err != nil {
		return fmt.Errorf("sandbox: write %s: %w", p, err)
	}
	f, err := h.Create(base)
	if err != nil {
		return fmt.Errorf("sandbox: write %s: %w", p, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("sandbox: write %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("sandbox: write %s: %w", p, err)
	}
	return nil
}

// DeleteFile removes a file, or a directory and everything under it.
func (a *Adapter) DeleteFile(ctx context.Context, p string) error {
	s, err := a.current()
	if err != nil {
		return err
	}
	dir, base, err := splitPath(p)
	if err != nil {
		return err
	}
	h, err := s.resolveDir(dir, false)
	if err != nil {
		return fmt.Errorf("sandbox: delete %s: %w", p, err)
	}
	info, err := h.Stat(base)
	if err != nil {
		return fmt.Errorf("sandbox: delete %s: %w", p, err)
	}
	if info.IsDir() {
		if err := h.RemoveAll(base); err != nil {
			return fmt.Errorf("sandbox: delete %s: %w", p, err)
		}
		return nil
	}
	if err := h.Remove(base); err != nil {
		return fmt.Errorf("sandbox: delete %s: %w", p, err)
	}
	return nil
}

// FileExists reports whether anything exists at path.
func (a *Adapter) FileExists(ctx context.Context, p string) (bool, error) {
	s, err := a.current()
	if err != nil {
		return false, err
	}
	dir, base, err := splitPath(p)
	if err != nil {
		return false, err
	}
	h, err := s.resolveDir(dir, false)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("sandbox: stat %s: %w", p, err)
	}
	if _, err := h.Stat(base); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("sandbox: stat %s: %w", p, err)
	}
	return true, nil
}

// CreateDirAll makes the directory and any missing parents.
func (a *Adapter) CreateDirAll(ctx context.Context, p string) error {
	s, err := a.current()
	if err != nil {
		return err
	}
	cleaned := strings.Trim(p, "/")
	if cleaned == "" {
		return nil
	}
	if _, _, err := splitPath(cleaned); err != nil {
		return err
	}
	if _, err := s.resolveDir(cleaned, true); err != nil {
		return fmt.Errorf("sandbox: mkdir %s: %w", p, err)
	}
	return nil
}

// MoveFile renames src to dest within the root, creating dest's parent.
func (a *Adapter) MoveFile(ctx context.Context, src, dest string) error {
	s, err := a.current()
	if err != nil {
		return err
	}
	srcDir, srcBase, err := splitPath(src)
	if err != nil {
		return err
	}
	destDir, destBase, err := splitPath(dest)
	if err != nil {
		return err
	}
	if _, err := s.resolveDir(destDir, true); err != nil {
		return fmt.Errorf("sandbox: move %s: %w", dest, err)
	}
	oldName := joinSlash(srcDir, srcBase)
	newName := joinSlash(destDir, destBase)
	if err := s.root.Rename(oldName, newName); err != nil {
		return fmt.Errorf("sandbox: move %s: %w", src, err)
	}
	return nil
}

// ListDir returns the entries under p. With recursive, each directory
// entry is followed by its flattened contents, depth-first.
func (a *Adapter) ListDir(ctx context.Context, p string, recursive bool) ([]note.DirEntry, error) {
	s, err := a.current()
	if err != nil {
		return nil, err
	}
	cleaned := strings.Trim(p, "/")
	if cleaned != "" {
		if _, _, err := splitPath(cleaned); err != nil {
			return nil, err
		}
	}
	return s.listDir(cleaned, recursive)
}

func (s *Session) listDir(dirPath string, recursive bool) ([]note.DirEntry, error) {
	h, err := s.resolveDir(dirPath, false)
	if err != nil {
		return nil, fmt.Errorf("sandbox: list %s: %w", dirPath, err)
	}
	f, err := h.Open(".")
	if err != nil {
		return nil, fmt.Errorf("sandbox: list %s: %w", dirPath, err)
	}
	entries, err := f.ReadDir(-1)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("sandbox: list %s: %w", dirPath, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	out := []note.DirEntry{}
	for _, e := range entries {
		entryPath := joinSlash(dirPath, e.Name())
		de := note.DirEntry{Name: e.Name(), Path: entryPath, IsDir: e.IsDir()}
		if info, err := e.Info(); err == nil {
			de.Modified = info.ModTime()
			if !e.IsDir() {
				de.Size = info.Size()
			}
		}
		out = append(out, de)
		if recursive && e.IsDir() {
			sub, err := s.listDir(entryPath, true)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}
	return out, nil
}

func joinSlash(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
