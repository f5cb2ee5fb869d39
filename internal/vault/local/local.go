// Package local implements the vault backend over the host file
// system, with full host-process authority.
package local

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lifeos-dev/lifeos/internal/apperr"
	"github.com/lifeos-dev/lifeos/internal/host"
	"github.com/lifeos-dev/lifeos/internal/note"
)

const configFileName = ".life-os-vault"

// Adapter is the local-filesystem vault backend. The selected vault
// path persists across sessions in a one-line config file in the
// user's home directory.
type Adapter struct {
	mu         sync.RWMutex
	root       string
	configPath string

	scheduler *host.Scheduler
	notes     *host.NotesBridge
}

// New returns an adapter using the default global config file,
// restoring the previously selected vault path if one was saved.
func New() (*Adapter, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("local: home dir: %w", err)
	}
	return NewWithConfig(filepath.Join(home, configFileName)), nil
}

// NewWithConfig returns an adapter reading and writing the vault-path
// config at configPath.
func NewWithConfig(configPath string) *Adapter {
	a := &Adapter{
		configPath: configPath,
		scheduler:  host.NewScheduler(),
		notes:      host.NewNotesBridge(),
	}
	if data, err := os.ReadFile(configPath); err == nil {
		a.root = strings.TrimSpace(string(data))
	}
	return a
}

// VaultPath returns the selected vault directory, empty when none has
// been chosen yet.
func (a *Adapter) VaultPath(ctx context.Context) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.root, nil
}

// SetVaultPath selects an existing directory as the vault and persists
// the choice.
func (a *Adapter) SetVaultPath(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("local: vault path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("local: vault path is not a directory: %s", path)
	}
	if err := os.WriteFile(a.configPath, []byte(path), 0o600); err != nil {
		return fmt.Errorf("local: save vault path: %w", err)
	}
	a.mu.Lock()
	a.root = path
	a.mu.Unlock()
	return nil
}

// PickVaultFolder needs a native folder dialog, which a headless host
// does not have.
func (a *Adapter) PickVaultFolder(ctx context.Context) (string, error) {
	return "", fmt.Errorf("local: pick folder: %w", apperr.ErrNotSupported)
}

// vaultRoot returns the selected root or ErrNotSelected.
func (a *Adapter) vaultRoot() (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.root == "" {
		return "", apperr.ErrNotSelected
	}
	return a.root, nil
}

// safePath resolves a vault-relative path and rejects any result that
// escapes the root (directory traversal).
func (a *Adapter) safePath(rel string) (string, error) {
	root, err := a.vaultRoot()
	if err != nil {
		return "", err
	}
	if rel == "" {
		return root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("local: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("local: resolve path: %w", err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("local: resolve root: %w", err)
	}
	if !strings.HasPrefix(abs, absRoot+string(os.PathSeparator)) && abs != absRoot {
		return "", fmt.Errorf("local: path escapes vault root: %s", rel)
	}
	return abs, nil
}

// ReadFile returns the file content as a string.
func (a *Adapter) ReadFile(ctx context.Context, path string) (string, error) {
	abs, err := a.safePath(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("local: read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteFile atomically writes content: tmp file → fsync → rename.
// Parent directories are created as needed.
func (a *Adapter) WriteFile(ctx context.Context, path, content string) error {
	abs, err := a.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("local: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".lifeos-tmp-*")
	if err != nil {
		return fmt.Errorf("local: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return fmt.Errorf("local: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("local: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("local: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("local: rename: %w", err)
	}
	success = true
	return nil
}

// DeleteFile removes a file, or a directory recursively.
func (a *Adapter) DeleteFile(ctx context.Context, path string) error {
	abs, err := a.safePath(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("local: delete %s: %w", path, err)
	}
	if info.IsDir() {
		if err := os.RemoveAll(abs); err != nil {
			return fmt.Errorf("local: delete dir %s: %w", path, err)
		}
		return nil
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("local: delete %s: %w", path, err)
	}
	return nil
}

// FileExists reports whether a file or directory exists at path.
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	abs, err := a.safePath(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("local: stat %s: %w", path, err)
	}
	return true, nil
}

// CreateDirAll makes the directory and any missing parents.
func (a *Adapter) CreateDirAll(ctx context.Context, path string) error {
	abs, err := a.safePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("local: mkdir %s: %w", path, err)
	}
	return nil
}

// MoveFile renames src to dest, creating dest's parent directory.
func (a *Adapter) MoveFile(ctx context.Context, src, dest string) error {
	absSrc, err := a.safePath(src)
	if err != nil {
		return err
	}
	absDest, err := a.safePath(dest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absDest), 0o755); err != nil {
		return fmt.Errorf("local: mkdir for move: %w", err)
	}
	if err := os.Rename(absSrc, absDest); err != nil {
		return fmt.Errorf("local: move: %w", err)
	}
	return nil
}

// ListDir returns the entries under path. With recursive, subdirectory
// contents are appended depth-first after their parent entry.
func (a *Adapter) ListDir(ctx context.Context, path string, recursive bool) ([]note.DirEntry, error) {
	abs, err := a.safePath(path)
	if err != nil {
		return nil, err
	}
	return a.listDir(abs, strings.Trim(path, "/"), recursive)
}

func (a *Adapter) listDir(abs, rel string, recursive bool) ([]note.DirEntry, error) {
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("local: list %s: %w", rel, err)
	}
	out := []note.DirEntry{}
	for _, e := range entries {
		entryRel := joinRel(rel, e.Name())
		de := note.DirEntry{Name: e.Name(), Path: entryRel, IsDir: e.IsDir()}
		if info, err := e.Info(); err == nil {
			de.Modified = info.ModTime()
			if !e.IsDir() {
				de.Size = info.Size()
			}
		}
		out = append(out, de)
		if recursive && e.IsDir() {
			sub, err := a.listDir(filepath.Join(abs, e.Name()), entryRel, true)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}
	return out, nil
}

// ReadNote reads and parses one Markdown note.
func (a *Adapter) ReadNote(ctx context.Context, path string) (note.File, error) {
	abs, err := a.safePath(path)
	if err != nil {
		return note.File{}, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return note.File{}, fmt.Errorf("local: read %s: %w", path, err)
	}
	fm, body := note.Parse(string(data))
	f := note.File{
		Path:        path,
		Filename:    filepath.Base(path),
		Frontmatter: fm,
		Content:     body,
	}
	if info, err := os.Stat(abs); err == nil {
		f.Modified = info.ModTime()
	}
	return f, nil
}

// WriteNote serializes frontmatter plus body and writes the note.
func (a *Adapter) WriteNote(ctx context.Context, path string, fm note.Frontmatter, content string) error {
	return a.WriteFile(ctx, path, note.Compose(fm, content))
}

// ListNotes returns every parseable .md file under dir, newest first.
// A missing directory yields an empty slice.
func (a *Adapter) ListNotes(ctx context.Context, dir string, recursive bool) ([]note.File, error) {
	abs, err := a.safePath(dir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return []note.File{}, nil
		}
		return nil, fmt.Errorf("local: stat %s: %w", dir, err)
	}

	out := []note.File{}
	walk := func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if !recursive && p != abs {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			// Unreadable files are skipped, not fatal.
			return nil
		}
		fm, body := note.Parse(string(data))
		rel, _ := filepath.Rel(abs, p)
		f := note.File{
			Path:        joinRel(strings.Trim(dir, "/"), filepath.ToSlash(rel)),
			Filename:    d.Name(),
			Frontmatter: fm,
			Content:     body,
		}
		if info, err := d.Info(); err == nil {
			f.Modified = info.ModTime()
		}
		out = append(out, f)
		return nil
	}
	if err := filepath.WalkDir(abs, walk); err != nil {
		return nil, fmt.Errorf("local: list notes: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Modified.After(out[j].Modified) })
	return out, nil
}

func joinRel(base, name string) string {
	if base == "" {
		return name
	}
	return base + "/" + name
}
