// Package sandbox implements the vault backend over a single granted
// os.Root capability. All access goes through the root handle, so the
// adapter can never touch anything outside the granted directory, and
// host-authority operations are unavailable.
package sandbox

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/lifeos-dev/lifeos/internal/apperr"
)

// Session is one granted root plus the handle cache built on top of
// it. Handles are cached by the exact directory path string and are
// never individually evicted; installing a new root replaces the whole
// session.
type Session struct {
	root    *os.Root
	display string
	handles map[string]*os.Root
}

// Invalidate closes every cached handle and the root itself.
func (s *Session) Invalidate() {
	if s == nil {
		return
	}
	for _, h := range s.handles {
		_ = h.Close()
	}
	s.handles = nil
	if s.root != nil {
		_ = s.root.Close()
	}
}

// Adapter is the sandboxed vault backend.
type Adapter struct {
	mu      sync.Mutex
	session *Session
}

// New returns an adapter with no granted root; every operation fails
// with ErrNotSelected until one is installed.
func New() *Adapter {
	return &Adapter{}
}

// InstallRoot replaces the current session with a new granted root.
// The previous session's handles are invalidated.
func (a *Adapter) InstallRoot(root *os.Root, display string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.Invalidate()
	a.session = &Session{
		root:    root,
		display: display,
		handles: make(map[string]*os.Root),
	}
}

// VaultPath returns the display path of the granted root, empty when
// none is installed.
func (a *Adapter) VaultPath(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return "", nil
	}
	return a.session.display, nil
}

// SetVaultPath grants the directory at path as the new root.
func (a *Adapter) SetVaultPath(ctx context.Context, p string) error {
	root, err := os.OpenRoot(p)
	if err != nil {
		return fmt.Errorf("sandbox: open root: %w", err)
	}
	a.InstallRoot(root, p)
	return nil
}

// InitVault requires host authority to create directories outside a
// grant.
func (a *Adapter) InitVault(ctx context.Context, path string) error {
	return fmt.Errorf("sandbox: init vault: %w", apperr.ErrNotSupported)
}

// PickVaultFolder requires a native folder dialog.
func (a *Adapter) PickVaultFolder(ctx context.Context) (string, error) {
	return "", fmt.Errorf("sandbox: pick folder: %w", apperr.ErrNotSupported)
}

// current returns the active session or ErrNotSelected.
func (a *Adapter) current() (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil, apperr.ErrNotSelected
	}
	return a.session, nil
}

// splitPath normalizes a /-delimited vault path into its directory
// part and base name. Traversal segments are rejected.
func splitPath(p string) (dir, base string, err error) {
	cleaned := path.Clean("/" + p)
	if cleaned == "/" {
		return "", "", fmt.Errorf("sandbox: empty path")
	}
	cleaned = strings.TrimPrefix(cleaned, "/")
	for _, seg := range strings.Split(cleaned, "/") {
		if seg == ".." {
			return "", "", fmt.Errorf("sandbox: path escapes root: %s", p)
		}
	}
	dir, base = path.Split(cleaned)
	return strings.Trim(dir, "/"), base, nil
}

// resolveDir walks the handle tree one segment at a time and returns
// the handle for the directory at dirPath ("" is the root itself).
// With create, missing segments are made on the way down. Cache hits
// return the previously opened handle.
func (s *Session) resolveDir(dirPath string, create bool) (*os.Root, error) {
	if dirPath == "" {
		return s.root, nil
	}
	if h, ok := s.handles[dirPath]; ok {
		return h, nil
	}

	parent := s.root
	walked := ""
	for _, seg := range strings.Split(dirPath, "/") {
		if walked == "" {
			walked = seg
		} else {
			walked = walked + "/" + seg
		}
		if h, ok := s.handles[walked]; ok {
			parent = h
			continue
		}
		h, err := parent.OpenRoot(seg)
		if err != nil {
			if !create || !os.IsNotExist(err) {
				return nil, err
			}
			if err := parent.Mkdir(seg, 0o755); err != nil && !os.IsExist(err) {
				return nil, err
			}
			h, err = parent.OpenRoot(seg)
			if err != nil {
				return nil, err
			}
		}
		s.handles[walked] = h
		parent = h
	}
	return parent, nil
}
