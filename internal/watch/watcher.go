// Package watch observes the vault directory tree and reports note
// changes.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called for each observed note change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the vault root and reports .md
// file changes until ctx is cancelled. Paths passed to cb are
// vault-relative with forward slashes.
//
// New directories created at runtime are automatically added to the
// watch list. Rename events fire on the old path only, so they trigger
// a debounced reconciliation pass that diffs an in-memory snapshot
// against the disk and reports whatever the rename actually did.
func Watch(ctx context.Context, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	snapshot, err := takeSnapshot(vaultRoot)
	if err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	// reconcileTimer debounces rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	emit := func(kind, rel string) {
		if cb != nil {
			cb(kind, filepath.ToSlash(rel))
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(vaultRoot, snapshot, logger, emit)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories: add to watcher and report contained notes.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					reportNewDir(vaultRoot, absPath, snapshot, emit)
					continue
				}
			}

			// Only .md files from here on.
			if !strings.HasSuffix(absPath, ".md") {
				continue
			}

			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				info, statErr := os.Stat(absPath)
				if statErr != nil {
					continue
				}
				kind := "updated"
				if _, known := snapshot[rel]; !known {
					kind = "created"
				}
				snapshot[rel] = info.ModTime()
				logger.Debug("watcher: change", slog.String("path", rel), slog.String("op", kind))
				emit(kind, rel)

			case ev.Op&fsnotify.Remove != 0:
				delete(snapshot, rel)
				logger.Debug("watcher: deleted", slog.String("path", rel))
				emit("deleted", rel)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only. The new
				// path arrives as a separate Create event (if it stays
				// within a watched dir). Drop the old entry now and
				// schedule a reconciliation pass for stragglers.
				if _, known := snapshot[rel]; known {
					delete(snapshot, rel)
					logger.Debug("watcher: rename old deleted", slog.String("path", rel))
					emit("deleted", rel)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile diffs the snapshot against the disk: snapshot entries
// without a file are reported deleted, unseen files created, and files
// with newer modified times updated.
func reconcile(vaultRoot string, snapshot map[string]time.Time, logger *slog.Logger, emit func(kind, rel string)) {
	disk, err := takeSnapshot(vaultRoot)
	if err != nil {
		logger.Warn("reconcile: snapshot failed", slog.String("error", err.Error()))
		return
	}

	for rel := range snapshot {
		if _, ok := disk[rel]; !ok {
			delete(snapshot, rel)
			logger.Debug("reconcile: removed stale", slog.String("path", rel))
			emit("deleted", rel)
		}
	}

	for rel, mod := range disk {
		prev, known := snapshot[rel]
		if known && !mod.After(prev) {
			continue
		}
		snapshot[rel] = mod
		kind := "updated"
		if !known {
			kind = "created"
		}
		logger.Debug("reconcile: found", slog.String("path", rel), slog.String("op", kind))
		emit(kind, rel)
	}
}

// reportNewDir reports any .md files already inside a newly created
// directory.
func reportNewDir(vaultRoot, dirPath string, snapshot map[string]time.Time, emit func(kind, rel string)) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(vaultRoot, path)
		if relErr != nil {
			return nil
		}
		if _, known := snapshot[rel]; known {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		snapshot[rel] = info.ModTime()
		emit("created", rel)
		return nil
	})
}

// takeSnapshot maps every .md file under root to its modified time.
func takeSnapshot(root string) (map[string]time.Time, error) {
	out := make(map[string]time.Time)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		out[rel] = info.ModTime()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
