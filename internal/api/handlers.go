package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lifeos-dev/lifeos/internal/apperr"
	"github.com/lifeos-dev/lifeos/internal/noteservice"
	"github.com/lifeos-dev/lifeos/internal/vault"
)

// Handler holds API route handlers.
type Handler struct {
	svc     *noteservice.Service
	backend vault.Backend
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service, backend vault.Backend) *Handler {
	return &Handler{svc: svc, backend: backend}
}

// notePath extracts the note path from the URL (everything after the
// route prefix). Supports encoded slashes (e.g. daily%2Ftasks%2Fa.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// VaultStatus handles GET /api/vault.
func (h *Handler) VaultStatus(w http.ResponseWriter, r *http.Request) {
	path, err := h.backend.VaultPath(r.Context())
	if err != nil || path == "" {
		writeJSON(w, http.StatusOK, VaultStatus{Selected: false})
		return
	}
	writeJSON(w, http.StatusOK, VaultStatus{Selected: true, Path: path})
}

// InitVault handles POST /api/vault/init.
func (h *Handler) InitVault(w http.ResponseWriter, r *http.Request) {
	var req VaultPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.backend.InitVault(r.Context(), req.Path); err != nil {
		if errors.Is(err, apperr.ErrNotSupported) {
			writeJSON(w, http.StatusNotImplemented, errorBody(err.Error()))
			return
		}
		slog.Error("init vault failed", slog.String("path", req.Path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, VaultStatus{Selected: true, Path: req.Path})
}

// SelectVault handles POST /api/vault/select.
func (h *Handler) SelectVault(w http.ResponseWriter, r *http.Request) {
	var req VaultPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.backend.SetVaultPath(r.Context(), req.Path); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, VaultStatus{Selected: true, Path: req.Path})
}

// ListNotes handles GET /api/notes?dir=&recursive=.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dir := q.Get("dir")
	recursive := q.Get("recursive") == "true"

	items, err := h.svc.ListNotes(r.Context(), dir, recursive)
	if err != nil {
		slog.Error("list notes failed", slog.String("dir", dir), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []NoteListItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": items, "total": len(items)})
}

// GetNote handles GET /api/notes/*.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	detail, err := h.svc.GetNote(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get note failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	detail, err := h.svc.CreateNote(r.Context(), req.Path, req.Frontmatter, req.Content)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("note already exists"))
		} else {
			slog.Error("create note failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// UpdateNote handles PUT /api/notes/*.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	detail, err := h.svc.UpdateNote(r.Context(), path, req.Frontmatter, req.Content, ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		default:
			slog.Error("update note failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// DeleteNote handles DELETE /api/notes/*.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteNote(r.Context(), path); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("delete note failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDay handles GET /api/days/{date}.
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	day, err := h.svc.GetDay(r.Context(), date)
	if err != nil {
		slog.Error("get day failed", slog.String("date", date), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// UpdateDay handles PUT /api/days/{date}.
func (h *Handler) UpdateDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	var req UpdateDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	day, err := h.svc.SetDay(r.Context(), date, req.Tasks, req.Notes, req.Energy, req.Mood)
	if err != nil {
		slog.Error("update day failed", slog.String("date", date), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// ToggleTask handles POST /api/days/{date}/tasks/{index}/toggle.
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be an integer"))
		return
	}
	day, err := h.svc.ToggleTask(r.Context(), date, idx)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("no such task"))
			return
		}
		slog.Error("toggle task failed", slog.String("date", date), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// ListDir handles GET /api/dir?path=&recursive=.
func (h *Handler) ListDir(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.backend.ListDir(r.Context(), q.Get("path"), q.Get("recursive") == "true")
	if err != nil {
		slog.Error("list dir failed", slog.String("path", q.Get("path")), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// ScanGitRepos handles GET /api/git/repos?root=&depth=.
func (h *Handler) ScanGitRepos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	root := q.Get("root")
	if root == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("root is required"))
		return
	}
	depth, _ := strconv.Atoi(q.Get("depth"))

	repos, err := h.backend.ScanGitRepos(r.Context(), root, depth)
	if err != nil {
		if errors.Is(err, apperr.ErrNotSupported) {
			writeJSON(w, http.StatusNotImplemented, errorBody(err.Error()))
			return
		}
		slog.Error("git scan failed", slog.String("root", root), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"repos": repos})
}

// ListProjects handles GET /api/projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.ListProjects(r.Context())
	if err != nil {
		slog.Error("list projects failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	board, err := vault.LoadBoardConfig(r.Context(), h.backend)
	if err != nil {
		slog.Error("load board failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"board": board, "projects": projects})
}

// ListDiary handles GET /api/diary/{year}.
func (h *Handler) ListDiary(w http.ResponseWriter, r *http.Request) {
	year := chi.URLParam(r, "year")
	entries, err := h.svc.ListDiary(r.Context(), year)
	if err != nil {
		slog.Error("list diary failed", slog.String("year", year), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// ListDecisions handles GET /api/decisions.
func (h *Handler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	decisions, err := h.svc.ListDecisions(r.Context())
	if err != nil {
		slog.Error("list decisions failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"decisions": decisions})
}

// GetMenu handles GET /api/settings/menu.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	cfg, err := vault.LoadMenuConfig(r.Context(), h.backend)
	if err != nil {
		slog.Error("load menu failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// PutMenu handles PUT /api/settings/menu.
func (h *Handler) PutMenu(w http.ResponseWriter, r *http.Request) {
	var cfg vault.MenuConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := vault.SaveMenuConfig(r.Context(), h.backend, cfg); err != nil {
		slog.Error("save menu failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// GetSettings handles GET /api/settings/app.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := vault.LoadAppSettings(r.Context(), h.backend)
	if err != nil {
		slog.Error("load settings failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// PutSettings handles PUT /api/settings/app.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var s vault.AppSettings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := vault.SaveAppSettings(r.Context(), h.backend, s); err != nil {
		slog.Error("save settings failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, s)
}
