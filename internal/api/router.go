package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lifeos-dev/lifeos/internal/noteservice"
	"github.com/lifeos-dev/lifeos/internal/vault"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, backend vault.Backend, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, backend)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Vault lifecycle.
	r.Get("/vault", h.VaultStatus)
	r.Post("/vault/init", h.InitVault)
	r.Post("/vault/select", h.SelectVault)

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Day notes.
	r.Get("/days/{date}", h.GetDay)
	r.Put("/days/{date}", h.UpdateDay)
	r.Post("/days/{date}/tasks/{index}/toggle", h.ToggleTask)

	// Directory listing.
	r.Get("/dir", h.ListDir)

	// Git repo scan (host authority required).
	r.Get("/git/repos", h.ScanGitRepos)

	// Typed collections.
	r.Get("/projects", h.ListProjects)
	r.Get("/diary/{year}", h.ListDiary)
	r.Get("/decisions", h.ListDecisions)

	// Vault-scoped settings.
	r.Get("/settings/menu", h.GetMenu)
	r.Put("/settings/menu", h.PutMenu)
	r.Get("/settings/app", h.GetSettings)
	r.Put("/settings/app", h.PutSettings)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
