// Package host implements the operations that need host-process
// authority: shell execution, OS integration, git repository scanning,
// the launchd scheduler, and the system notes bridge. The local vault
// adapter calls these directly; the remote adapter forwards to a host
// process that runs them here.
package host

// GitRepo describes one repository found by ScanGitRepos.
type GitRepo struct {
	Path           string `json:"path"`
	Name           string `json:"name"`
	Branch         string `json:"branch"`
	HasUncommitted bool   `json:"has_uncommitted"`
	LastCommit     string `json:"last_commit,omitempty"`
	RemoteURL      string `json:"remote_url,omitempty"`
}

// ScheduledTask describes one recurring background task managed through
// the host scheduler (launchd on macOS).
type ScheduledTask struct {
	ID              string   `json:"id"`
	Label           string   `json:"label"`
	Program         string   `json:"program"`
	Args            []string `json:"args"`
	IntervalSeconds int      `json:"interval_seconds"`
	Enabled         bool     `json:"enabled"`
}

// SystemNote is one note from the host's system notes application.
type SystemNote struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	Folder   string `json:"folder"`
	Created  string `json:"created,omitempty"`
	Modified string `json:"modified,omitempty"`
}

// SystemNotesPage is a paginated system-notes result.
type SystemNotesPage struct {
	Notes   []SystemNote `json:"notes"`
	Total   int          `json:"total"`
	HasMore bool         `json:"has_more"`
}
