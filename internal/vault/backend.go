// Package vault defines the backend-agnostic storage contract for the
// note vault and the constructor that selects a concrete adapter.
package vault

import (
	"context"

	"github.com/lifeos-dev/lifeos/internal/host"
	"github.com/lifeos-dev/lifeos/internal/mail"
	"github.com/lifeos-dev/lifeos/internal/note"
)

// Backend is the single operation set every adapter implements. The
// adapter is chosen once at construction; behavior cannot change
// mid-session without building a new Backend.
//
// Operations take vault-relative, /-delimited paths. Host-exclusive
// operations (the Host sub-interface) must return
// apperr.ErrNotSupported on adapters without host authority.
type Backend interface {
	// Vault lifecycle.
	VaultPath(ctx context.Context) (string, error)
	SetVaultPath(ctx context.Context, path string) error
	InitVault(ctx context.Context, path string) error
	PickVaultFolder(ctx context.Context) (string, error)

	// Generic file operations.
	ReadFile(ctx context.Context, path string) (string, error)
	WriteFile(ctx context.Context, path, content string) error
	DeleteFile(ctx context.Context, path string) error
	FileExists(ctx context.Context, path string) (bool, error)
	CreateDirAll(ctx context.Context, path string) error
	MoveFile(ctx context.Context, src, dest string) error
	ListDir(ctx context.Context, path string, recursive bool) ([]note.DirEntry, error)

	// Parsed note operations.
	ReadNote(ctx context.Context, path string) (note.File, error)
	WriteNote(ctx context.Context, path string, fm note.Frontmatter, content string) error
	ListNotes(ctx context.Context, dir string, recursive bool) ([]note.File, error)

	Host
}

// Host is the set of operations that require host-process authority:
// shell execution, OS integration, git scanning, scheduler and system
// notes access, and mail. Only the local adapter implements them
// directly; the remote adapter forwards them to a host process.
type Host interface {
	RunShellCommand(ctx context.Context, command string, args []string) (string, error)
	RunShortcut(ctx context.Context, name string) (string, error)
	OpenInFileManager(ctx context.Context, path string) error

	ScanGitRepos(ctx context.Context, root string, maxDepth int) ([]host.GitRepo, error)

	CreateScheduledTask(ctx context.Context, task host.ScheduledTask) error
	ListScheduledTasks(ctx context.Context) ([]host.ScheduledTask, error)
	DeleteScheduledTask(ctx context.Context, id string) error

	ListSystemNotes(ctx context.Context, query string, offset, limit int) (host.SystemNotesPage, error)
	CreateSystemNote(ctx context.Context, folder, title, body string) (string, error)
	UpdateSystemNote(ctx context.Context, id, body string) error

	MailSync(ctx context.Context, acct mail.Account, folder string, max, skip int) ([]mail.Message, error)
	MailFolders(ctx context.Context, acct mail.Account) ([]string, error)
	MailSend(ctx context.Context, acct mail.Account, msg mail.Outgoing) error
	CachedMail(ctx context.Context, accountID, folder string) ([]mail.Message, error)
}
