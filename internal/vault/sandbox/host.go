package sandbox

import (
	"context"
	"fmt"

	"github.com/lifeos-dev/lifeos/internal/apperr"
	"github.com/lifeos-dev/lifeos/internal/host"
	"github.com/lifeos-dev/lifeos/internal/mail"
)

// The sandbox has no host authority: every host-exclusive operation
// fails explicitly rather than silently doing nothing.

func notSupported(op string) error {
	return fmt.Errorf("sandbox: %s: %w", op, apperr.ErrNotSupported)
}

func (a *Adapter) RunShellCommand(ctx context.Context, command string, args []string) (string, error) {
	return "", notSupported("run shell command")
}

func (a *Adapter) RunShortcut(ctx context.Context, name string) (string, error) {
	return "", notSupported("run shortcut")
}

func (a *Adapter) OpenInFileManager(ctx context.Context, path string) error {
	return notSupported("open in file manager")
}

func (a *Adapter) ScanGitRepos(ctx context.Context, root string, maxDepth int) ([]host.GitRepo, error) {
	return nil, notSupported("scan git repos")
}

func (a *Adapter) CreateScheduledTask(ctx context.Context, task host.ScheduledTask) error {
	return notSupported("create scheduled task")
}

func (a *Adapter) ListScheduledTasks(ctx context.Context) ([]host.ScheduledTask, error) {
	return nil, notSupported("list scheduled tasks")
}

func (a *Adapter) DeleteScheduledTask(ctx context.Context, id string) error {
	return notSupported("delete scheduled task")
}

func (a *Adapter) ListSystemNotes(ctx context.Context, query string, offset, limit int) (host.SystemNotesPage, error) {
	return host.SystemNotesPage{}, notSupported("list system notes")
}

func (a *Adapter) CreateSystemNote(ctx context.Context, folder, title, body string) (string, error) {
	return "", notSupported("create system note")
}

func (a *Adapter) UpdateSystemNote(ctx context.Context, id, body string) error {
	return notSupported("update system note")
}

func (a *Adapter) MailSync(ctx context.Context, acct mail.Account, folder string, max, skip int) ([]mail.Message, error) {
	return nil, notSupported("mail sync")
}

func (a *Adapter) MailFolders(ctx context.Context, acct mail.Account) ([]string, error) {
	return nil, notSupported("mail folders")
}

func (a *Adapter) MailSend(ctx context.Context, acct mail.Account, msg mail.Outgoing) error {
	return notSupported("mail send")
}

func (a *Adapter) CachedMail(ctx context.Context, accountID, folder string) ([]mail.Message, error) {
	return nil, notSupported("cached mail")
}
