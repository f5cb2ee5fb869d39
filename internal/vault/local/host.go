package local

import (
	"context"

	"github.com/lifeos-dev/lifeos/internal/host"
	"github.com/lifeos-dev/lifeos/internal/mail"
)

// Host-authority operations delegate to the host package; mail
// operations additionally need the selected vault for the message
// cache.

func (a *Adapter) RunShellCommand(ctx context.Context, command string, args []string) (string, error) {
	return host.RunShellCommand(ctx, command, args)
}

func (a *Adapter) RunShortcut(ctx context.Context, name string) (string, error) {
	return host.RunShortcut(ctx, name)
}

func (a *Adapter) OpenInFileManager(ctx context.Context, path string) error {
	return host.OpenInFileManager(ctx, path)
}

func (a *Adapter) ScanGitRepos(ctx context.Context, root string, maxDepth int) ([]host.GitRepo, error) {
	return host.ScanGitRepos(ctx, root, maxDepth)
}

func (a *Adapter) CreateScheduledTask(ctx context.Context, task host.ScheduledTask) error {
	return a.scheduler.Create(ctx, task)
}

func (a *Adapter) ListScheduledTasks(ctx context.Context) ([]host.ScheduledTask, error) {
	return a.scheduler.List(ctx)
}

func (a *Adapter) DeleteScheduledTask(ctx context.Context, id string) error {
	return a.scheduler.Delete(ctx, id)
}

func (a *Adapter) ListSystemNotes(ctx context.Context, query string, offset, limit int) (host.SystemNotesPage, error) {
	return a.notes.List(ctx, query, offset, limit)
}

func (a *Adapter) CreateSystemNote(ctx context.Context, folder, title, body string) (string, error) {
	return a.notes.Create(ctx, folder, title, body)
}

func (a *Adapter) UpdateSystemNote(ctx context.Context, id, body string) error {
	return a.notes.Update(ctx, id, body)
}

func (a *Adapter) MailSync(ctx context.Context, acct mail.Account, folder string, max, skip int) ([]mail.Message, error) {
	root, err := a.vaultRoot()
	if err != nil {
		return nil, err
	}
	return mail.Sync(ctx, acct, root, folder, max, skip)
}

func (a *Adapter) MailFolders(ctx context.Context, acct mail.Account) ([]string, error) {
	return mail.Folders(ctx, acct)
}

func (a *Adapter) MailSend(ctx context.Context, acct mail.Account, msg mail.Outgoing) error {
	return mail.Send(ctx, acct, msg)
}

func (a *Adapter) CachedMail(ctx context.Context, accountID, folder string) ([]mail.Message, error) {
	root, err := a.vaultRoot()
	if err != nil {
		return nil, err
	}
	return mail.Cached(root, accountID, folder)
}
