// Package remote implements the vault backend as a typed stub over a
// host process: every operation calls a named MCP tool on the host's
// stdio server and surfaces host errors verbatim. The adapter keeps no
// state of its own.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lifeos-dev/lifeos/internal/host"
	"github.com/lifeos-dev/lifeos/internal/mail"
	"github.com/lifeos-dev/lifeos/internal/note"
)

// Adapter forwards every backend operation to the host process.
type Adapter struct {
	client *client.Client
}

// Dial starts the host process and performs the MCP handshake.
func Dial(ctx context.Context, command string, args ...string) (*Adapter, error) {
	c, err := client.NewStdioMCPClient(command, nil, args...)
	if err != nil {
		return nil, fmt.Errorf("remote: start host: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "lifeos", Version: "0.1.0"}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		c.Close()
		return nil, fmt.Errorf("remote: initialize: %w", err)
	}
	return &Adapter{client: c}, nil
}

// Close shuts down the host process connection.
func (a *Adapter) Close() error {
	return a.client.Close()
}

// call invokes one named tool and returns its text payload. A tool
// error becomes a plain error carrying the host's message unmodified.
func (a *Adapter) call(ctx context.Context, tool string, args map[string]any) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args

	res, err := a.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("remote: %s: %w", tool, err)
	}
	text := resultText(res)
	if res.IsError {
		return "", errors.New(text)
	}
	return text, nil
}

// callJSON invokes a tool and decodes its JSON payload into out.
func (a *Adapter) callJSON(ctx context.Context, tool string, args map[string]any, out any) error {
	text, err := a.call(ctx, tool, args)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("remote: %s: decode: %w", tool, err)
	}
	return nil
}

func resultText(res *mcp.CallToolResult) string {
	var b strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func (a *Adapter) VaultPath(ctx context.Context) (string, error) {
	return a.call(ctx, "vault_path", map[string]any{})
}

func (a *Adapter) SetVaultPath(ctx context.Context, path string) error {
	_, err := a.call(ctx, "set_vault_path", map[string]any{"path": path})
	return err
}

func (a *Adapter) InitVault(ctx context.Context, path string) error {
	_, err := a.call(ctx, "init_vault", map[string]any{"path": path})
	return err
}

func (a *Adapter) PickVaultFolder(ctx context.Context) (string, error) {
	return a.call(ctx, "pick_vault_folder", map[string]any{})
}

func (a *Adapter) ReadFile(ctx context.Context, path string) (string, error) {
	return a.call(ctx, "read_file", map[string]any{"path": path})
}

func (a *Adapter) WriteFile(ctx context.Context, path, content string) error {
	_, err := a.call(ctx, "write_file", map[string]any{"path": path, "content": content})
	return err
}

func (a *Adapter) DeleteFile(ctx context.Context, path string) error {
	_, err := a.call(ctx, "delete_file", map[string]any{"path": path})
	return err
}

func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	text, err := a.call(ctx, "file_exists", map[string]any{"path": path})
	if err != nil {
		return false, err
	}
	exists, err := strconv.ParseBool(strings.TrimSpace(text))
	if err != nil {
		return false, fmt.Errorf("remote: file_exists: unexpected reply %q", text)
	}
	return exists, nil
}

func (a *Adapter) CreateDirAll(ctx context.Context, path string) error {
	_, err := a.call(ctx, "create_dir_all", map[string]any{"path": path})
	return err
}

func (a *Adapter) MoveFile(ctx context.Context, src, dest string) error {
	_, err := a.call(ctx, "move_file", map[string]any{"src": src, "dest": dest})
	return err
}

func (a *Adapter) ListDir(ctx context.Context, path string, recursive bool) ([]note.DirEntry, error) {
	var entries []note.DirEntry
	err := a.callJSON(ctx, "list_dir", map[string]any{"path": path, "recursive": recursive}, &entries)
	return entries, err
}

func (a *Adapter) ReadNote(ctx context.Context, path string) (note.File, error) {
	var f note.File
	err := a.callJSON(ctx, "read_note", map[string]any{"path": path}, &f)
	return f, err
}

func (a *Adapter) WriteNote(ctx context.Context, path string, fm note.Frontmatter, content string) error {
	rawFM, err := json.Marshal(fm)
	if err != nil {
		return fmt.Errorf("remote: write_note: encode frontmatter: %w", err)
	}
	_, err = a.call(ctx, "write_note", map[string]any{
		"path":        path,
		"frontmatter": string(rawFM),
		"content":     content,
	})
	return err
}

func (a *Adapter) ListNotes(ctx context.Context, dir string, recursive bool) ([]note.File, error) {
	var notes []note.File
	err := a.callJSON(ctx, "list_notes", map[string]any{"dir": dir, "recursive": recursive}, &notes)
	return notes, err
}

func (a *Adapter) RunShellCommand(ctx context.Context, command string, args []string) (string, error) {
	rawArgs, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("remote: run_shell_command: encode args: %w", err)
	}
	return a.call(ctx, "run_shell_command", map[string]any{
		"command": command,
		"args":    string(rawArgs),
	})
}

func (a *Adapter) RunShortcut(ctx context.Context, name string) (string, error) {
	return a.call(ctx, "run_shortcut", map[string]any{"name": name})
}

func (a *Adapter) OpenInFileManager(ctx context.Context, path string) error {
	_, err := a.call(ctx, "open_in_file_manager", map[string]any{"path": path})
	return err
}

func (a *Adapter) ScanGitRepos(ctx context.Context, root string, maxDepth int) ([]host.GitRepo, error) {
	var repos []host.GitRepo
	err := a.callJSON(ctx, "scan_git_repos", map[string]any{"root": root, "max_depth": maxDepth}, &repos)
	return repos, err
}

func (a *Adapter) CreateScheduledTask(ctx context.Context, task host.ScheduledTask) error {
	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("remote: create_scheduled_task: encode: %w", err)
	}
	_, err = a.call(ctx, "create_scheduled_task", map[string]any{"task": string(raw)})
	return err
}

func (a *Adapter) ListScheduledTasks(ctx context.Context) ([]host.ScheduledTask, error) {
	var tasks []host.ScheduledTask
	err := a.callJSON(ctx, "list_scheduled_tasks", map[string]any{}, &tasks)
	return tasks, err
}

func (a *Adapter) DeleteScheduledTask(ctx context.Context, id string) error {
	_, err := a.call(ctx, "delete_scheduled_task", map[string]any{"id": id})
	return err
}

func (a *Adapter) ListSystemNotes(ctx context.Context, query string, offset, limit int) (host.SystemNotesPage, error) {
	var page host.SystemNotesPage
	err := a.callJSON(ctx, "list_system_notes", map[string]any{
		"query":  query,
		"offset": offset,
		"limit":  limit,
	}, &page)
	return page, err
}

func (a *Adapter) CreateSystemNote(ctx context.Context, folder, title, body string) (string, error) {
	return a.call(ctx, "create_system_note", map[string]any{
		"folder": folder,
		"title":  title,
		"body":   body,
	})
}

func (a *Adapter) UpdateSystemNote(ctx context.Context, id, body string) error {
	_, err := a.call(ctx, "update_system_note", map[string]any{"id": id, "body": body})
	return err
}

func encodeAccount(acct mail.Account) (string, error) {
	raw, err := json.Marshal(acct)
	if err != nil {
		return "", fmt.Errorf("remote: encode account: %w", err)
	}
	return string(raw), nil
}

func (a *Adapter) MailSync(ctx context.Context, acct mail.Account, folder string, max, skip int) ([]mail.Message, error) {
	rawAcct, err := encodeAccount(acct)
	if err != nil {
		return nil, err
	}
	var msgs []mail.Message
	err = a.callJSON(ctx, "mail_sync", map[string]any{
		"account": rawAcct,
		"folder":  folder,
		"max":     max,
		"skip":    skip,
	}, &msgs)
	return msgs, err
}

func (a *Adapter) MailFolders(ctx context.Context, acct mail.Account) ([]string, error) {
	rawAcct, err := encodeAccount(acct)
	if err != nil {
		return nil, err
	}
	var folders []string
	err = a.callJSON(ctx, "mail_folders", map[string]any{"account": rawAcct}, &folders)
	return folders, err
}

func (a *Adapter) MailSend(ctx context.Context, acct mail.Account, msg mail.Outgoing) error {
	rawAcct, err := encodeAccount(acct)
	if err != nil {
		return err
	}
	rawMsg, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("remote: encode message: %w", err)
	}
	_, err = a.call(ctx, "mail_send", map[string]any{
		"account": rawAcct,
		"message": string(rawMsg),
	})
	return err
}

func (a *Adapter) CachedMail(ctx context.Context, accountID, folder string) ([]mail.Message, error) {
	var msgs []mail.Message
	err := a.callJSON(ctx, "cached_mail", map[string]any{
		"account_id": accountID,
		"folder":     folder,
	}, &msgs)
	return msgs, err
}
