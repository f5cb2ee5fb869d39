// Package hostserver exposes the full vault operation surface as MCP
// tools over stdio, so a sandboxed front end can forward host-only
// work to a process that has real authority.
package hostserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lifeos-dev/lifeos/internal/host"
	"github.com/lifeos-dev/lifeos/internal/mail"
	"github.com/lifeos-dev/lifeos/internal/note"
	"github.com/lifeos-dev/lifeos/internal/vault"
)

// Server wraps the MCP server with the vault tools.
type Server struct {
	mcp     *server.MCPServer
	backend vault.Backend
}

// New creates a host server with every tool registered against the
// given backend.
func New(backend vault.Backend) *Server {
	s := &Server{backend: backend}

	s.mcp = server.NewMCPServer(
		"LifeOS Host",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("vault_path",
		mcp.WithDescription("Return the selected vault directory, empty when unset."),
	), s.vaultPath)

	s.mcp.AddTool(mcp.NewTool("set_vault_path",
		mcp.WithDescription("Select an existing directory as the vault."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute directory path")),
	), s.setVaultPath)

	s.mcp.AddTool(mcp.NewTool("init_vault",
		mcp.WithDescription("Scaffold a new vault at the given path and select it."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute directory path")),
	), s.initVault)

	s.mcp.AddTool(mcp.NewTool("pick_vault_folder",
		mcp.WithDescription("Open a native folder picker and return the chosen path."),
	), s.pickVaultFolder)

	s.mcp.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read a vault file as text."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path")),
	), s.readFile)

	s.mcp.AddTool(mcp.NewTool("write_file",
		mcp.WithDescription("Write a vault file, creating parent directories."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full file content")),
	), s.writeFile)

	s.mcp.AddTool(mcp.NewTool("delete_file",
		mcp.WithDescription("Delete a vault file, or a directory recursively."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path")),
	), s.deleteFile)

	s.mcp.AddTool(mcp.NewTool("file_exists",
		mcp.WithDescription("Report whether a vault path exists."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path")),
	), s.fileExists)

	s.mcp.AddTool(mcp.NewTool("create_dir_all",
		mcp.WithDescription("Create a vault directory and missing parents."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path")),
	), s.createDirAll)

	s.mcp.AddTool(mcp.NewTool("move_file",
		mcp.WithDescription("Rename a vault file, creating the destination parent."),
		mcp.WithString("src", mcp.Required(), mcp.Description("Source vault-relative path")),
		mcp.WithString("dest", mcp.Required(), mcp.Description("Destination vault-relative path")),
	), s.moveFile)

	s.mcp.AddTool(mcp.NewTool("list_dir",
		mcp.WithDescription("List a vault directory as JSON entries."),
		mcp.WithString("path", mcp.Description("Vault-relative path, empty for root")),
		mcp.WithBoolean("recursive", mcp.Description("Flatten subdirectories depth-first")),
	), s.listDir)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a Markdown note with parsed frontmatter as JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("write_note",
		mcp.WithDescription("Serialize frontmatter plus body and write a note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path")),
		mcp.WithString("frontmatter", mcp.Required(), mcp.Description("Frontmatter as a JSON object of strings")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body")),
	), s.writeNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List parseable notes under a directory as JSON, newest first."),
		mcp.WithString("dir", mcp.Description("Vault-relative directory")),
		mcp.WithBoolean("recursive", mcp.Description("Include subdirectories")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("run_shell_command",
		mcp.WithDescription("Run a program on the host and return its output."),
		mcp.WithString("command", mcp.Required(), mcp.Description("Program to run")),
		mcp.WithString("args", mcp.Description("Arguments as a JSON string array")),
	), s.runShellCommand)

	s.mcp.AddTool(mcp.NewTool("run_shortcut",
		mcp.WithDescription("Run a named macOS shortcut."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Shortcut name")),
	), s.runShortcut)

	s.mcp.AddTool(mcp.NewTool("open_in_file_manager",
		mcp.WithDescription("Reveal a path in the platform file manager."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path")),
	), s.openInFileManager)

	s.mcp.AddTool(mcp.NewTool("scan_git_repos",
		mcp.WithDescription("Scan a directory tree for git repositories, returned as JSON."),
		mcp.WithString("root", mcp.Required(), mcp.Description("Scan root directory")),
		mcp.WithNumber("max_depth", mcp.Description("Directory depth limit")),
	), s.scanGitRepos)

	s.mcp.AddTool(mcp.NewTool("create_scheduled_task",
		mcp.WithDescription("Create a recurring host task."),
		mcp.WithString("task", mcp.Required(), mcp.Description("Task as a JSON object")),
	), s.createScheduledTask)

	s.mcp.AddTool(mcp.NewTool("list_scheduled_tasks",
		mcp.WithDescription("List recurring host tasks as JSON."),
	), s.listScheduledTasks)

	s.mcp.AddTool(mcp.NewTool("delete_scheduled_task",
		mcp.WithDescription("Delete a recurring host task."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
	), s.deleteScheduledTask)

	s.mcp.AddTool(mcp.NewTool("list_system_notes",
		mcp.WithDescription("List notes from the system notes app as JSON."),
		mcp.WithString("query", mcp.Description("Substring filter on the note name")),
		mcp.WithNumber("offset", mcp.Description("Pagination offset")),
		mcp.WithNumber("limit", mcp.Description("Page size")),
	), s.listSystemNotes)

	s.mcp.AddTool(mcp.NewTool("create_system_note",
		mcp.WithDescription("Create a note in the system notes app, returning its id."),
		mcp.WithString("folder", mcp.Description("Target folder")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("body", mcp.Description("Note body")),
	), s.createSystemNote)

	s.mcp.AddTool(mcp.NewTool("update_system_note",
		mcp.WithDescription("Replace the body of a system note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("body", mcp.Required(), mcp.Description("New body")),
	), s.updateSystemNote)

	s.mcp.AddTool(mcp.NewTool("mail_sync",
		mcp.WithDescription("Sync an IMAP folder into the vault cache, returning new messages as JSON."),
		mcp.WithString("account", mcp.Required(), mcp.Description("Account as a JSON object")),
		mcp.WithString("folder", mcp.Required(), mcp.Description("IMAP folder name")),
		mcp.WithNumber("max", mcp.Description("Cap on returned messages")),
		mcp.WithNumber("skip", mcp.Description("Messages to skip from the newest end")),
	), s.mailSync)

	s.mcp.AddTool(mcp.NewTool("mail_folders",
		mcp.WithDescription("List IMAP folders for an account as JSON."),
		mcp.WithString("account", mcp.Required(), mcp.Description("Account as a JSON object")),
	), s.mailFolders)

	s.mcp.AddTool(mcp.NewTool("mail_send",
		mcp.WithDescription("Send a message through the account's SMTP server."),
		mcp.WithString("account", mcp.Required(), mcp.Description("Account as a JSON object")),
		mcp.WithString("message", mcp.Required(), mcp.Description("Outgoing message as a JSON object")),
	), s.mailSend)

	s.mcp.AddTool(mcp.NewTool("cached_mail",
		mcp.WithDescription("Read locally cached messages for an account folder as JSON."),
		mcp.WithString("account_id", mcp.Required(), mcp.Description("Account directory id")),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Folder name")),
	), s.cachedMail)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("lifeos://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Canonical Markdown note and task format the vault uses."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) vaultPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.backend.VaultPath(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(path), nil
}

func (s *Server) setVaultPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.backend.SetVaultPath(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) initVault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.backend.InitVault(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) pickVaultFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.backend.PickVaultFolder(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(path), nil
}

func (s *Server) readFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := s.backend.ReadFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) writeFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.backend.WriteFile(ctx, path, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) deleteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.backend.DeleteFile(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) fileExists(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	exists, err := s.backend.FileExists(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strconv.FormatBool(exists)), nil
}

func (s *Server) createDirAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.backend.CreateDirAll(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) moveFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := req.RequireString("src")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dest, err := req.RequireString("dest")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.backend.MoveFile(ctx, src, dest); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) listDir(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.backend.ListDir(ctx, req.GetString("path", ""), req.GetBool("recursive", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entries), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f, err := s.backend.ReadNote(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(f), nil
}

func (s *Server) writeNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawFM, err := req.RequireString("frontmatter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var fm note.Frontmatter
	if err := json.Unmarshal([]byte(rawFM), &fm); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid frontmatter: %v", err)), nil
	}
	if err := s.backend.WriteNote(ctx, path, fm, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.backend.ListNotes(ctx, req.GetString("dir", ""), req.GetBool("recursive", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(notes), nil
}

func (s *Server) runShellCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, err := req.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var args []string
	if raw := req.GetString("args", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid args: %v", err)), nil
		}
	}
	out, err := s.backend.RunShellCommand(ctx, command, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) runShortcut(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.backend.RunShortcut(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) openInFileManager(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.backend.OpenInFileManager(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) scanGitRepos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := req.RequireString("root")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repos, err := s.backend.ScanGitRepos(ctx, root, req.GetInt("max_depth", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(repos), nil
}

func (s *Server) createScheduledTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("task")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var task host.ScheduledTask
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid task: %v", err)), nil
	}
	if err := s.backend.CreateScheduledTask(ctx, task); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) listScheduledTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := s.backend.ListScheduledTasks(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tasks), nil
}

func (s *Server) deleteScheduledTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.backend.DeleteScheduledTask(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) listSystemNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.backend.ListSystemNotes(ctx,
		req.GetString("query", ""), req.GetInt("offset", 0), req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(page), nil
}

func (s *Server) createSystemNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := s.backend.CreateSystemNote(ctx,
		req.GetString("folder", ""), title, req.GetString("body", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(id), nil
}

func (s *Server) updateSystemNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.backend.UpdateSystemNote(ctx, id, body); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func parseAccount(req mcp.CallToolRequest) (mail.Account, error) {
	raw, err := req.RequireString("account")
	if err != nil {
		return mail.Account{}, err
	}
	var acct mail.Account
	if err := json.Unmarshal([]byte(raw), &acct); err != nil {
		return mail.Account{}, fmt.Errorf("invalid account: %w", err)
	}
	return acct, nil
}

func (s *Server) mailSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	acct, err := parseAccount(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msgs, err := s.backend.MailSync(ctx, acct, folder, req.GetInt("max", 0), req.GetInt("skip", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(msgs), nil
}

func (s *Server) mailFolders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	acct, err := parseAccount(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	folders, err := s.backend.MailFolders(ctx, acct)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(folders), nil
}

func (s *Server) mailSend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	acct, err := parseAccount(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var msg mail.Outgoing
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid message: %v", err)), nil
	}
	if err := s.backend.MailSend(ctx, acct, msg); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) cachedMail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	accountID, err := req.RequireString("account_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msgs, err := s.backend.CachedMail(ctx, accountID, folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(msgs), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "lifeos://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
