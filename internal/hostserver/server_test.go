package hostserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lifeos-dev/lifeos/internal/note"
	"github.com/lifeos-dev/lifeos/internal/vault/local"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	vaultDir := filepath.Join(dir, "vault")
	if err := os.MkdirAll(vaultDir, 0o755); err != nil {
		t.Fatal(err)
	}
	backend := local.NewWithConfig(filepath.Join(dir, ".life-os-vault"))
	if err := backend.SetVaultPath(context.Background(), vaultDir); err != nil {
		t.Fatal(err)
	}
	return New(backend)
}

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestWriteAndReadFile(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()

	r, err := srv.writeFile(ctx, toolRequest("write_file", map[string]interface{}{
		"path":    "daily/tasks/2025-06-02.md",
		"content": "- [ ] buy milk\n",
	}))
	if err != nil {
		t.Fatalf("write_file: %v", err)
	}
	if r.IsError {
		t.Fatalf("write_file error: %s", resultText(r))
	}

	r, err = srv.readFile(ctx, toolRequest("read_file", map[string]interface{}{
		"path": "daily/tasks/2025-06-02.md",
	}))
	if err != nil {
		t.Fatalf("read_file: %v", err)
	}
	if got := resultText(r); got != "- [ ] buy milk\n" {
		t.Fatalf("content = %q", got)
	}
}

func TestReadFileMissingIsToolError(t *testing.T) {
	srv := testServer(t)
	r, err := srv.readFile(context.Background(), toolRequest("read_file", map[string]interface{}{
		"path": "nope.md",
	}))
	if err != nil {
		t.Fatalf("read_file: %v", err)
	}
	if !r.IsError {
		t.Fatal("expected tool error for missing file")
	}
	if resultText(r) == "" {
		t.Fatal("error message must carry the backend text")
	}
}

func TestWriteNoteRoundTrip(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()

	fm, _ := json.Marshal(note.Frontmatter{"title": "Plan", "status": "active"})
	r, err := srv.writeNote(ctx, toolRequest("write_note", map[string]interface{}{
		"path":        "projects/active/plan.md",
		"frontmatter": string(fm),
		"content":     "# Plan",
	}))
	if err != nil || r.IsError {
		t.Fatalf("write_note: %v %s", err, resultText(r))
	}

	r, err = srv.readNote(ctx, toolRequest("read_note", map[string]interface{}{
		"path": "projects/active/plan.md",
	}))
	if err != nil || r.IsError {
		t.Fatalf("read_note: %v %s", err, resultText(r))
	}

	var f note.File
	if err := json.Unmarshal([]byte(resultText(r)), &f); err != nil {
		t.Fatalf("decode note: %v", err)
	}
	if f.Frontmatter["title"] != "Plan" || f.Content != "# Plan" {
		t.Fatalf("note = %+v", f)
	}
}

func TestFileExists(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()

	r, _ := srv.fileExists(ctx, toolRequest("file_exists", map[string]interface{}{"path": "x.md"}))
	if got := resultText(r); got != "false" {
		t.Fatalf("exists = %q, want false", got)
	}

	if r, _ := srv.writeFile(ctx, toolRequest("write_file", map[string]interface{}{
		"path": "x.md", "content": "x",
	})); r.IsError {
		t.Fatal(resultText(r))
	}
	r, _ = srv.fileExists(ctx, toolRequest("file_exists", map[string]interface{}{"path": "x.md"}))
	if got := resultText(r); got != "true" {
		t.Fatalf("exists = %q, want true", got)
	}
}

func TestListNotesJSON(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()

	for _, p := range []string{"n/a.md", "n/b.md"} {
		if r, _ := srv.writeFile(ctx, toolRequest("write_file", map[string]interface{}{
			"path": p, "content": "body",
		})); r.IsError {
			t.Fatal(resultText(r))
		}
	}

	r, err := srv.listNotes(ctx, toolRequest("list_notes", map[string]interface{}{"dir": "n"}))
	if err != nil || r.IsError {
		t.Fatalf("list_notes: %v %s", err, resultText(r))
	}
	var notes []note.File
	if err := json.Unmarshal([]byte(resultText(r)), &notes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("notes = %d, want 2", len(notes))
	}
}

func TestMissingRequiredArgIsToolError(t *testing.T) {
	srv := testServer(t)
	r, err := srv.writeFile(context.Background(), toolRequest("write_file", map[string]interface{}{
		"path": "only-path.md",
	}))
	if err != nil {
		t.Fatalf("write_file: %v", err)
	}
	if !r.IsError {
		t.Fatal("expected tool error for missing content")
	}
}
