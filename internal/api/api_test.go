package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lifeos-dev/lifeos/internal/note"
	"github.com/lifeos-dev/lifeos/internal/noteservice"
	"github.com/lifeos-dev/lifeos/internal/testutil"
	"github.com/lifeos-dev/lifeos/internal/vault"
)

// testEnv sets up a temp vault, backend, service, and router.
// authToken="" means auth disabled; non-empty means token mode.
func testEnv(t *testing.T, authToken string) (*noteservice.Service, http.Handler) {
	t.Helper()
	svc, router, _ := testEnvFull(t, authToken != "", authToken, nil)
	return svc, router
}

func testEnvFull(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (*noteservice.Service, http.Handler, vault.Backend) {
	t.Helper()

	_, b := testutil.TestVault(t)
	svc := noteservice.NewService(b)
	router := NewRouter(svc, b, authEnabled, authToken, sseHandler)
	return svc, router, b
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestVaultStatus(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/vault", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var st VaultStatus
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if !st.Selected || st.Path == "" {
		t.Errorf("vault status = %+v", st)
	}
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	w := postJSON(t, router, "/notes", CreateNoteRequest{
		Path:        "hello.md",
		Frontmatter: note.Frontmatter{"title": "Hello"},
		Content:     "# Hello\nWorld",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/notes/hello.md", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var detail NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &detail)
	if detail.Path != "hello.md" {
		t.Errorf("path = %q", detail.Path)
	}
	if detail.Frontmatter["title"] != "Hello" {
		t.Errorf("title = %q, want Hello", detail.Frontmatter["title"])
	}
}

func TestCreateDuplicate(t *testing.T) {
	_, router := testEnv(t, "")

	body := CreateNoteRequest{Path: "dup.md", Content: "a"}
	if w := postJSON(t, router, "/notes", body); w.Code != http.StatusCreated {
		t.Fatalf("first create = %d", w.Code)
	}
	if w := postJSON(t, router, "/notes", body); w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t, "")

	w := postJSON(t, router, "/notes", CreateNoteRequest{Path: "lock.md", Content: "v1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}
	var created NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	updateBody, _ := json.Marshal(UpdateNoteRequest{Content: "v2"})
	req := httptest.NewRequest(http.MethodPut, "/notes/lock.md", bytes.NewReader(updateBody))
	req.Header.Set("If-Match", created.Checksum)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update with correct checksum = %d, body = %s", w.Code, w.Body.String())
	}

	// Same checksum is stale now.
	req = httptest.NewRequest(http.MethodPut, "/notes/lock.md", bytes.NewReader(updateBody))
	req.Header.Set("If-Match", created.Checksum)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("update with stale checksum = %d, want 409", w.Code)
	}
}

func TestUpdateWithoutIfMatch(t *testing.T) {
	_, router := testEnv(t, "")

	postJSON(t, router, "/notes", CreateNoteRequest{Path: "nolock.md", Content: "v1"})

	updateBody, _ := json.Marshal(UpdateNoteRequest{Content: "v2"})
	req := httptest.NewRequest(http.MethodPut, "/notes/nolock.md", bytes.NewReader(updateBody))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("update without If-Match = %d, want 200", w.Code)
	}
}

func TestDeleteNote(t *testing.T) {
	_, router := testEnv(t, "")

	postJSON(t, router, "/notes", CreateNoteRequest{Path: "bye.md", Content: "gone"})

	req := httptest.NewRequest(http.MethodDelete, "/notes/bye.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/notes/bye.md", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestListNotes(t *testing.T) {
	_, router := testEnv(t, "")

	for _, name := range []string{"notes/a.md", "notes/b.md"} {
		postJSON(t, router, "/notes", CreateNoteRequest{Path: name, Content: "# x"})
	}

	req := httptest.NewRequest(http.MethodGet, "/notes?dir=notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	notes := resp["notes"].([]any)
	if len(notes) != 2 {
		t.Errorf("len(notes) = %d, want 2", len(notes))
	}
}

func TestDayNoteEndpoints(t *testing.T) {
	_, router := testEnv(t, "")
	date := "2026-08-24"

	// Missing day note reads as an empty day.
	req := httptest.NewRequest(http.MethodGet, "/days/"+date, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get empty day = %d", w.Code)
	}

	// Replace the day's tasks.
	body, _ := json.Marshal(UpdateDayRequest{
		Tasks: []note.TaskItem{
			{Text: "first", Tags: []string{"work"}},
			{Text: "second", Time: "14:00"},
		},
		Notes: "prose",
	})
	req = httptest.NewRequest(http.MethodPut, "/days/"+date, bytes.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update day = %d, body = %s", w.Code, w.Body.String())
	}
	var day note.DayNote
	_ = json.Unmarshal(w.Body.Bytes(), &day)
	if len(day.Tasks) != 2 || day.Notes != "prose" {
		t.Fatalf("day = %+v", day)
	}

	// Toggle the first task.
	req = httptest.NewRequest(http.MethodPost, "/days/"+date+"/tasks/0/toggle", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle = %d, body = %s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &day)
	if !day.Tasks[0].Done {
		t.Error("task 0 should be done")
	}

	// Out-of-range index.
	req = httptest.NewRequest(http.MethodPost, "/days/"+date+"/tasks/9/toggle", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("toggle out of range = %d, want 404", w.Code)
	}
}

func TestListDirEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	postJSON(t, router, "/notes", CreateNoteRequest{Path: "sub/a.md", Content: "x"})

	req := httptest.NewRequest(http.MethodGet, "/dir?path=&recursive=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("dir = %d", w.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	entries := resp["entries"].([]any)
	if len(entries) < 2 {
		t.Errorf("entries = %d, want >= 2 (dir + file)", len(entries))
	}
}

func TestScanGitReposMissingRoot(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/git/repos", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("scan without root = %d, want 400", w.Code)
	}
}

func TestProjectsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	postJSON(t, router, "/notes", CreateNoteRequest{
		Path:        "projects/active/site.md",
		Frontmatter: note.Frontmatter{"title": "Site", "status": "active"},
		Content:     "plan",
	})

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("projects = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Board    vault.BoardConfig `json:"board"`
		Projects []note.Project    `json:"projects"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Board.Columns) == 0 {
		t.Error("expected default board columns")
	}
	if len(resp.Projects) != 1 || resp.Projects[0].Title != "Site" {
		t.Errorf("projects = %+v", resp.Projects)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/settings/app", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get settings = %d", w.Code)
	}
	var s vault.AppSettings
	_ = json.Unmarshal(w.Body.Bytes(), &s)
	if s.Theme != "dark" {
		t.Errorf("default theme = %q", s.Theme)
	}

	s.Theme = "light"
	body, _ := json.Marshal(s)
	req = httptest.NewRequest(http.MethodPut, "/settings/app", bytes.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("put settings = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/settings/app", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	_ = json.Unmarshal(w.Body.Bytes(), &s)
	if s.Theme != "light" {
		t.Errorf("theme after save = %q", s.Theme)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	raw, _ := json.Marshal(CreateNoteRequest{Path: "auth.md", Content: "test"})
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(raw))
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		<-r.Context().Done()
	})
	_, router, _ := testEnvFull(t, true, "secret", sseHandler)

	// No token → 401.
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}

	// Valid token → streams until context done.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req = httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}
