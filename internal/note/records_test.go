package note

import (
	"reflect"
	"strings"
	"testing"
)

func dayFile(content string) File {
	fm, body := Parse(content)
	return File{
		Path:        "daily/tasks/2024-01-01.md",
		Filename:    "2024-01-01.md",
		Frontmatter: fm,
		Content:     body,
	}
}

func TestParseDayNote(t *testing.T) {
	f := dayFile("---\ndate: 2024-01-01\nmood: 😊\n---\n## 今日任务\n\n- [ ] buy milk #errand\n\n## 今日笔记\n\nfirst day\n")
	d := ParseDayNote(f)

	if d.Date != "2024-01-01" || d.Mood != "😊" {
		t.Errorf("frontmatter fields = %q %q", d.Date, d.Mood)
	}
	want := []TaskItem{{Text: "buy milk", Done: false, Tags: []string{"errand"}}}
	if !reflect.DeepEqual(d.Tasks, want) {
		t.Errorf("tasks = %+v, want %+v", d.Tasks, want)
	}
	if d.Notes != "first day\n" {
		t.Errorf("notes = %q", d.Notes)
	}
}

func TestDayNote_ToggleAndCompose(t *testing.T) {
	f := dayFile("---\ndate: 2024-01-01\n---\n## 今日任务\n\n- [ ] buy milk #errand\n\n## 今日笔记\n\nnotes here\n")
	d := ParseDayNote(f)
	d.Tasks[0].Done = true

	fm, body, err := d.Compose()
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if fm["date"] != "2024-01-01" {
		t.Errorf("date = %q", fm["date"])
	}
	if !strings.Contains(body, "- [x] buy milk #errand") {
		t.Errorf("body = %q", body)
	}
	if !strings.Contains(body, "## "+NotesHeading) || !strings.Contains(body, "notes here") {
		t.Errorf("notes section lost: %q", body)
	}
}

func TestDayNote_ComposeCountMismatch(t *testing.T) {
	f := dayFile("---\ndate: 2024-01-01\n---\n- [ ] a\n")
	d := ParseDayNote(f)
	d.Tasks = append(d.Tasks, TaskItem{Text: "b"})
	if _, _, err := d.Compose(); err == nil {
		t.Error("expected count mismatch error")
	}
}

func TestProject_RoundTrip(t *testing.T) {
	p := Project{
		Title:    "Ship vault backend",
		Status:   "active",
		Priority: "high",
		Created:  "2024-01-01",
		Tags:     []string{"infra", "go"},
		Body:     "## Plan\n\ndetails\n",
	}
	fm, body := p.Compose()
	back := ParseProject(File{Filename: "ship.md", Frontmatter: fm, Content: body})
	if !reflect.DeepEqual(back, p) {
		t.Errorf("round trip = %+v, want %+v", back, p)
	}
}

func TestParseProject_TitleFallsBackToFilename(t *testing.T) {
	p := ParseProject(File{Filename: "untitled-idea.md", Frontmatter: Frontmatter{}, Content: "x"})
	if p.Title != "untitled-idea" {
		t.Errorf("title = %q", p.Title)
	}
}

func TestDiaryEntry_TagListValue(t *testing.T) {
	d := ParseDiaryEntry(File{Frontmatter: Frontmatter{
		"date": "2024-02-02",
		"tags": "[travel, family]",
	}})
	if !reflect.DeepEqual(d.Tags, []string{"travel", "family"}) {
		t.Errorf("tags = %v", d.Tags)
	}
}

func TestDecision_RoundTrip(t *testing.T) {
	dec := Decision{Title: "Use SQLite for grants", Date: "2024-03-03", Status: "accepted", Body: "## Context\n"}
	fm, body := dec.Compose()
	back := ParseDecision(File{Filename: "use-sqlite.md", Frontmatter: fm, Content: body})
	if !reflect.DeepEqual(back, dec) {
		t.Errorf("round trip = %+v, want %+v", back, dec)
	}
}
