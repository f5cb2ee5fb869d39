package host

import (
	"context"
	"errors"
	"testing"

	"github.com/lifeos-dev/lifeos/internal/apperr"
)

func testScheduler(t *testing.T) (*Scheduler, *[]string) {
	t.Helper()
	calls := &[]string{}
	s := &Scheduler{
		Dir: t.TempDir(),
		launchctl: func(ctx context.Context, args ...string) error {
			*calls = append(*calls, args[0])
			return nil
		},
	}
	return s, calls
}

func TestSchedulerCreateListDelete(t *testing.T) {
	ctx := context.Background()
	s, calls := testScheduler(t)

	task := ScheduledTask{
		ID:              "mail-sync",
		Program:         "/usr/local/bin/lifeos",
		Args:            []string{"mail", "sync"},
		IntervalSeconds: 900,
	}
	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(*calls) != 1 || (*calls)[0] != "load" {
		t.Fatalf("launchctl calls = %v", *calls)
	}

	tasks, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.ID != "mail-sync" || got.Label != "com.lifeos.mail-sync" {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.Program != task.Program || len(got.Args) != 2 || got.Args[1] != "sync" {
		t.Fatalf("program args mismatch: %+v", got)
	}
	if got.IntervalSeconds != 900 || !got.Enabled {
		t.Fatalf("interval/enabled mismatch: %+v", got)
	}

	if err := s.Delete(ctx, "mail-sync"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	tasks, err = s.List(ctx)
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(tasks))
	}
}

func TestSchedulerCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	s, _ := testScheduler(t)

	task := ScheduledTask{ID: "x", Program: "/bin/true", IntervalSeconds: 60}
	if err := s.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := s.Create(ctx, task)
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestSchedulerDeleteMissing(t *testing.T) {
	s, _ := testScheduler(t)
	err := s.Delete(context.Background(), "nope")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSchedulerRejectsInvalidTask(t *testing.T) {
	s, _ := testScheduler(t)
	ctx := context.Background()

	cases := []ScheduledTask{
		{Program: "/bin/true", IntervalSeconds: 60},
		{ID: "a", IntervalSeconds: 60},
		{ID: "a", Program: "/bin/true"},
	}
	for i, task := range cases {
		if err := s.Create(ctx, task); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestParsePlistRejectsForeignLabel(t *testing.T) {
	data := renderPlist(ScheduledTask{
		ID:              "t",
		Label:           "com.example.other",
		Program:         "/bin/true",
		IntervalSeconds: 30,
	})
	if _, ok := parsePlist(data); ok {
		t.Fatal("expected foreign label to be rejected")
	}
}

func TestPlistEscaping(t *testing.T) {
	task := ScheduledTask{
		ID:              "esc",
		Label:           "com.lifeos.esc",
		Program:         "/bin/sh",
		Args:            []string{"-c", `echo "a<b&c"`},
		IntervalSeconds: 10,
	}
	parsed, ok := parsePlist(renderPlist(task))
	if !ok {
		t.Fatal("parse failed")
	}
	if parsed.Args[1] != task.Args[1] {
		t.Fatalf("arg round trip: %q", parsed.Args[1])
	}
}
