package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/lifeos-dev/lifeos/internal/apperr"
)

const labelPrefix = "com.lifeos."

// Scheduler manages recurring tasks as launchd user agents. Each task
// is one plist under the agents directory, labeled com.lifeos.<id>.
type Scheduler struct {
	// Dir is the LaunchAgents directory.
	Dir string

	// launchctl runs the launchctl binary; replaced in tests.
	launchctl func(ctx context.Context, args ...string) error
}

// NewScheduler returns a scheduler over the current user's agents
// directory.
func NewScheduler() *Scheduler {
	home, _ := os.UserHomeDir()
	return &Scheduler{
		Dir: filepath.Join(home, "Library", "LaunchAgents"),
		launchctl: func(ctx context.Context, args ...string) error {
			_, err := RunShellCommand(ctx, "launchctl", args)
			return err
		},
	}
}

// Create writes the agent plist and loads it. An existing task with the
// same id is an error.
func (s *Scheduler) Create(ctx context.Context, task ScheduledTask) error {
	if task.ID == "" {
		return fmt.Errorf("host: scheduled task needs an id")
	}
	if task.Program == "" {
		return fmt.Errorf("host: scheduled task needs a program")
	}
	if task.IntervalSeconds <= 0 {
		return fmt.Errorf("host: scheduled task needs a positive interval")
	}

	path := s.plistPath(task.ID)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("host: task %s: %w", task.ID, apperr.ErrAlreadyExists)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("host: create agents dir: %w", err)
	}

	task.Label = labelPrefix + task.ID
	if err := os.WriteFile(path, []byte(renderPlist(task)), 0o644); err != nil {
		return fmt.Errorf("host: write agent plist: %w", err)
	}
	if err := s.launchctl(ctx, "load", "-w", path); err != nil {
		return fmt.Errorf("host: load agent: %w", err)
	}
	return nil
}

// List returns every task this scheduler manages, sorted by id.
func (s *Scheduler) List(ctx context.Context) ([]ScheduledTask, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, labelPrefix+"*.plist"))
	if err != nil {
		return nil, fmt.Errorf("host: glob agents: %w", err)
	}

	tasks := []ScheduledTask{}
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		task, ok := parsePlist(string(data))
		if !ok {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Delete unloads the agent and removes its plist.
func (s *Scheduler) Delete(ctx context.Context, id string) error {
	path := s.plistPath(id)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("host: task %s: %w", id, apperr.ErrNotFound)
	}
	// Unload failures are tolerated; the agent may not be loaded.
	_ = s.launchctl(ctx, "unload", path)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("host: remove agent plist: %w", err)
	}
	return nil
}

func (s *Scheduler) plistPath(id string) string {
	return filepath.Join(s.Dir, labelPrefix+id+".plist")
}

// renderPlist emits the launchd agent definition for one task.
func renderPlist(task ScheduledTask) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	b.WriteString("<plist version=\"1.0\">\n<dict>\n")
	fmt.Fprintf(&b, "\t<key>Label</key>\n\t<string>%s</string>\n", xmlEscape(task.Label))
	b.WriteString("\t<key>ProgramArguments</key>\n\t<array>\n")
	fmt.Fprintf(&b, "\t\t<string>%s</string>\n", xmlEscape(task.Program))
	for _, arg := range task.Args {
		fmt.Fprintf(&b, "\t\t<string>%s</string>\n", xmlEscape(arg))
	}
	b.WriteString("\t</array>\n")
	fmt.Fprintf(&b, "\t<key>StartInterval</key>\n\t<integer>%d</integer>\n", task.IntervalSeconds)
	b.WriteString("\t<key>RunAtLoad</key>\n\t<false/>\n")
	b.WriteString("</dict>\n</plist>\n")
	return b.String()
}

var (
	plistLabelRe    = regexp.MustCompile(`<key>Label</key>\s*<string>([^<]*)</string>`)
	plistIntervalRe = regexp.MustCompile(`<key>StartInterval</key>\s*<integer>(\d+)</integer>`)
	plistArrayRe    = regexp.MustCompile(`(?s)<key>ProgramArguments</key>\s*<array>(.*?)</array>`)
	plistStringRe   = regexp.MustCompile(`<string>([^<]*)</string>`)
)

// parsePlist reads back the fields renderPlist writes. Foreign plists
// missing the expected keys are rejected.
func parsePlist(data string) (ScheduledTask, bool) {
	label := plistLabelRe.FindStringSubmatch(data)
	if label == nil || !strings.HasPrefix(label[1], labelPrefix) {
		return ScheduledTask{}, false
	}
	task := ScheduledTask{
		Label:   label[1],
		ID:      strings.TrimPrefix(label[1], labelPrefix),
		Enabled: true,
	}
	if m := plistIntervalRe.FindStringSubmatch(data); m != nil {
		task.IntervalSeconds, _ = strconv.Atoi(m[1])
	}
	if m := plistArrayRe.FindStringSubmatch(data); m != nil {
		for i, sm := range plistStringRe.FindAllStringSubmatch(m[1], -1) {
			val := xmlUnescape(sm[1])
			if i == 0 {
				task.Program = val
			} else {
				task.Args = append(task.Args, val)
			}
		}
	}
	if task.Program == "" {
		return ScheduledTask{}, false
	}
	return task, true
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func xmlUnescape(s string) string {
	r := strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")
	return r.Replace(s)
}
