package note

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Default section headings used by day notes.
const (
	TaskHeading  = "今日任务"
	NotesHeading = "今日笔记"
)

var (
	taskLineRe = regexp.MustCompile(`^- \[([ xX])\] (.+)$`)
	tagTokenRe = regexp.MustCompile(`#(\w+)`)
	timeMarkRe = regexp.MustCompile(`⏰(\d{1,2}:\d{2})`)
)

// ErrTaskCountMismatch is returned by ReplaceTasks when the number of
// checkbox lines in the existing body differs from the task list length.
var ErrTaskCountMismatch = errors.New("task count mismatch")

// TaskItem is one checkbox task extracted from a note body.
type TaskItem struct {
	Text string   `json:"text"`
	Done bool     `json:"done"`
	Tags []string `json:"tags"`
	Time string   `json:"time,omitempty"`
}

// ParseTaskLine parses a single line against the checkbox grammar.
// The second return value reports whether the line matched.
func ParseTaskLine(line string) (TaskItem, bool) {
	m := taskLineRe.FindStringSubmatch(line)
	if m == nil {
		return TaskItem{}, false
	}

	raw := m[2]
	var tags []string
	for _, tm := range tagTokenRe.FindAllStringSubmatch(raw, -1) {
		tags = append(tags, tm[1])
	}
	raw = tagTokenRe.ReplaceAllString(raw, "")

	var at string
	if tm := timeMarkRe.FindStringSubmatch(raw); tm != nil {
		at = tm[1]
		raw = timeMarkRe.ReplaceAllString(raw, "")
	}

	return TaskItem{
		Text: strings.Join(strings.Fields(raw), " "),
		Done: m[1] != " ",
		Tags: tags,
		Time: at,
	}, true
}

// ParseTasks extracts every checkbox task from body, in order.
func ParseTasks(body string) []TaskItem {
	var out []TaskItem
	for _, line := range strings.Split(body, "\n") {
		if t, ok := ParseTaskLine(line); ok {
			out = append(out, t)
		}
	}
	return out
}

// Render produces the canonical checkbox line for a task: display text,
// then tags, then the optional time marker.
func (t TaskItem) Render() string {
	mark := " "
	if t.Done {
		mark = "x"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "- [%s] %s", mark, t.Text)
	for _, tag := range t.Tags {
		b.WriteString(" #")
		b.WriteString(tag)
	}
	if t.Time != "" {
		b.WriteString(" ⏰")
		b.WriteString(t.Time)
	}
	return b.String()
}

// ReplaceTasks rewrites body by substituting the Nth checkbox line with
// the Nth task, positionally, leaving every other line untouched. The
// checkbox-line count must equal len(tasks); a divergence fails with
// ErrTaskCountMismatch rather than guessing which lines to keep.
func ReplaceTasks(body string, tasks []TaskItem) (string, error) {
	lines := strings.Split(body, "\n")

	count := 0
	for _, line := range lines {
		if taskLineRe.MatchString(line) {
			count++
		}
	}
	if count != len(tasks) {
		return "", fmt.Errorf("note: %w: body has %d checkbox lines, task list has %d",
			ErrTaskCountMismatch, count, len(tasks))
	}

	i := 0
	for idx, line := range lines {
		if taskLineRe.MatchString(line) {
			lines[idx] = tasks[i].Render()
			i++
		}
	}
	return strings.Join(lines, "\n"), nil
}

// RewriteTaskSection locates the `## heading` section in body and
// replaces its content with freshly rendered checkbox lines for all
// tasks, regardless of how many lines the section held before. A missing
// section is appended at the end of the body.
func RewriteTaskSection(body, heading string, tasks []TaskItem) string {
	headingLine := "## " + heading

	rendered := make([]string, 0, len(tasks)+2)
	rendered = append(rendered, headingLine, "")
	for _, t := range tasks {
		rendered = append(rendered, t.Render())
	}

	lines := strings.Split(body, "\n")
	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == headingLine {
			start = i
			break
		}
	}

	if start < 0 {
		out := strings.TrimRight(body, "\n")
		if out != "" {
			out += "\n\n"
		}
		return out + strings.Join(rendered, "\n") + "\n"
	}

	// Section ends at the next `## ` heading or EOF.
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "## ") {
			end = i
			break
		}
	}

	var out []string
	out = append(out, lines[:start]...)
	out = append(out, rendered...)
	if end < len(lines) {
		out = append(out, "")
		out = append(out, lines[end:]...)
	} else {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}

// SplitDayNote partitions a day-note body into the task region and the
// notes region using the first occurrence of each heading marker. With
// no notes marker the whole body is the task region and notes are empty.
func SplitDayNote(body string) (taskRegion, notesRegion string) {
	lines := strings.Split(body, "\n")
	notesAt := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "## "+NotesHeading {
			notesAt = i
			break
		}
	}
	if notesAt < 0 {
		return body, ""
	}
	taskRegion = strings.Join(lines[:notesAt], "\n")
	notesRegion = strings.TrimPrefix(strings.Join(lines[notesAt+1:], "\n"), "\n")
	return taskRegion, notesRegion
}
