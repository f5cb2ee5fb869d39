package note

import (
	"path"
	"strings"
)

// Typed records are derived views over a note's frontmatter and body.
// They are never stored directly: every mutation re-composes a File and
// writes it back through the backend.

// DayNote is the daily task file under daily/tasks/YYYY-MM-DD.md.
type DayNote struct {
	Date   string     `json:"date"`
	Energy string     `json:"energy,omitempty"`
	Mood   string     `json:"mood,omitempty"`
	Tasks  []TaskItem `json:"tasks"`
	Notes  string     `json:"notes"`

	// taskRegion keeps the original task-region text so that Compose can
	// rewrite checkbox lines in place without disturbing prose.
	taskRegion string
	hasNotes   bool
}

// ParseDayNote derives a DayNote view from a parsed file.
func ParseDayNote(f File) DayNote {
	taskRegion, notes := SplitDayNote(f.Content)
	return DayNote{
		Date:       f.Frontmatter["date"],
		Energy:     f.Frontmatter["energy"],
		Mood:       f.Frontmatter["mood"],
		Tasks:      ParseTasks(taskRegion),
		Notes:      notes,
		taskRegion: taskRegion,
		hasNotes:   strings.Contains(f.Content, "## "+NotesHeading),
	}
}

// Compose serializes the day note back into frontmatter and body. Task
// lines are substituted positionally into the original task region, so
// len(d.Tasks) must match the region's checkbox-line count.
func (d DayNote) Compose() (Frontmatter, string, error) {
	region := d.taskRegion
	if region == "" && len(d.Tasks) > 0 {
		// Fresh note: build the task section from scratch.
		region = RewriteTaskSection("", TaskHeading, d.Tasks)
	} else {
		var err error
		region, err = ReplaceTasks(region, d.Tasks)
		if err != nil {
			return nil, "", err
		}
	}

	body := region
	if d.hasNotes || d.Notes != "" {
		body = strings.TrimRight(region, "\n") + "\n\n## " + NotesHeading + "\n\n" + d.Notes
	}

	fm := Frontmatter{"date": d.Date}
	if d.Energy != "" {
		fm["energy"] = d.Energy
	}
	if d.Mood != "" {
		fm["mood"] = d.Mood
	}
	return fm, body, nil
}

// Project is a kanban card stored under projects/<column>/.
type Project struct {
	Title    string   `json:"title"`
	Status   string   `json:"status,omitempty"`
	Priority string   `json:"priority,omitempty"`
	Created  string   `json:"created,omitempty"`
	Due      string   `json:"due,omitempty"`
	Tags     []string `json:"tags"`
	Body     string   `json:"body"`
}

// ParseProject derives a Project view from a parsed file. A missing
// title falls back to the filename stem.
func ParseProject(f File) Project {
	title := f.Frontmatter["title"]
	if title == "" {
		title = strings.TrimSuffix(f.Filename, path.Ext(f.Filename))
	}
	return Project{
		Title:    title,
		Status:   f.Frontmatter["status"],
		Priority: f.Frontmatter["priority"],
		Created:  f.Frontmatter["created"],
		Due:      f.Frontmatter["due"],
		Tags:     splitTags(f.Frontmatter["tags"]),
		Body:     f.Content,
	}
}

// Compose serializes the project back into frontmatter and body.
func (p Project) Compose() (Frontmatter, string) {
	fm := Frontmatter{"title": p.Title}
	setIfPresent(fm, "status", p.Status)
	setIfPresent(fm, "priority", p.Priority)
	setIfPresent(fm, "created", p.Created)
	setIfPresent(fm, "due", p.Due)
	if len(p.Tags) > 0 {
		fm["tags"] = strings.Join(p.Tags, ", ")
	}
	return fm, p.Body
}

// DiaryEntry is a dated journal note under diary/<year>/.
type DiaryEntry struct {
	Date    string   `json:"date"`
	Mood    string   `json:"mood,omitempty"`
	Weather string   `json:"weather,omitempty"`
	Energy  string   `json:"energy,omitempty"`
	Tags    []string `json:"tags"`
	Body    string   `json:"body"`
}

// ParseDiaryEntry derives a DiaryEntry view from a parsed file.
func ParseDiaryEntry(f File) DiaryEntry {
	return DiaryEntry{
		Date:    f.Frontmatter["date"],
		Mood:    f.Frontmatter["mood"],
		Weather: f.Frontmatter["weather"],
		Energy:  f.Frontmatter["energy"],
		Tags:    splitTags(f.Frontmatter["tags"]),
		Body:    f.Content,
	}
}

// Compose serializes the diary entry back into frontmatter and body.
func (d DiaryEntry) Compose() (Frontmatter, string) {
	fm := Frontmatter{"date": d.Date}
	setIfPresent(fm, "mood", d.Mood)
	setIfPresent(fm, "weather", d.Weather)
	setIfPresent(fm, "energy", d.Energy)
	if len(d.Tags) > 0 {
		fm["tags"] = strings.Join(d.Tags, ", ")
	}
	return fm, d.Body
}

// Decision is a record under decisions/.
type Decision struct {
	Title  string `json:"title"`
	Date   string `json:"date,omitempty"`
	Status string `json:"status,omitempty"`
	Body   string `json:"body"`
}

// ParseDecision derives a Decision view from a parsed file.
func ParseDecision(f File) Decision {
	title := f.Frontmatter["title"]
	if title == "" {
		title = strings.TrimSuffix(f.Filename, path.Ext(f.Filename))
	}
	return Decision{
		Title:  title,
		Date:   f.Frontmatter["date"],
		Status: f.Frontmatter["status"],
		Body:   f.Content,
	}
}

// Compose serializes the decision back into frontmatter and body.
func (d Decision) Compose() (Frontmatter, string) {
	fm := Frontmatter{"title": d.Title}
	setIfPresent(fm, "date", d.Date)
	setIfPresent(fm, "status", d.Status)
	return fm, d.Body
}

// splitTags reads a flat comma-separated tag value. The codec has no
// list type, so tags are stored as "a, b, c".
func splitTags(v string) []string {
	v = strings.Trim(strings.TrimSpace(v), "[]")
	if v == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(v, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func setIfPresent(fm Frontmatter, key, val string) {
	if val != "" {
		fm[key] = val
	}
}
