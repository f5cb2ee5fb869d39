package host

import (
	"context"
	"fmt"
	"strings"
)

// Field and record separators used by the AppleScript bridge. ASCII
// control characters cannot appear in note text, so splitting is safe.
const (
	notesFieldSep  = "\x1f"
	notesRecordSep = "\x1e"
)

// NotesBridge talks to the macOS Notes application through osascript.
type NotesBridge struct {
	// runScript executes an AppleScript and returns its output;
	// replaced in tests.
	runScript func(ctx context.Context, script string) (string, error)
}

// NewNotesBridge returns a bridge backed by the osascript binary.
func NewNotesBridge() *NotesBridge {
	return &NotesBridge{
		runScript: func(ctx context.Context, script string) (string, error) {
			return RunShellCommand(ctx, "osascript", []string{"-e", script})
		},
	}
}

// List returns notes matching query (substring on the note name; empty
// matches all), windowed by offset and limit.
func (b *NotesBridge) List(ctx context.Context, query string, offset, limit int) (SystemNotesPage, error) {
	if limit <= 0 {
		limit = 50
	}
	out, err := b.runScript(ctx, listNotesScript)
	if err != nil {
		return SystemNotesPage{}, fmt.Errorf("host: list system notes: %w", err)
	}

	all := parseNoteRecords(out)
	if query != "" {
		q := strings.ToLower(query)
		filtered := all[:0]
		for _, n := range all {
			if strings.Contains(strings.ToLower(n.Name), q) {
				filtered = append(filtered, n)
			}
		}
		all = filtered
	}

	page := SystemNotesPage{Total: len(all), Notes: []SystemNote{}}
	if offset < len(all) {
		end := offset + limit
		if end > len(all) {
			end = len(all)
		}
		page.Notes = all[offset:end]
		page.HasMore = end < len(all)
	}
	return page, nil
}

// Create makes a new note and returns its id.
func (b *NotesBridge) Create(ctx context.Context, folder, title, body string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("host: system note needs a title")
	}
	script := createNoteScript(folder, title, body)
	out, err := b.runScript(ctx, script)
	if err != nil {
		return "", fmt.Errorf("host: create system note: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Update replaces the body of an existing note.
func (b *NotesBridge) Update(ctx context.Context, id, body string) error {
	if id == "" {
		return fmt.Errorf("host: system note id required")
	}
	script := updateNoteScript(id, body)
	if _, err := b.runScript(ctx, script); err != nil {
		return fmt.Errorf("host: update system note: %w", err)
	}
	return nil
}

// listNotesScript emits one record per note: id, name, folder, created,
// modified, and body, joined by the control separators.
const listNotesScript = `tell application "Notes"
	set fieldSep to character id 31
	set recSep to character id 30
	set output to ""
	repeat with n in notes
		set noteFolder to ""
		try
			set noteFolder to name of container of n
		end try
		set rec to (id of n as string) & fieldSep & (name of n as string) & fieldSep & noteFolder & fieldSep & ((creation date of n) as string) & fieldSep & ((modification date of n) as string) & fieldSep & (plaintext of n as string)
		set output to output & rec & recSep
	end repeat
	return output
end tell`

func createNoteScript(folder, title, body string) string {
	target := "default account"
	if folder != "" {
		target = fmt.Sprintf(`folder %s`, appleScriptString(folder))
	}
	return fmt.Sprintf(`tell application "Notes"
	set n to make new note at %s with properties {name:%s, body:%s}
	return id of n as string
end tell`, target, appleScriptString(title), appleScriptString(body))
}

func updateNoteScript(id, body string) string {
	return fmt.Sprintf(`tell application "Notes"
	set body of note id %s to %s
end tell`, appleScriptString(id), appleScriptString(body))
}

// parseNoteRecords splits the bridge output back into notes. Records
// with the wrong field count are dropped.
func parseNoteRecords(out string) []SystemNote {
	notes := []SystemNote{}
	for _, rec := range strings.Split(out, notesRecordSep) {
		rec = strings.TrimSpace(rec)
		if rec == "" {
			continue
		}
		fields := strings.Split(rec, notesFieldSep)
		if len(fields) != 6 {
			continue
		}
		notes = append(notes, SystemNote{
			ID:       fields[0],
			Name:     fields[1],
			Folder:   fields[2],
			Created:  fields[3],
			Modified: fields[4],
			Content:  fields[5],
		})
	}
	return notes
}

// appleScriptString quotes s as an AppleScript string literal.
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
