package mail

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lifeos-dev/lifeos/internal/note"
)

const mailboxDir = "Mailbox"

// FolderState tracks incremental sync progress for one IMAP folder.
type FolderState struct {
	UIDValidity uint32 `json:"uidValidity"`
	LastUID     uint32 `json:"lastUid"`
	LastSync    string `json:"lastSync"`
}

// SyncState maps folder name → sync progress, persisted per account as
// Mailbox/<account>/sync_state.json between sessions.
type SyncState map[string]FolderState

// LoadSyncState reads the persisted state; a missing or unreadable file
// yields an empty state, matching a first-time sync.
func LoadSyncState(vaultRoot, accountDir string) SyncState {
	data, err := os.ReadFile(syncStatePath(vaultRoot, accountDir))
	if err != nil {
		return SyncState{}
	}
	var st SyncState
	if err := json.Unmarshal(data, &st); err != nil {
		return SyncState{}
	}
	return st
}

// SaveSyncState persists the state, creating the account directory.
func SaveSyncState(vaultRoot, accountDir string, st SyncState) error {
	dir := filepath.Join(vaultRoot, mailboxDir, accountDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mail: create account dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("mail: marshal sync state: %w", err)
	}
	if err := os.WriteFile(syncStatePath(vaultRoot, accountDir), data, 0o600); err != nil {
		return fmt.Errorf("mail: write sync state: %w", err)
	}
	return nil
}

func syncStatePath(vaultRoot, accountDir string) string {
	return filepath.Join(vaultRoot, mailboxDir, accountDir, "sync_state.json")
}

// cacheMessage writes one message into the vault as a Markdown note with
// the headers in frontmatter, so cached mail is browsable like any note.
func cacheMessage(vaultRoot, accountDir string, msg Message) error {
	dir := filepath.Join(vaultRoot, mailboxDir, accountDir, safeFolderName(msg.Folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mail: create folder dir: %w", err)
	}
	fm := note.Frontmatter{
		"uid":     strconv.FormatUint(uint64(msg.UID), 10),
		"from":    msg.From,
		"to":      msg.To,
		"subject": msg.Subject,
		"date":    msg.Date,
	}
	path := filepath.Join(dir, fmt.Sprintf("%d.md", msg.UID))
	if err := os.WriteFile(path, []byte(note.Compose(fm, msg.BodyText)), 0o600); err != nil {
		return fmt.Errorf("mail: cache message: %w", err)
	}
	return nil
}

// Cached returns the locally cached messages for one account folder,
// newest UID first. A missing cache directory yields an empty slice.
func Cached(vaultRoot, accountDir, folder string) ([]Message, error) {
	dir := filepath.Join(vaultRoot, mailboxDir, accountDir, safeFolderName(folder))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("mail: read cache dir: %w", err)
	}

	var out []Message
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		fm, body := note.Parse(string(data))
		uid64, _ := strconv.ParseUint(fm["uid"], 10, 32)
		out = append(out, Message{
			ID:       fmt.Sprintf("%s-%d", folder, uid64),
			UID:      uint32(uid64),
			From:     fm["from"],
			To:       fm["to"],
			Subject:  fm["subject"],
			Date:     fm["date"],
			BodyText: body,
			Folder:   folder,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID > out[j].UID })
	return out, nil
}

func safeFolderName(folder string) string {
	return strings.ReplaceAll(folder, "/", "_")
}

func nowStamp() string {
	return time.Now().Format("2006-01-02T15:04:05")
}
