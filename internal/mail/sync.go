package mail

import (
	"context"
	"fmt"
)

// Sync connects to the account's IMAP server, fetches every message
// newer than the last synced UID for the folder, caches the new
// messages into the vault, and advances the persisted sync state. A
// UIDVALIDITY change resets the folder and refetches from scratch.
//
// max caps how many of the fetched messages are returned and cached
// (newest first); skip drops that many from the newest end first.
// Zero max means no cap.
func Sync(ctx context.Context, acct Account, vaultRoot, folder string, max, skip int) ([]Message, error) {
	conn, err := dialIMAP(ctx, acct)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.login(acct.Email, acct.Password); err != nil {
		return nil, err
	}

	validity, err := conn.selectFolder(folder)
	if err != nil {
		return nil, err
	}

	state := LoadSyncState(vaultRoot, acct.Dir())
	fs := state[folder]
	if fs.UIDValidity != 0 && fs.UIDValidity != validity {
		// Server reassigned UIDs; cached positions are meaningless.
		fs = FolderState{}
	}

	msgs, err := conn.fetchSince(fs.LastUID, folder)
	if err != nil {
		return nil, err
	}

	highest := fs.LastUID
	for _, m := range msgs {
		if m.UID > highest {
			highest = m.UID
		}
	}

	msgs = window(msgs, max, skip)
	for _, m := range msgs {
		if err := cacheMessage(vaultRoot, acct.Dir(), m); err != nil {
			return nil, err
		}
	}

	state[folder] = FolderState{
		UIDValidity: validity,
		LastUID:     highest,
		LastSync:    nowStamp(),
	}
	if err := SaveSyncState(vaultRoot, acct.Dir(), state); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Folders lists the mailbox names on the account's IMAP server.
func Folders(ctx context.Context, acct Account) ([]string, error) {
	conn, err := dialIMAP(ctx, acct)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.login(acct.Email, acct.Password); err != nil {
		return nil, err
	}
	folders, err := conn.listFolders()
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return nil, fmt.Errorf("mail: server returned no folders")
	}
	return folders, nil
}

// window applies skip-then-max from the newest end of an ascending-UID
// slice.
func window(msgs []Message, max, skip int) []Message {
	if skip > 0 {
		if skip >= len(msgs) {
			return nil
		}
		msgs = msgs[:len(msgs)-skip]
	}
	if max > 0 && len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}
	return msgs
}
