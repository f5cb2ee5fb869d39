package mail

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"testing"
)

// scriptedConn plays back canned server responses and records what the
// client sends.
type scriptedConn struct {
	in  *bytes.Buffer
	out bytes.Buffer
}

func newScripted(response string) *scriptedConn {
	return &scriptedConn{in: bytes.NewBufferString(response)}
}

func (s *scriptedConn) Read(p []byte) (int, error) {
	if s.in.Len() == 0 {
		return 0, io.EOF
	}
	return s.in.Read(p)
}

func (s *scriptedConn) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func TestCmdCollectsUntaggedLines(t *testing.T) {
	sc := newScripted("* CAPABILITY IMAP4rev1\r\nA001 OK done\r\n")
	c := newIMAPConn(sc)

	lines, err := c.cmd("CAPABILITY")
	if err != nil {
		t.Fatalf("cmd: %v", err)
	}
	if len(lines) != 1 || lines[0] != "* CAPABILITY IMAP4rev1" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if got := sc.out.String(); got != "A001 CAPABILITY\r\n" {
		t.Fatalf("unexpected command sent: %q", got)
	}
}

func TestCmdServerErrorVerbatim(t *testing.T) {
	sc := newScripted("A001 NO [AUTHENTICATIONFAILED] Invalid credentials\r\n")
	c := newIMAPConn(sc)

	_, err := c.cmd("LOGIN %s %s", quoteIMAP("a@b.c"), quoteIMAP("pw"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "AUTHENTICATIONFAILED") {
		t.Fatalf("server text not preserved: %v", err)
	}
}

func TestReadLineExpandsLiteral(t *testing.T) {
	sc := newScripted("* 1 FETCH (UID 7 RFC822 {11}\r\nhello world)\r\nA001 OK done\r\n")
	c := newIMAPConn(sc)

	lines, err := c.cmd("UID FETCH 1:* (UID RFC822)")
	if err != nil {
		t.Fatalf("cmd: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "hello world)") {
		t.Fatalf("literal not inlined: %q", lines[0])
	}
}

func TestListFolders(t *testing.T) {
	sc := newScripted("* LIST (\\HasNoChildren) \"/\" \"INBOX\"\r\n" +
		"* LIST (\\HasNoChildren) \"/\" \"Sent Messages\"\r\n" +
		"A001 OK done\r\n")
	c := newIMAPConn(sc)

	folders, err := c.listFolders()
	if err != nil {
		t.Fatalf("listFolders: %v", err)
	}
	want := []string{"INBOX", "Sent Messages"}
	if len(folders) != len(want) {
		t.Fatalf("folders = %#v", folders)
	}
	for i := range want {
		if folders[i] != want[i] {
			t.Errorf("folder %d = %q, want %q", i, folders[i], want[i])
		}
	}
}

func TestSelectFolderUIDValidity(t *testing.T) {
	sc := newScripted("* 3 EXISTS\r\n* OK [UIDVALIDITY 1234567] UIDs valid\r\nA001 OK [READ-WRITE] SELECT completed\r\n")
	c := newIMAPConn(sc)

	v, err := c.selectFolder("INBOX")
	if err != nil {
		t.Fatalf("selectFolder: %v", err)
	}
	if v != 1234567 {
		t.Fatalf("uidvalidity = %d, want 1234567", v)
	}
}

func TestFetchSinceParsesMessages(t *testing.T) {
	raw := "From: alice@example.com\r\nTo: bob@example.com\r\nSubject: hi\r\nDate: Mon, 2 Jun 2025 10:00:00 +0000\r\n\r\nbody text here"
	resp := "* 1 FETCH (UID 42 RFC822 {" + itoa(len(raw)) + "}\r\n" + raw + ")\r\nA001 OK done\r\n"
	c := newIMAPConn(newScripted(resp))

	msgs, err := c.fetchSince(10, "INBOX")
	if err != nil {
		t.Fatalf("fetchSince: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	m := msgs[0]
	if m.UID != 42 || m.From != "alice@example.com" || m.Subject != "hi" {
		t.Fatalf("unexpected message: %+v", m)
	}
	if m.BodyText != "body text here" {
		t.Fatalf("body = %q", m.BodyText)
	}
	if m.ID != "INBOX-42" {
		t.Fatalf("id = %q", m.ID)
	}
}

func TestFetchSinceSkipsAlreadySynced(t *testing.T) {
	raw := "Subject: old\r\n\r\nseen before"
	resp := "* 1 FETCH (UID 10 RFC822 {" + itoa(len(raw)) + "}\r\n" + raw + ")\r\nA001 OK done\r\n"
	c := newIMAPConn(newScripted(resp))

	msgs, err := c.fetchSince(10, "INBOX")
	if err != nil {
		t.Fatalf("fetchSince: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no new messages, got %d", len(msgs))
	}
}

func TestQuoteIMAP(t *testing.T) {
	if got := quoteIMAP(`pass"word`); got != `"pass\"word"` {
		t.Fatalf("quoteIMAP = %q", got)
	}
}

func TestWindow(t *testing.T) {
	msgs := []Message{{UID: 1}, {UID: 2}, {UID: 3}, {UID: 4}}

	got := window(msgs, 2, 0)
	if len(got) != 2 || got[0].UID != 3 || got[1].UID != 4 {
		t.Fatalf("max window: %+v", got)
	}

	got = window(msgs, 2, 1)
	if len(got) != 2 || got[0].UID != 2 || got[1].UID != 3 {
		t.Fatalf("skip window: %+v", got)
	}

	if got = window(msgs, 0, 10); got != nil {
		t.Fatalf("overskip: %+v", got)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
