package mail

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// imapConn is a minimal IMAP4rev1 client: tagged commands, untagged
// response collection, and literal handling, enough for LOGIN, LIST,
// SELECT, and UID FETCH. Server errors are surfaced verbatim.
type imapConn struct {
	rw  io.ReadWriter
	br  *bufio.Reader
	seq int

	close func() error
}

const dialTimeout = 15 * time.Second

// dialIMAP connects to the account's IMAP server. Port 993 uses
// implicit TLS, anything else is plaintext.
func dialIMAP(ctx context.Context, acct Account) (*imapConn, error) {
	addr := net.JoinHostPort(acct.IMAPHost, strconv.Itoa(acct.IMAPPort))
	d := net.Dialer{Timeout: dialTimeout}

	var conn net.Conn
	var err error
	if acct.IMAPPort == 993 {
		conn, err = tls.DialWithDialer(&d, "tcp", addr, &tls.Config{ServerName: acct.IMAPHost})
	} else {
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("mail: dial %s: %w", addr, err)
	}

	c := newIMAPConn(conn)
	c.close = conn.Close

	// Consume the server greeting.
	if _, err := c.br.ReadString('\n'); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mail: read greeting: %w", err)
	}
	return c, nil
}

func newIMAPConn(rw io.ReadWriter) *imapConn {
	return &imapConn{rw: rw, br: bufio.NewReader(rw)}
}

func (c *imapConn) Close() error {
	if c.close != nil {
		return c.close()
	}
	return nil
}

// cmd sends one tagged command and collects untagged response lines
// until the tagged completion arrives. Literals ({n}\r\n followed by n
// raw bytes) are inlined into the line that announced them.
func (c *imapConn) cmd(format string, args ...any) ([]string, error) {
	c.seq++
	tag := fmt.Sprintf("A%03d", c.seq)
	if _, err := fmt.Fprintf(c.rw, "%s %s\r\n", tag, fmt.Sprintf(format, args...)); err != nil {
		return nil, fmt.Errorf("mail: send command: %w", err)
	}

	var lines []string
	for {
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(line, tag+" ") {
			status := strings.TrimPrefix(line, tag+" ")
			if !strings.HasPrefix(status, "OK") {
				return nil, fmt.Errorf("mail: server: %s", status)
			}
			return lines, nil
		}
		lines = append(lines, line)
	}
}

var literalRe = regexp.MustCompile(`\{(\d+)\}$`)

// readLine reads one CRLF-terminated line and expands any trailing
// literal announcement by appending the raw literal bytes plus the
// remainder of the enclosing line.
func (c *imapConn) readLine() (string, error) {
	raw, err := c.br.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("mail: read response: %w", err)
	}
	line := strings.TrimRight(raw, "\r\n")

	for {
		m := literalRe.FindStringSubmatch(line)
		if m == nil {
			return line, nil
		}
		n, _ := strconv.Atoi(m[1])
		buf := make([]byte, n)
		if _, err := io.ReadFull(c.br, buf); err != nil {
			return "", fmt.Errorf("mail: read literal: %w", err)
		}
		rest, err := c.br.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("mail: read literal tail: %w", err)
		}
		line = line[:len(line)-len(m[0])] + string(buf) + strings.TrimRight(rest, "\r\n")
	}
}

func (c *imapConn) login(email, password string) error {
	_, err := c.cmd("LOGIN %s %s", quoteIMAP(email), quoteIMAP(password))
	return err
}

var listLineRe = regexp.MustCompile(`^\* LIST \([^)]*\) (?:"[^"]*"|NIL) (.+)$`)

// listFolders returns the mailbox names advertised by LIST "" "*".
func (c *imapConn) listFolders() ([]string, error) {
	lines, err := c.cmd(`LIST "" "*"`)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, line := range lines {
		m := listLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, strings.Trim(m[1], `"`))
	}
	return out, nil
}

var uidValidityRe = regexp.MustCompile(`\[UIDVALIDITY (\d+)\]`)

// selectFolder opens a mailbox and returns its UIDVALIDITY.
func (c *imapConn) selectFolder(folder string) (uint32, error) {
	lines, err := c.cmd("SELECT %s", quoteIMAP(folder))
	if err != nil {
		return 0, err
	}
	for _, line := range lines {
		if m := uidValidityRe.FindStringSubmatch(line); m != nil {
			v, _ := strconv.ParseUint(m[1], 10, 32)
			return uint32(v), nil
		}
	}
	return 0, nil
}

var fetchUIDRe = regexp.MustCompile(`UID (\d+)`)

// fetchSince retrieves every message with UID strictly greater than
// lastUID, parsing each full RFC 822 payload.
func (c *imapConn) fetchSince(lastUID uint32, folder string) ([]Message, error) {
	lines, err := c.cmd("UID FETCH %d:* (UID RFC822)", lastUID+1)
	if err != nil {
		return nil, err
	}

	var out []Message
	for _, line := range lines {
		if !strings.Contains(line, "FETCH") {
			continue
		}
		m := fetchUIDRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		uid64, _ := strconv.ParseUint(m[1], 10, 32)
		uid := uint32(uid64)
		if uid <= lastUID {
			// n:* always matches at least the last message; skip it.
			continue
		}

		msg := parseRFC822(line, folder)
		msg.UID = uid
		msg.ID = fmt.Sprintf("%s-%d", folder, uid)
		out = append(out, msg)
	}
	return out, nil
}

// parseRFC822 extracts headers and a text body from the raw message
// embedded in a FETCH response line.
func parseRFC822(line, folder string) Message {
	msg := Message{Folder: folder}

	// The literal starts after "RFC822 " and runs to the closing paren
	// appended by readLine.
	idx := strings.Index(line, "RFC822 ")
	if idx < 0 {
		return msg
	}
	raw := strings.TrimSuffix(line[idx+len("RFC822 "):], ")")

	tp := textproto.NewReader(bufio.NewReader(strings.NewReader(raw)))
	hdr, err := tp.ReadMIMEHeader()
	if err != nil && len(hdr) == 0 {
		return msg
	}
	msg.From = hdr.Get("From")
	msg.To = hdr.Get("To")
	msg.Subject = hdr.Get("Subject")
	msg.Date = hdr.Get("Date")

	body, _ := io.ReadAll(tp.R)
	msg.BodyText = strings.TrimSpace(string(body))
	return msg
}

// quoteIMAP wraps s in a quoted string, escaping embedded quotes.
func quoteIMAP(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
