package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// Send delivers an outgoing message through the account's SMTP server.
// Port 465 uses implicit TLS; other ports use STARTTLS via the standard
// client.
func Send(ctx context.Context, acct Account, out Outgoing) error {
	if acct.SMTPHost == "" {
		return fmt.Errorf("mail: account %s has no SMTP host configured", acct.Email)
	}
	if len(out.To) == 0 {
		return fmt.Errorf("mail: no recipients")
	}

	addr := net.JoinHostPort(acct.SMTPHost, strconv.Itoa(acct.SMTPPort))
	auth := smtp.PlainAuth("", acct.Email, acct.Password, acct.SMTPHost)
	payload := buildRFC822(acct.Email, out)

	if acct.SMTPPort == 465 {
		return sendImplicitTLS(addr, acct, auth, out.To, payload)
	}
	if err := smtp.SendMail(addr, auth, acct.Email, out.To, payload); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

// sendImplicitTLS speaks SMTP over an already-established TLS session.
func sendImplicitTLS(addr string, acct Account, auth smtp.Auth, to []string, payload []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: acct.SMTPHost})
	if err != nil {
		return fmt.Errorf("mail: dial smtp: %w", err)
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, acct.SMTPHost)
	if err != nil {
		return fmt.Errorf("mail: smtp client: %w", err)
	}
	defer c.Close()

	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("mail: auth: %w", err)
	}
	if err := c.Mail(acct.Email); err != nil {
		return fmt.Errorf("mail: mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("mail: rcpt %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("mail: data: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("mail: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mail: close data: %w", err)
	}
	return c.Quit()
}

// buildRFC822 assembles the minimal wire form of an outgoing message.
func buildRFC822(from string, out Outgoing) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(out.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", out.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(out.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
