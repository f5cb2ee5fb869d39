// Package mail implements IMAP mailbox sync, SMTP send, and the
// on-vault message cache used by the host mail operations.
package mail

// Account holds the connection settings for one mail account.
type Account struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	IMAPHost  string `json:"imap_host"`
	IMAPPort  int    `json:"imap_port"`
	SMTPHost  string `json:"smtp_host,omitempty"`
	SMTPPort  int    `json:"smtp_port,omitempty"`
	AccountID string `json:"account_id,omitempty"`
}

// Dir returns the per-account directory name under Mailbox/. Falls back
// to a filesystem-safe form of the address when no explicit ID is set.
func (a Account) Dir() string {
	if a.AccountID != "" {
		return a.AccountID
	}
	return safeDirName(a.Email)
}

// Message is one synced mail message.
type Message struct {
	ID       string   `json:"id"`
	UID      uint32   `json:"uid"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Subject  string   `json:"subject"`
	Date     string   `json:"date"`
	BodyText string   `json:"body_text,omitempty"`
	Flags    []string `json:"flags,omitempty"`
	Folder   string   `json:"folder"`
}

// Outgoing is a message to send through SMTP.
type Outgoing struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

func safeDirName(email string) string {
	out := make([]rune, 0, len(email))
	for _, r := range email {
		if r == '@' {
			out = append(out, []rune("_at_")...)
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
