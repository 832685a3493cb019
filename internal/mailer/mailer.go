// Package mailer delivers out-of-band messages such as confirmation codes.
package mailer

import (
	"context"
	"fmt"
	"strings"
)

// Message is a plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers a message or returns an error. Implementations must honour ctx cancellation.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ConfirmationMessage builds the signup email carrying the plaintext code.
func ConfirmationMessage(from, to, username, code string) Message {
	return Message{
		From:    from,
		To:      to,
		Subject: "yamdb confirmation code",
		Body: fmt.Sprintf("Hello %s,\n\nyour confirmation code is: %s\n\n"+
			"Exchange it at /api/v1/auth/token to obtain an access token.\n", username, code),
	}
}

// Render produces the RFC 5322 wire form of msg.
func (m Message) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))

	return b.String()
}
