// Package email sends transactional email such as account confirmation links.
package email

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
)

// Message is a single outgoing email.
type Message struct {
	To      string `json:"to"`
	ToName  string `json:"to_name"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ConfirmationLink builds the link a user follows to confirm their address.
func ConfirmationLink(publicURL, address, token string) string {
	params := url.Values{}
	params.Set("email", address)
	params.Set("token", token)
	return strings.TrimSuffix(publicURL, "/") + "/api/users/confirm/email?" + params.Encode()
}

// ConfirmationMessage builds the email sent after registration.
func ConfirmationMessage(name, address, link string) Message {
	text := fmt.Sprintf("Hi %s,\n\nPlease confirm your email address by opening the link below:\n\n%s\n\nIf you did not create an account, ignore this email.\n", name, link)
	body := fmt.Sprintf(`<p>Hi %s,</p><p>Please confirm your email address by clicking <a href="%s">this link</a>.</p><p>If you did not create an account, ignore this email.</p>`,
		html.EscapeString(name), html.EscapeString(link))

	return Message{
		To:      address,
		ToName:  name,
		Subject: "Confirm your email address",
		Text:    text,
		HTML:    body,
	}
}
