package email

import (
	"context"

	"github.com/mrlokans/bookshare/internal/logging"
)

// LogSender writes messages to the log instead of delivering them.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	logging.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Text).
		Msg("Email not delivered (log provider)")
	return nil
}
