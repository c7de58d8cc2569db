package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookshare/internal/email"
	"github.com/mrlokans/bookshare/internal/metrics"
)

// SendEmailTask delivers one email outside the request path.
type SendEmailTask struct {
	Message email.Message `json:"message"`
}

func (t SendEmailTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "send_email",
		MaxAttempts: 5,
		Backoff:     time.Minute,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   72 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func SendEmailProcessor(sender email.Sender) backlite.QueueProcessor[SendEmailTask] {
	return func(ctx context.Context, task SendEmailTask) error {
		if sender == nil {
			return fmt.Errorf("email sender not configured")
		}
		err := sender.Send(ctx, task.Message)
		metrics.RecordEmail(err)
		if err != nil {
			return fmt.Errorf("send email to %s: %w", task.Message.To, err)
		}
		return nil
	}
}

func NewSendEmailQueue(sender email.Sender) backlite.Queue {
	return backlite.NewQueue(SendEmailProcessor(sender))
}

// TaskAdder enqueues tasks. *Client implements it.
type TaskAdder interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// QueuedSender is an email.Sender that enqueues messages for a worker to
// deliver, so a slow provider never blocks a request.
type QueuedSender struct {
	tasks TaskAdder
}

func NewQueuedSender(tasks TaskAdder) *QueuedSender {
	return &QueuedSender{tasks: tasks}
}

func (s *QueuedSender) Send(ctx context.Context, msg email.Message) error {
	if _, err := s.tasks.Add(SendEmailTask{Message: msg}).Save(); err != nil {
		return fmt.Errorf("enqueue email: %w", err)
	}
	return nil
}
