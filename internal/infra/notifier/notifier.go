package notifier

import (
	"context"
	"fmt"
	"io"
	"time"
)

//go:generate mockgen -source=notifier.go -destination=notifier_mock.go -package=notifier

type ReminderMessage struct {
	To            string
	RecipientName string
	TaskID        string
	TaskTitle     string
	DaysOverdue   int
	DueDate       time.Time
}

// Notifier delivers one reminder. A nil error means the message was accepted
// by the transport.
type Notifier interface {
	Send(ctx context.Context, msg ReminderMessage) error
	io.Closer
}

func subject(msg ReminderMessage) string {
	return fmt.Sprintf("Reminder: %q is %s overdue", msg.TaskTitle, dayCount(msg.DaysOverdue))
}

func dayCount(days int) string {
	if days == 1 {
		return "1 day"
	}

	return fmt.Sprintf("%d days", days)
}
