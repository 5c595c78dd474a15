package notifier

import (
	"context"
	"log/slog"
)

// LogNotifier only logs reminders. Used when no delivery transport is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, msg ReminderMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.logger.InfoContext(ctx, "reminder delivered to log",
		slog.String("event", "reminder.log.deliver"),
		slog.String("to", msg.To),
		slog.String("task_id", msg.TaskID),
		slog.String("subject", subject(msg)),
		slog.Int("days_overdue", msg.DaysOverdue),
	)

	return nil
}

func (n *LogNotifier) Close() error {
	return nil
}
