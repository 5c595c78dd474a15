package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/KasumiMercury/primind-overdue-reminder/internal/observability/tracing"
)

const TopicReminderOverdue = "reminder.overdue"

type ReminderEvent struct {
	TaskID        string    `json:"task_id"`
	TaskTitle     string    `json:"task_title"`
	To            string    `json:"to"`
	RecipientName string    `json:"recipient_name"`
	DaysOverdue   int       `json:"days_overdue"`
	DueDate       time.Time `json:"due_date"`
	Subject       string    `json:"subject"`
}

// EventNotifier hands reminders to a downstream mailer through a watermill
// publisher. Send succeeds once the broker accepts the message.
type EventNotifier struct {
	publisher message.Publisher
	topic     string
}

func NewEventNotifier(publisher message.Publisher, topic string) *EventNotifier {
	if topic == "" {
		topic = TopicReminderOverdue
	}

	return &EventNotifier{
		publisher: publisher,
		topic:     topic,
	}
}

func (n *EventNotifier) Send(ctx context.Context, msg ReminderMessage) error {
	payload, err := json.Marshal(ReminderEvent{
		TaskID:        msg.TaskID,
		TaskTitle:     msg.TaskTitle,
		To:            msg.To,
		RecipientName: msg.RecipientName,
		DaysOverdue:   msg.DaysOverdue,
		DueDate:       msg.DueDate,
		Subject:       subject(msg),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	wm := message.NewMessage(watermill.NewUUID(), payload)
	wm.SetContext(ctx)
	wm.Metadata.Set("event_type", TopicReminderOverdue)
	wm.Metadata.Set("task_id", msg.TaskID)
	wm.Metadata.Set("days_overdue", fmt.Sprintf("%d", msg.DaysOverdue))
	tracing.InjectToMap(ctx, wm.Metadata)

	if err := n.publisher.Publish(n.topic, wm); err != nil {
		slog.ErrorContext(ctx, "failed to publish reminder event",
			slog.String("task_id", msg.TaskID),
			slog.String("error", err.Error()),
		)

		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.DebugContext(ctx, "published reminder event",
		slog.String("task_id", msg.TaskID),
		slog.String("message_id", wm.UUID),
	)

	return nil
}

func (n *EventNotifier) Close() error {
	return n.publisher.Close()
}
