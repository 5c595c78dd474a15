package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=reminder_repository.go -destination=reminder_repository_mock.go -package=domain

type ReminderRepository interface {
	// FindOverdueCandidates lists non-done tasks due before now together with
	// the owner's alert preference and contact info.
	FindOverdueCandidates(ctx context.Context, now time.Time) ([]*ReminderCandidate, error)
	// RecordReminderSent increments reminder_count and sets last_reminder_sent
	// for a single task row.
	RecordReminderSent(ctx context.Context, taskID TaskID, sentAt time.Time) error
}
