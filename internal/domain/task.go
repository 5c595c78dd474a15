package domain

import (
	"time"
)

// Task is the scheduler's view of a task row. Only reminderCount and
// lastReminderSent are owned by this service; the rest is read-only.
type Task struct {
	id               TaskID
	userID           UserID
	title            string
	dueDate          *time.Time
	status           Status
	reminderCount    int
	lastReminderSent *time.Time
}

func ReconstituteTask(
	id TaskID,
	userID UserID,
	title string,
	dueDate *time.Time,
	status Status,
	reminderCount int,
	lastReminderSent *time.Time,
) *Task {
	if reminderCount < 0 {
		reminderCount = 0
	}

	return &Task{
		id:               id,
		userID:           userID,
		title:            title,
		dueDate:          dueDate,
		status:           status,
		reminderCount:    reminderCount,
		lastReminderSent: lastReminderSent,
	}
}

// RecordReminder applies a successful dispatch to the in-memory task.
func (t *Task) RecordReminder(sentAt time.Time, maxReminders int) error {
	if t.reminderCount >= maxReminders {
		return ErrReminderLimitReached
	}

	t.reminderCount++
	t.lastReminderSent = &sentAt

	return nil
}

func (t *Task) ID() TaskID {
	return t.id
}

func (t *Task) UserID() UserID {
	return t.userID
}

func (t *Task) Title() string {
	return t.title
}

func (t *Task) DueDate() (time.Time, bool) {
	if t.dueDate == nil {
		return time.Time{}, false
	}

	return *t.dueDate, true
}

func (t *Task) Status() Status {
	return t.status
}

func (t *Task) ReminderCount() int {
	return t.reminderCount
}

func (t *Task) LastReminderSent() (time.Time, bool) {
	if t.lastReminderSent == nil {
		return time.Time{}, false
	}

	return *t.lastReminderSent, true
}
