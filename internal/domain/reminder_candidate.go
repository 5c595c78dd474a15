package domain

// ReminderCandidate pairs an overdue task with its owner's contact and
// alert preference as returned by the store.
type ReminderCandidate struct {
	task      *Task
	recipient Recipient
}

func NewReminderCandidate(task *Task, recipient Recipient) *ReminderCandidate {
	return &ReminderCandidate{
		task:      task,
		recipient: recipient,
	}
}

func (c *ReminderCandidate) Task() *Task {
	return c.task
}

func (c *ReminderCandidate) Recipient() Recipient {
	return c.recipient
}
