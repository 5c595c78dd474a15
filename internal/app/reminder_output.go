package app

import (
	"time"

	"github.com/KasumiMercury/primind-overdue-reminder/internal/domain"
)

type PassOutput struct {
	StartedAt         time.Time
	Duration          time.Duration
	Candidates        int
	Eligible          int
	Sent              int
	Failed            int
	BookkeepingFailed int
}

type EligibleReminderOutput struct {
	TaskID           string
	Title            string
	UserID           string
	Email            string
	DueDate          time.Time
	DaysOverdue      int
	ReminderCount    int
	LastReminderSent *time.Time
}

type EligibleOutput struct {
	EvaluatedAt time.Time
	Reminders   []EligibleReminderOutput
	Count       int32
}

func FromCandidate(c *domain.ReminderCandidate, now time.Time) EligibleReminderOutput {
	task := c.Task()
	due, _ := task.DueDate()

	out := EligibleReminderOutput{
		TaskID:        task.ID().String(),
		Title:         task.Title(),
		UserID:        task.UserID().String(),
		Email:         c.Recipient().Email(),
		DueDate:       due,
		DaysOverdue:   domain.DaysOverdue(due, now),
		ReminderCount: task.ReminderCount(),
	}

	if last, ok := task.LastReminderSent(); ok {
		out.LastReminderSent = &last
	}

	return out
}

func FromCandidates(cs []*domain.ReminderCandidate, now time.Time) EligibleOutput {
	outputs := make([]EligibleReminderOutput, 0, len(cs))
	for _, c := range cs {
		outputs = append(outputs, FromCandidate(c, now))
	}

	return EligibleOutput{
		EvaluatedAt: now,
		Reminders:   outputs,
		Count:       int32(len(outputs)), //nolint:gosec
	}
}
