package handler

import (
	"time"

	"github.com/KasumiMercury/primind-overdue-reminder/internal/app"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/scheduler"
)

type TriggerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type EligibleReminderResponse struct {
	TaskID           string     `json:"task_id"`
	Title            string     `json:"title"`
	UserID           string     `json:"user_id"`
	Email            string     `json:"email"`
	DueDate          time.Time  `json:"due_date"`
	DaysOverdue      int        `json:"days_overdue"`
	ReminderCount    int        `json:"reminder_count"`
	LastReminderSent *time.Time `json:"last_reminder_sent,omitempty"`
}

type EligibleRemindersResponse struct {
	EvaluatedAt time.Time                  `json:"evaluated_at"`
	Reminders   []EligibleReminderResponse `json:"reminders"`
	Count       int32                      `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func FromTriggerResult(r scheduler.TriggerResult) TriggerResponse {
	return TriggerResponse{
		Success: r.Success,
		Message: r.Message,
	}
}

// FromEligibleOutput converts the dry-run output; a positive limit truncates
// the list while Count keeps the full total.
func FromEligibleOutput(output app.EligibleOutput, limit int) EligibleRemindersResponse {
	items := output.Reminders
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	reminders := make([]EligibleReminderResponse, 0, len(items))
	for _, r := range items {
		reminders = append(reminders, EligibleReminderResponse{
			TaskID:           r.TaskID,
			Title:            r.Title,
			UserID:           r.UserID,
			Email:            r.Email,
			DueDate:          r.DueDate,
			DaysOverdue:      r.DaysOverdue,
			ReminderCount:    r.ReminderCount,
			LastReminderSent: r.LastReminderSent,
		})
	}

	return EligibleRemindersResponse{
		EvaluatedAt: output.EvaluatedAt,
		Reminders:   reminders,
		Count:       output.Count,
	}
}
