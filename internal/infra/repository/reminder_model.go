package repository

import (
	"time"

	"github.com/KasumiMercury/primind-overdue-reminder/internal/domain"
)

// TaskModel maps the columns of the shared tasks table this service touches.
// The table itself is owned by the host application.
type TaskModel struct {
	ID               string     `gorm:"column:id;type:uuid;primaryKey"`
	UserID           string     `gorm:"column:user_id;type:uuid;not null;index:idx_tasks_user_id"`
	Title            string     `gorm:"column:title;type:text;not null"`
	DueDate          *time.Time `gorm:"column:due_date;type:timestamptz;index:idx_tasks_status_due_date,priority:2"`
	Status           string     `gorm:"column:status;type:varchar(32);not null;default:'not_started';index:idx_tasks_status_due_date,priority:1"`
	ReminderCount    *int       `gorm:"column:reminder_count;type:integer;default:0"`
	LastReminderSent *time.Time `gorm:"column:last_reminder_sent;type:timestamptz"`
	CreatedAt        time.Time  `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (TaskModel) TableName() string {
	return "tasks"
}

type UserModel struct {
	ID            string    `gorm:"column:id;type:uuid;primaryKey"`
	Email         string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex:idx_users_email"`
	Name          string    `gorm:"column:name;type:varchar(255)"`
	AlertsEnabled bool      `gorm:"column:alerts_enabled;type:boolean;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt     time.Time `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (UserModel) TableName() string {
	return "users"
}

// CandidateRow is one row of the tasks-users join read by the selector.
type CandidateRow struct {
	TaskID           string     `gorm:"column:task_id"`
	UserID           string     `gorm:"column:user_id"`
	Title            string     `gorm:"column:title"`
	DueDate          *time.Time `gorm:"column:due_date"`
	Status           string     `gorm:"column:status"`
	ReminderCount    *int       `gorm:"column:reminder_count"`
	LastReminderSent *time.Time `gorm:"column:last_reminder_sent"`
	Email            string     `gorm:"column:email"`
	Name             string     `gorm:"column:name"`
	AlertsEnabled    bool       `gorm:"column:alerts_enabled"`
}

func (r *CandidateRow) ToEntity() (*domain.ReminderCandidate, error) {
	taskID, err := domain.TaskIDFromString(r.TaskID)
	if err != nil {
		return nil, err
	}

	userID, err := domain.UserIDFromString(r.UserID)
	if err != nil {
		return nil, err
	}

	recipient, err := domain.NewRecipient(userID, r.Email, r.Name, r.AlertsEnabled)
	if err != nil {
		return nil, err
	}

	count := 0
	if r.ReminderCount != nil {
		count = *r.ReminderCount
	}

	task := domain.ReconstituteTask(
		taskID,
		userID,
		r.Title,
		r.DueDate,
		domain.NewStatus(r.Status),
		count,
		r.LastReminderSent,
	)

	return domain.NewReminderCandidate(task, recipient), nil
}
