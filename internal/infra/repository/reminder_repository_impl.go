package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-overdue-reminder/internal/domain"
)

type reminderRepositoryImpl struct {
	db           *gorm.DB
	maxReminders int
}

func NewReminderRepository(db *gorm.DB, maxReminders int) domain.ReminderRepository {
	if maxReminders <= 0 {
		maxReminders = domain.DefaultMaxReminders
	}

	return &reminderRepositoryImpl{
		db:           db,
		maxReminders: maxReminders,
	}
}

func (r *reminderRepositoryImpl) FindOverdueCandidates(ctx context.Context, now time.Time) ([]*domain.ReminderCandidate, error) {
	slog.Debug("finding overdue reminder candidates",
		"now", now,
	)

	var rows []CandidateRow

	result := r.db.WithContext(ctx).
		Table("tasks").
		Select(`tasks.id AS task_id,
			tasks.user_id,
			tasks.title,
			tasks.due_date,
			tasks.status,
			tasks.reminder_count,
			tasks.last_reminder_sent,
			users.email,
			users.name,
			users.alerts_enabled`).
		Joins("JOIN users ON users.id = tasks.user_id").
		Where("tasks.status <> ?", string(domain.StatusDone)).
		Where("tasks.due_date IS NOT NULL AND tasks.due_date < ?", now).
		Where("users.alerts_enabled = ?", true).
		Order("tasks.due_date ASC, tasks.id ASC").
		Scan(&rows)

	if result.Error != nil {
		slog.Error("failed to find overdue reminder candidates",
			"event", "db.query.fail",
			"error", result.Error,
		)

		return nil, result.Error
	}

	candidates := make([]*domain.ReminderCandidate, 0, len(rows))
	for i := range rows {
		c, err := rows[i].ToEntity()
		if err != nil {
			// A malformed row only loses its own reminder.
			slog.Warn("skipping malformed task row",
				"task_id", rows[i].TaskID,
				"user_id", rows[i].UserID,
				"error", err,
			)

			continue
		}

		candidates = append(candidates, c)
	}

	slog.Debug("overdue reminder candidates found",
		"count", len(candidates),
		"skipped", len(rows)-len(candidates),
	)

	return candidates, nil
}

func (r *reminderRepositoryImpl) RecordReminderSent(ctx context.Context, taskID domain.TaskID, sentAt time.Time) error {
	slog.Debug("recording reminder sent",
		"task_id", taskID.String(),
		"sent_at", sentAt,
	)

	result := r.db.WithContext(ctx).
		Model(&TaskModel{}).
		Where("id = ? AND COALESCE(reminder_count, 0) < ?", taskID.String(), r.maxReminders).
		UpdateColumns(map[string]any{
			"reminder_count":     gorm.Expr("COALESCE(reminder_count, 0) + 1"),
			"last_reminder_sent": sentAt,
		})

	if result.Error != nil {
		slog.Error("failed to record reminder sent",
			"event", "db.query.fail",
			"task_id", taskID.String(),
			"error", result.Error,
		)

		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.explainNoUpdate(ctx, taskID)
	}

	slog.Debug("reminder recorded",
		"task_id", taskID.String(),
	)

	return nil
}

func (r *reminderRepositoryImpl) explainNoUpdate(ctx context.Context, taskID domain.TaskID) error {
	var m TaskModel

	result := r.db.WithContext(ctx).Select("id").Where("id = ?", taskID.String()).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			slog.Debug("task not found for reminder bookkeeping",
				"task_id", taskID.String(),
			)

			return domain.ErrTaskNotFound
		}

		return result.Error
	}

	slog.Debug("task already at reminder limit",
		"task_id", taskID.String(),
		"max_reminders", r.maxReminders,
	)

	return domain.ErrReminderLimitReached
}
