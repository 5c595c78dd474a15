package app

import (
	"context"
)

type ReminderUseCase interface {
	// RunPass selects every eligible overdue task and dispatches one reminder
	// per task, sequentially and in due-date order.
	RunPass(ctx context.Context) (PassOutput, error)
	// ListEligible reports what RunPass would send right now without sending.
	ListEligible(ctx context.Context) (EligibleOutput, error)
}
