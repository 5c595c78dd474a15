package domain

import (
	"sort"
	"time"
)

const (
	DefaultMaxReminders   = 3
	DefaultCooldown       = 24 * time.Hour
	DefaultMinDaysOverdue = 1
	DefaultMaxDaysOverdue = 3

	day = 24 * time.Hour
)

// Ineligibility explains why a candidate is skipped. The zero value means
// the candidate is eligible.
type Ineligibility string

const (
	Eligible               Ineligibility = ""
	ReasonDone             Ineligibility = "done"
	ReasonNoDueDate        Ineligibility = "no_due_date"
	ReasonNotOverdue       Ineligibility = "not_overdue"
	ReasonAlertsDisabled   Ineligibility = "alerts_disabled"
	ReasonMaxReminders     Ineligibility = "max_reminders_reached"
	ReasonCooldown         Ineligibility = "cooldown"
	ReasonOutsideWindow    Ineligibility = "outside_overdue_window"
	ReasonReminderInFuture Ineligibility = "last_reminder_in_future"
)

type ReminderPolicy struct {
	MaxReminders   int
	Cooldown       time.Duration
	MinDaysOverdue int
	MaxDaysOverdue int
}

func DefaultReminderPolicy() ReminderPolicy {
	return ReminderPolicy{
		MaxReminders:   DefaultMaxReminders,
		Cooldown:       DefaultCooldown,
		MinDaysOverdue: DefaultMinDaysOverdue,
		MaxDaysOverdue: DefaultMaxDaysOverdue,
	}
}

// DaysOverdue is ceil((now - due) / 24h), floored at 0. Any positive lateness
// up to and including 24h counts as one day.
func DaysOverdue(due, now time.Time) int {
	late := now.Sub(due)
	if late <= 0 {
		return 0
	}

	return int((late-1)/day) + 1
}

// Evaluate checks the conditions in order: status, due date, owner opt-in,
// attempt bound, cooldown, overdue window.
func (p ReminderPolicy) Evaluate(c *ReminderCandidate, now time.Time) Ineligibility {
	task := c.Task()

	if task.Status().IsDone() {
		return ReasonDone
	}

	due, ok := task.DueDate()
	if !ok {
		return ReasonNoDueDate
	}

	if !due.Before(now) {
		return ReasonNotOverdue
	}

	if !c.Recipient().AlertsEnabled() {
		return ReasonAlertsDisabled
	}

	if task.ReminderCount() >= p.MaxReminders {
		return ReasonMaxReminders
	}

	if last, ok := task.LastReminderSent(); ok {
		if last.After(now) {
			return ReasonReminderInFuture
		}

		if now.Sub(last) < p.Cooldown {
			return ReasonCooldown
		}
	}

	days := DaysOverdue(due, now)
	if days < p.MinDaysOverdue || days > p.MaxDaysOverdue {
		return ReasonOutsideWindow
	}

	return Eligible
}

// SelectEligible filters candidates and orders them oldest due date first.
// A task id appearing more than once is kept only once.
func (p ReminderPolicy) SelectEligible(candidates []*ReminderCandidate, now time.Time) []*ReminderCandidate {
	seen := make(map[TaskID]struct{}, len(candidates))
	eligible := make([]*ReminderCandidate, 0, len(candidates))

	for _, c := range candidates {
		if c == nil || c.Task() == nil {
			continue
		}

		if p.Evaluate(c, now) != Eligible {
			continue
		}

		if _, dup := seen[c.Task().ID()]; dup {
			continue
		}

		seen[c.Task().ID()] = struct{}{}
		eligible = append(eligible, c)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		di, _ := eligible[i].Task().DueDate()
		dj, _ := eligible[j].Task().DueDate()

		if !di.Equal(dj) {
			return di.Before(dj)
		}

		return eligible[i].Task().ID().String() < eligible[j].Task().ID().String()
	})

	return eligible
}
