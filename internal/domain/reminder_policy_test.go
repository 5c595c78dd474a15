package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-overdue-reminder/internal/domain"
)

var policyNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type candidateSpec struct {
	status        domain.Status
	due           *time.Time
	alertsEnabled bool
	reminderCount int
	lastSent      *time.Time
}

func ptr(t time.Time) *time.Time {
	return &t
}

func ago(d time.Duration) *time.Time {
	return ptr(policyNow.Add(-d))
}

func eligibleSpec() candidateSpec {
	return candidateSpec{
		status:        domain.StatusNotStarted,
		due:           ago(48 * time.Hour),
		alertsEnabled: true,
	}
}

func buildCandidate(t *testing.T, s candidateSpec) *domain.ReminderCandidate {
	t.Helper()

	taskID, err := domain.TaskIDFromUUID(uuid.Must(uuid.NewV7()))
	require.NoError(t, err)

	userID, err := domain.UserIDFromUUID(uuid.Must(uuid.NewV7()))
	require.NoError(t, err)

	recipient, err := domain.NewRecipient(userID, "owner@example.com", "Owner", s.alertsEnabled)
	require.NoError(t, err)

	task := domain.ReconstituteTask(taskID, userID, "Write report", s.due, s.status, s.reminderCount, s.lastSent)

	return domain.NewReminderCandidate(task, recipient)
}

func TestDaysOverdueSuccess(t *testing.T) {
	tests := []struct {
		name     string
		late     time.Duration
		expected int
	}{
		{name: "due in the future", late: -time.Hour, expected: 0},
		{name: "due exactly now", late: 0, expected: 0},
		{name: "one nanosecond late", late: time.Nanosecond, expected: 1},
		{name: "12 hours late", late: 12 * time.Hour, expected: 1},
		{name: "23 hours late", late: 23 * time.Hour, expected: 1},
		{name: "exactly 24 hours late", late: 24 * time.Hour, expected: 1},
		{name: "24 hours and 1 second late", late: 24*time.Hour + time.Second, expected: 2},
		{name: "exactly 72 hours late", late: 72 * time.Hour, expected: 3},
		{name: "just past 72 hours", late: 72*time.Hour + time.Nanosecond, expected: 4},
		{name: "5 days late", late: 5 * 24 * time.Hour, expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := policyNow.Add(-tt.late)

			assert.Equal(t, tt.expected, domain.DaysOverdue(due, policyNow))
		})
	}
}

func TestEvaluateEligibleSuccess(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *candidateSpec)
	}{
		{
			name:   "due 2 days ago with no reminders",
			mutate: func(s *candidateSpec) {},
		},
		{
			name:   "in progress status",
			mutate: func(s *candidateSpec) { s.status = domain.StatusInProgress },
		},
		{
			name:   "todo status from another workflow",
			mutate: func(s *candidateSpec) { s.status = domain.Status("todo") },
		},
		{
			name:   "hyphenated in-progress status",
			mutate: func(s *candidateSpec) { s.status = domain.Status("in-progress") },
		},
		{
			name:   "12 hours overdue counts as one day",
			mutate: func(s *candidateSpec) { s.due = ago(12 * time.Hour) },
		},
		{
			name:   "exactly 3 days overdue",
			mutate: func(s *candidateSpec) { s.due = ago(72 * time.Hour) },
		},
		{
			name: "cooldown elapsed exactly",
			mutate: func(s *candidateSpec) {
				s.reminderCount = 1
				s.lastSent = ago(24 * time.Hour)
			},
		},
		{
			name: "cooldown elapsed by 25 hours with two reminders",
			mutate: func(s *candidateSpec) {
				s.reminderCount = 2
				s.lastSent = ago(25 * time.Hour)
			},
		},
	}

	policy := domain.DefaultReminderPolicy()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := eligibleSpec()
			tt.mutate(&spec)

			c := buildCandidate(t, spec)

			assert.Equal(t, domain.Eligible, policy.Evaluate(c, policyNow))
		})
	}
}

func TestEvaluateIneligibleSuccess(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(s *candidateSpec)
		expected domain.Ineligibility
	}{
		{
			name:     "done task is never selected",
			mutate:   func(s *candidateSpec) { s.status = domain.StatusDone },
			expected: domain.ReasonDone,
		},
		{
			name: "done task even with fresh state and 1 day overdue",
			mutate: func(s *candidateSpec) {
				s.status = domain.StatusDone
				s.due = ago(20 * time.Hour)
			},
			expected: domain.ReasonDone,
		},
		{
			name:     "missing due date",
			mutate:   func(s *candidateSpec) { s.due = nil },
			expected: domain.ReasonNoDueDate,
		},
		{
			name:     "due exactly now is not overdue",
			mutate:   func(s *candidateSpec) { s.due = ptr(policyNow) },
			expected: domain.ReasonNotOverdue,
		},
		{
			name:     "due in the future",
			mutate:   func(s *candidateSpec) { s.due = ptr(policyNow.Add(time.Hour)) },
			expected: domain.ReasonNotOverdue,
		},
		{
			name: "owner opted out",
			mutate: func(s *candidateSpec) {
				s.alertsEnabled = false
				s.due = ago(24 * time.Hour)
			},
			expected: domain.ReasonAlertsDisabled,
		},
		{
			name: "three reminders already sent",
			mutate: func(s *candidateSpec) {
				s.reminderCount = 3
				s.lastSent = ago(48 * time.Hour)
			},
			expected: domain.ReasonMaxReminders,
		},
		{
			name:     "count above bound from legacy data",
			mutate:   func(s *candidateSpec) { s.reminderCount = 7 },
			expected: domain.ReasonMaxReminders,
		},
		{
			name: "reminded 1 hour ago",
			mutate: func(s *candidateSpec) {
				s.reminderCount = 1
				s.lastSent = ago(time.Hour)
			},
			expected: domain.ReasonCooldown,
		},
		{
			name: "reminded just under 24 hours ago",
			mutate: func(s *candidateSpec) {
				s.reminderCount = 1
				s.lastSent = ago(24*time.Hour - time.Second)
			},
			expected: domain.ReasonCooldown,
		},
		{
			name: "last reminder recorded in the future",
			mutate: func(s *candidateSpec) {
				s.reminderCount = 1
				s.lastSent = ptr(policyNow.Add(time.Minute))
			},
			expected: domain.ReasonReminderInFuture,
		},
		{
			name:     "4 days overdue is past the window",
			mutate:   func(s *candidateSpec) { s.due = ago(4 * 24 * time.Hour) },
			expected: domain.ReasonOutsideWindow,
		},
		{
			name:     "5 days overdue is never reminded",
			mutate:   func(s *candidateSpec) { s.due = ago(5 * 24 * time.Hour) },
			expected: domain.ReasonOutsideWindow,
		},
	}

	policy := domain.DefaultReminderPolicy()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := eligibleSpec()
			tt.mutate(&spec)

			c := buildCandidate(t, spec)

			assert.Equal(t, tt.expected, policy.Evaluate(c, policyNow))
		})
	}
}

func TestSelectEligibleOrderingSuccess(t *testing.T) {
	policy := domain.DefaultReminderPolicy()

	oneDay := eligibleSpec()
	oneDay.due = ago(20 * time.Hour)

	threeDays := eligibleSpec()
	threeDays.due = ago(70 * time.Hour)

	twoDays := eligibleSpec()
	twoDays.due = ago(30 * time.Hour)

	done := eligibleSpec()
	done.status = domain.StatusDone
	done.due = ago(71 * time.Hour)

	c1 := buildCandidate(t, oneDay)
	c3 := buildCandidate(t, threeDays)
	c2 := buildCandidate(t, twoDays)
	cd := buildCandidate(t, done)

	selected := policy.SelectEligible([]*domain.ReminderCandidate{c1, cd, c3, nil, c2}, policyNow)

	require.Len(t, selected, 3)
	assert.Equal(t, c3.Task().ID(), selected[0].Task().ID())
	assert.Equal(t, c2.Task().ID(), selected[1].Task().ID())
	assert.Equal(t, c1.Task().ID(), selected[2].Task().ID())
}

func TestSelectEligibleDeduplicatesSuccess(t *testing.T) {
	policy := domain.DefaultReminderPolicy()

	c := buildCandidate(t, eligibleSpec())

	selected := policy.SelectEligible([]*domain.ReminderCandidate{c, c}, policyNow)

	assert.Len(t, selected, 1)
}

func TestSelectEligibleEmptySuccess(t *testing.T) {
	policy := domain.DefaultReminderPolicy()

	assert.Empty(t, policy.SelectEligible(nil, policyNow))
}

func TestReminderLifecycleScenarioSuccess(t *testing.T) {
	policy := domain.DefaultReminderPolicy()

	spec := eligibleSpec()
	spec.due = ago(36 * time.Hour)

	c := buildCandidate(t, spec)
	now := policyNow

	require.Equal(t, 2, domain.DaysOverdue(*spec.due, now))
	require.Equal(t, domain.Eligible, policy.Evaluate(c, now))
	require.NoError(t, c.Task().RecordReminder(now, policy.MaxReminders))
	assert.Equal(t, 1, c.Task().ReminderCount())

	last, ok := c.Task().LastReminderSent()
	require.True(t, ok)
	assert.Equal(t, now, last)

	assert.Equal(t, domain.ReasonCooldown, policy.Evaluate(c, now.Add(time.Hour)))

	later := now.Add(25 * time.Hour)
	require.Equal(t, domain.Eligible, policy.Evaluate(c, later))
	require.NoError(t, c.Task().RecordReminder(later, policy.MaxReminders))
	assert.Equal(t, 2, c.Task().ReminderCount())

	// 86 hours after the due date the task has left the window.
	assert.Equal(t, domain.ReasonOutsideWindow, policy.Evaluate(c, later.Add(25*time.Hour)))
}
