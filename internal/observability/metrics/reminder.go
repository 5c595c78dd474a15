package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type ReminderMetrics struct {
	sent              metric.Int64Counter
	failed            metric.Int64Counter
	bookkeepingFailed metric.Int64Counter
	passDuration      metric.Float64Histogram
}

func NewReminderMetrics(meter metric.Meter) (*ReminderMetrics, error) {
	sent, err := meter.Int64Counter("reminders.sent",
		metric.WithDescription("Reminders accepted by the notifier"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return nil, err
	}

	failed, err := meter.Int64Counter("reminders.failed",
		metric.WithDescription("Reminders the notifier rejected or timed out on"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return nil, err
	}

	bookkeepingFailed, err := meter.Int64Counter("reminders.bookkeeping_failed",
		metric.WithDescription("Reminders delivered whose task row could not be updated"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return nil, err
	}

	passDuration, err := meter.Float64Histogram("reminder.pass.duration",
		metric.WithDescription("Wall time of one reminder pass"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &ReminderMetrics{
		sent:              sent,
		failed:            failed,
		bookkeepingFailed: bookkeepingFailed,
		passDuration:      passDuration,
	}, nil
}

// NewNoopReminderMetrics returns instruments that discard every measurement.
func NewNoopReminderMetrics() *ReminderMetrics {
	m, _ := NewReminderMetrics(noop.NewMeterProvider().Meter("noop"))

	return m
}

func (m *ReminderMetrics) RecordSent(ctx context.Context, daysOverdue int) {
	m.sent.Add(ctx, 1, metric.WithAttributes(attribute.Int("days_overdue", daysOverdue)))
}

func (m *ReminderMetrics) RecordFailed(ctx context.Context, daysOverdue int) {
	m.failed.Add(ctx, 1, metric.WithAttributes(attribute.Int("days_overdue", daysOverdue)))
}

func (m *ReminderMetrics) RecordBookkeepingFailed(ctx context.Context) {
	m.bookkeepingFailed.Add(ctx, 1)
}

func (m *ReminderMetrics) RecordPass(ctx context.Context, duration time.Duration, aborted bool) {
	m.passDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.Bool("aborted", aborted)))
}
